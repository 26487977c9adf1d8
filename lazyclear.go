package copyenc

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc/internal/checked"
	"github.com/gogpu/copyenc/recording"
)

// touchedSlices returns the range of (mip, slice) flags a copy reads or
// writes. 3D textures have a single slice.
func touchedSlices(req *copyRequest) (first, count uint32, err error) {
	if req.texture.Dimension() == gputypes.TextureDimension3D {
		return 0, 1, nil
	}
	if _, ok := checked.Add32(req.origin.Z, req.size.DepthOrArrayLayers); !ok {
		return 0, 0, fmt.Errorf("%w: slice range", ErrOverflow)
	}
	return req.origin.Z, req.size.DepthOrArrayLayers, nil
}

// writeCompletelyClears reports whether a write of the clipped extent covers
// every texel of a slice of the mip level.
func writeCompletelyClears(dim gputypes.TextureDimension, clipped, logical gputypes.Extent3D) bool {
	switch dim {
	case gputypes.TextureDimension1D:
		return clipped.Width == logical.Width
	case gputypes.TextureDimension2D:
		return clipped.Width == logical.Width && clipped.Height == logical.Height
	case gputypes.TextureDimension3D:
		return clipped.Width == logical.Width && clipped.Height == logical.Height &&
			clipped.DepthOrArrayLayers == logical.DepthOrArrayLayers
	}
	return false
}

// planClears records the zero-initialization a copy needs before it runs.
//
// A slice that is read must be defined first. A slice that is written is
// marked defined when the write covers it entirely and cleared otherwise.
func planClears(rec *recording.Recorder, req *copyRequest, l *resolvedLayout) error {
	first, count, err := touchedSlices(req)
	if err != nil {
		return err
	}
	tex := req.texture
	full := req.toTexture() && writeCompletelyClears(tex.Dimension(), l.clipped, l.logical)
	for i := uint32(0); i < count; i++ {
		slice := first + i
		switch {
		case full:
			rec.MarkCleared(tex, req.mipLevel, slice)
		case !tex.PreviouslyCleared(req.mipLevel, slice):
			Logger().Debug("copyenc: lazy clear", "level", req.mipLevel, "slice", slice)
			rec.ClearTexture(tex, tex.Backing(), req.mipLevel, slice)
		}
	}
	return nil
}
