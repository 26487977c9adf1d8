package copyenc

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc/backend"
	"github.com/gogpu/copyenc/internal/checked"
	"github.com/gogpu/copyenc/recording"
	"github.com/gogpu/copyenc/texel"
)

// hasValidDimensions reports whether the clipped extent has texels in every
// axis the texture dimension uses.
func hasValidDimensions(dim gputypes.TextureDimension, e gputypes.Extent3D) bool {
	switch dim {
	case gputypes.TextureDimension1D:
		return e.Width != 0
	case gputypes.TextureDimension2D:
		return e.Width != 0 && e.Height != 0
	case gputypes.TextureDimension3D:
		return e.Width != 0 && e.Height != 0 && e.DepthOrArrayLayers != 0
	}
	return true
}

// planBlits records the blits of a copy that fits a single backend call per
// slice.
//
// 1D and 2D copies issue one blit per array layer. A 3D copy issues one
// blit for the whole volume. Any layer that would reach past the end of the
// backing buffer aborts the whole copy.
func planBlits(rec *recording.Recorder, req *copyRequest, l *resolvedLayout) error {
	tex := req.texture
	dim := tex.Dimension()
	c := l.clipped
	if !hasValidDimensions(dim, c) {
		return nil
	}

	backing := req.buffer.Backing()
	length := backing.Length()
	rowBytes, ok := texel.BytesPerRow(l.format, c.Width, tex.SampleCount())
	if !ok {
		return fmt.Errorf("%w: bytes per row", ErrOverflow)
	}
	if length < rowBytes {
		return fmt.Errorf("%w: buffer length %d is below one row of %d bytes", ErrAborted, length, rowBytes)
	}

	emit := rec.CopyTextureToBuffer
	if req.toTexture() {
		emit = rec.CopyBufferToTexture
	}
	base := backend.BufferTextureCopy{
		Buffer:        backing,
		Offset:        req.layout.Offset,
		BytesPerRow:   l.rowStride,
		BytesPerImage: l.imageStride,
		Texture:       tex.Backing(),
		Level:         req.mipLevel,
		Options:       backend.BlitOptionFor(req.aspect),
	}

	switch dim {
	case gputypes.TextureDimension1D:
		widthBytes, ok := checked.Mul64(uint64(c.Width), uint64(l.blockSize))
		if !ok {
			return fmt.Errorf("%w: row bytes", ErrOverflow)
		}
		span := widthBytes
		if req.toTexture() {
			base.BytesPerRow = min(l.rowStride, widthBytes)
			span = base.BytesPerRow
		}
		base.Origin = gputypes.Origin3D{X: req.origin.X}
		base.Size = gputypes.Extent3D{Width: c.Width, Height: 1, DepthOrArrayLayers: 1}
		return perLayer(req, l, base, emit, func(off uint64, layer uint32) error {
			end, ok := checked.Add64(off, span)
			if !ok {
				return fmt.Errorf("%w: layer %d end", ErrOverflow, layer)
			}
			if end > length {
				return fmt.Errorf("%w: layer %d ends at %d past buffer length %d", ErrAborted, layer, end, length)
			}
			return nil
		})

	case gputypes.TextureDimension2D:
		base.Origin = gputypes.Origin3D{X: req.origin.X, Y: req.origin.Y}
		base.Size = gputypes.Extent3D{Width: c.Width, Height: c.Height, DepthOrArrayLayers: 1}
		return perLayer(req, l, base, emit, nil)

	case gputypes.TextureDimension3D:
		base.Origin = req.origin
		base.Size = c
		emit(base)
		return nil
	}
	return fmt.Errorf("%w: texture dimension %v", ErrAborted, dim)
}

// perLayer emits one blit per array layer at base offset + layer*imageStride.
func perLayer(req *copyRequest, l *resolvedLayout, base backend.BufferTextureCopy,
	emit func(backend.BufferTextureCopy), check func(off uint64, layer uint32) error) error {
	for layer := uint32(0); layer < req.size.DepthOrArrayLayers; layer++ {
		off, ok := checked.MulAdd64(req.layout.Offset, uint64(layer), l.imageStride)
		if !ok {
			return fmt.Errorf("%w: layer %d offset", ErrOverflow, layer)
		}
		slice, ok := checked.Add32(req.origin.Z, layer)
		if !ok {
			return fmt.Errorf("%w: layer %d slice", ErrOverflow, layer)
		}
		if check != nil {
			if err := check(off, layer); err != nil {
				return err
			}
		}
		b := base
		b.Offset = off
		b.Slice = slice
		emit(b)
	}
	return nil
}
