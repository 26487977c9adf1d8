package copyenc

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc/internal/checked"
	"github.com/gogpu/copyenc/texel"
)

// maxRowsPer3DBlit bounds the row pitch, in texel blocks, that a single 3D
// blit may use.
const maxRowsPer3DBlit = 2048

// direction tells which side of a copy the buffer is on.
type direction uint8

const (
	bufferToTexture direction = iota
	textureToBuffer
)

// copyRequest is one buffer<->texture copy, either submitted by a caller or
// derived from one by splitting.
type copyRequest struct {
	dir      direction
	buffer   Buffer
	layout   TextureDataLayout
	texture  Texture
	mipLevel uint32
	origin   gputypes.Origin3D
	aspect   gputypes.TextureAspect
	size     gputypes.Extent3D
}

func (r *copyRequest) toTexture() bool { return r.dir == bufferToTexture }

func (r *copyRequest) isEmpty() bool {
	return r.size.Width == 0 || r.size.Height == 0 || r.size.DepthOrArrayLayers == 0
}

func normalizeAspect(a gputypes.TextureAspect) gputypes.TextureAspect {
	if a == gputypes.TextureAspectUndefined {
		return gputypes.TextureAspectAll
	}
	return a
}

// resolvedLayout is the effective buffer layout of a copy.
type resolvedLayout struct {
	format      gputypes.TextureFormat // aspect-specific
	blockSize   uint32
	blockWidth  uint32
	blockHeight uint32

	logical gputypes.Extent3D
	clipped gputypes.Extent3D

	rowStride    uint64
	rowsPerImage uint64
	imageStride  uint64
	maxRowStride uint64
}

// needsSplit reports whether the row stride cannot be expressed by a single
// blit.
func (l *resolvedLayout) needsSplit() bool {
	return l.rowStride > l.maxRowStride
}

// blockRows returns the number of block rows covering height texels.
func (l *resolvedLayout) blockRows(height uint32) uint32 {
	return uint32((uint64(height) + uint64(l.blockHeight) - 1) / uint64(l.blockHeight))
}

func clipAxis(size, extent, origin uint32) uint32 {
	if extent < origin {
		return 0
	}
	return min(size, extent-origin)
}

func clipExtent(size, logical gputypes.Extent3D, origin gputypes.Origin3D) gputypes.Extent3D {
	return gputypes.Extent3D{
		Width:              clipAxis(size.Width, logical.Width, origin.X),
		Height:             clipAxis(size.Height, logical.Height, origin.Y),
		DepthOrArrayLayers: clipAxis(size.DepthOrArrayLayers, logical.DepthOrArrayLayers, origin.Z),
	}
}

// resolveLayout fills in unspecified strides.
//
// An unspecified bytesPerRow defaults to the backing buffer length, clamped
// to one row of the largest texture the device allows. A specified
// bytesPerRow is kept so that the copy moves exactly the bytes the caller
// described. Either way the stride is rounded up to the block size.
func (e *Encoder) resolveLayout(req *copyRequest) (resolvedLayout, error) {
	tex := req.texture
	f := texel.AspectSpecificFormat(tex.Format(), req.aspect)
	bs, ok := texel.BlockSize(f).Value()
	if !ok {
		return resolvedLayout{}, fmt.Errorf("%w: block size of %v", ErrOverflow, f)
	}
	bw, bh := texel.BlockDimensions(f)

	l := resolvedLayout{
		format:      f,
		blockSize:   bs,
		blockWidth:  bw,
		blockHeight: bh,
		logical:     tex.LogicalMipExtent(req.mipLevel),
	}
	l.clipped = clipExtent(req.size, l.logical, req.origin)

	dim := tex.Dimension()
	if v, ok := req.layout.BytesPerRow.Get(); ok {
		l.rowStride = uint64(v)
	} else {
		l.rowStride = req.buffer.Backing().Length()
		var maxDim uint32
		switch dim {
		case gputypes.TextureDimension1D:
			maxDim = e.opts.limits.MaxTextureDimension1D
		case gputypes.TextureDimension2D, gputypes.TextureDimension3D:
			maxDim = e.opts.limits.MaxTextureDimension2D
		}
		if limit, ok := checked.Mul32(bs, maxDim); ok && limit != 0 {
			l.rowStride = min(l.rowStride, uint64(limit))
		}
	}
	if l.rowStride, ok = texel.RoundUp(uint64(bs), l.rowStride); !ok {
		return resolvedLayout{}, fmt.Errorf("%w: bytesPerRow rounding", ErrOverflow)
	}
	if dim == gputypes.TextureDimension3D && req.size.DepthOrArrayLayers <= 1 && l.blockRows(req.size.Height) <= 1 {
		l.rowStride = 0
	}

	if v, ok := req.layout.RowsPerImage.Get(); ok {
		l.rowsPerImage = uint64(v)
	} else {
		l.rowsPerImage = max(uint64(l.blockRows(l.clipped.Height)), 1)
	}
	if l.imageStride, ok = checked.Mul64(l.rowsPerImage, l.rowStride); !ok {
		return resolvedLayout{}, fmt.Errorf("%w: bytesPerImage", ErrOverflow)
	}

	if dim == gputypes.TextureDimension3D {
		l.maxRowStride = uint64(maxRowsPer3DBlit) * uint64(bs)
	} else {
		l.maxRowStride = l.rowStride
	}
	return l, nil
}
