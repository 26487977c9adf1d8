package texel

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc/internal/checked"
)

// MipExtent returns the logical size of mip level of a texture with the given
// dimension and base size. Array layers are not reduced; depth is, for 3D.
func MipExtent(dim gputypes.TextureDimension, size gputypes.Extent3D, level uint32) gputypes.Extent3D {
	e := gputypes.Extent3D{
		Width:              mipAxis(size.Width, level),
		Height:             1,
		DepthOrArrayLayers: 1,
	}
	switch dim {
	case gputypes.TextureDimension1D:
		e.DepthOrArrayLayers = size.DepthOrArrayLayers
	case gputypes.TextureDimension2D:
		e.Height = mipAxis(size.Height, level)
		e.DepthOrArrayLayers = size.DepthOrArrayLayers
	case gputypes.TextureDimension3D:
		e.Height = mipAxis(size.Height, level)
		e.DepthOrArrayLayers = mipAxis(size.DepthOrArrayLayers, level)
	}
	return e
}

func mipAxis(v, level uint32) uint32 {
	if level >= 32 {
		return 1
	}
	return max(1, v>>level)
}

// PhysicalExtent rounds a logical extent up to whole blocks of f.
// ok is false if rounding overflows.
func PhysicalExtent(f gputypes.TextureFormat, e gputypes.Extent3D) (gputypes.Extent3D, bool) {
	bw, bh := BlockDimensions(f)
	w, okW := RoundUp32(bw, e.Width)
	h, okH := RoundUp32(bh, e.Height)
	if !okW || !okH {
		return gputypes.Extent3D{}, false
	}
	return gputypes.Extent3D{Width: w, Height: h, DepthOrArrayLayers: e.DepthOrArrayLayers}, true
}

// BytesPerRow returns the bytes needed for one block row of width texels of f
// at the given sample count. ok is false for an overflowed block size or if the
// product does not fit in 64 bits.
func BytesPerRow(f gputypes.TextureFormat, width, sampleCount uint32) (uint64, bool) {
	bs, ok := BlockSize(f).Value()
	if !ok {
		return 0, false
	}
	bw, _ := BlockDimensions(f)
	blocks := (uint64(width) + uint64(bw) - 1) / uint64(bw)
	var c checked.Chain
	n := c.Mul(c.Mul(blocks, uint64(bs)), uint64(max(sampleCount, 1)))
	return n, c.OK()
}

// RoundUp returns v rounded up to a multiple of m, which need not be a power
// of two. A zero m leaves v unchanged.
func RoundUp(m, v uint64) (uint64, bool) {
	if m == 0 {
		return v, true
	}
	r := v % m
	if r == 0 {
		return v, true
	}
	return checked.Add64(v, m-r)
}

// RoundUp32 is RoundUp for 32-bit values.
func RoundUp32(m, v uint32) (uint32, bool) {
	r, ok := RoundUp(uint64(m), uint64(v))
	if !ok {
		return 0, false
	}
	return checked.Narrow32(r)
}
