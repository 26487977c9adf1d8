package copyenc

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc/internal/checked"
)

// rowSplitter yields the one-row, one-layer copies that together reproduce
// a copy whose row stride is too large for a single blit.
//
// Sub-copies have unspecified strides so their layout is resolved again at
// the smaller scale. A sub-copy never needs splitting itself: with a single
// block row and a single layer its row stride resolves to zero for 3D
// textures, and 1D and 2D textures never split.
type rowSplitter struct {
	base        copyRequest
	rowStride   uint64
	imageStride uint64
	blockHeight uint32
	rows        uint32
	layers      uint32
	next        uint64
}

// newRowSplitter checks that the furthest sub-copy is addressable before
// anything is emitted. Every earlier sub-copy has smaller offsets and
// origins, so pop does not need to check again.
func newRowSplitter(req *copyRequest, l *resolvedLayout) (*rowSplitter, error) {
	s := &rowSplitter{
		base:        *req,
		rowStride:   l.rowStride,
		imageStride: l.imageStride,
		blockHeight: l.blockHeight,
		rows:        l.blockRows(req.size.Height),
		layers:      req.size.DepthOrArrayLayers,
	}
	if s.rows == 0 || s.layers == 0 {
		return s, nil
	}

	var c checked.Chain
	c.Add(req.layout.Offset, c.Add(
		c.Mul(uint64(s.layers-1), s.imageStride),
		c.Mul(uint64(s.rows-1), s.rowStride)))
	if !c.OK() {
		return nil, fmt.Errorf("%w: split offset", ErrOverflow)
	}
	dy, ok := checked.Mul32(s.rows-1, s.blockHeight)
	if ok {
		_, ok = checked.Add32(req.origin.Y, dy)
	}
	if ok {
		_, ok = checked.Add32(req.origin.Z, s.layers-1)
	}
	if !ok {
		return nil, fmt.Errorf("%w: split origin", ErrOverflow)
	}
	return s, nil
}

// count returns the number of sub-copies.
func (s *rowSplitter) count() uint64 {
	return uint64(s.rows) * uint64(s.layers)
}

// pop returns the next sub-copy in layer-major, row-minor order.
func (s *rowSplitter) pop() (copyRequest, bool) {
	if s.next >= s.count() {
		return copyRequest{}, false
	}
	layer := uint32(s.next / uint64(s.rows))
	row := uint32(s.next % uint64(s.rows))
	s.next++

	sub := s.base
	sub.layout = TextureDataLayout{
		Offset: s.base.layout.Offset + uint64(layer)*s.imageStride + uint64(row)*s.rowStride,
	}
	sub.origin.Y += row * s.blockHeight
	sub.origin.Z += layer
	sub.size = gputypes.Extent3D{
		Width:              s.base.size.Width,
		Height:             s.blockHeight,
		DepthOrArrayLayers: 1,
	}
	return sub, true
}
