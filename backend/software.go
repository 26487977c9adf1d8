package backend

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc/texel"
)

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() Device {
		return NewSoftwareDevice()
	})
}

// Stats counts the commands a SoftwareDevice has executed.
type Stats struct {
	Encoders        int
	BufferCopies    int
	BufferToTexture int
	TextureToBuffer int
	Fills           int
	TextureClears   int
}

// SoftwareDevice is a Device backed by CPU memory.
// Commands execute immediately when recorded.
type SoftwareDevice struct {
	mu    sync.Mutex
	stats Stats
}

// NewSoftwareDevice creates a new software device.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{}
}

// Name returns the backend identifier.
func (d *SoftwareDevice) Name() string {
	return BackendSoftware
}

// AdapterInfo describes the software adapter.
func (d *SoftwareDevice) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "Software Copy Engine", Type: gpucontext.AdapterTypeSoftware}
}

// NewBlitEncoder starts a new blit encoder.
func (d *SoftwareDevice) NewBlitEncoder() (BlitEncoder, error) {
	d.count(func(s *Stats) { s.Encoders++ })
	return &softwareEncoder{dev: d}, nil
}

// NewBuffer allocates a zeroed buffer for desc.
func (d *SoftwareDevice) NewBuffer(desc *gputypes.BufferDescriptor) (Buffer, error) {
	return NewSoftwareBuffer(desc.Size), nil
}

// NewTexture allocates zeroed storage for desc.
func (d *SoftwareDevice) NewTexture(desc *gputypes.TextureDescriptor) (Texture, error) {
	t, err := NewSoftwareTexture(desc)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Stats returns a snapshot of the executed command counts.
func (d *SoftwareDevice) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *SoftwareDevice) count(f func(*Stats)) {
	d.mu.Lock()
	f(&d.stats)
	d.mu.Unlock()
}

// SoftwareBuffer is a Buffer backed by a byte slice.
type SoftwareBuffer struct {
	data []byte
}

// NewSoftwareBuffer allocates a zeroed buffer of size bytes.
func NewSoftwareBuffer(size uint64) *SoftwareBuffer {
	return &SoftwareBuffer{data: make([]byte, size)}
}

// Length returns the buffer length in bytes.
func (b *SoftwareBuffer) Length() uint64 {
	return uint64(len(b.data))
}

// Bytes returns the buffer contents. The slice aliases the buffer.
func (b *SoftwareBuffer) Bytes() []byte {
	return b.data
}

// plane is the storage of one aspect of one mip level.
type plane struct {
	blockSize uint32
	rowBytes  uint64
	rows      uint32
	slices    uint32
	data      []byte
}

func (p *plane) sliceBytes() uint64 {
	return p.rowBytes * uint64(p.rows)
}

// SoftwareTexture is a Texture backed by CPU memory. Each mip level stores
// its block rows tightly packed; combined depth-stencil formats keep depth
// and stencil in separate planes.
type SoftwareTexture struct {
	format    gputypes.TextureFormat
	dimension gputypes.TextureDimension
	levels    [][]plane
}

// NewSoftwareTexture allocates zeroed storage for every mip level of desc.
func NewSoftwareTexture(desc *gputypes.TextureDescriptor) (*SoftwareTexture, error) {
	planeSizes, err := planeBlockSizes(desc.Format)
	if err != nil {
		return nil, err
	}
	levels := max(desc.MipLevelCount, 1)
	t := &SoftwareTexture{
		format:    desc.Format,
		dimension: desc.Dimension,
		levels:    make([][]plane, levels),
	}
	bw, bh := texel.BlockDimensions(desc.Format)
	for level := uint32(0); level < levels; level++ {
		phys, ok := texel.PhysicalExtent(desc.Format, texel.MipExtent(desc.Dimension, desc.Size, level))
		if !ok {
			return nil, fmt.Errorf("backend: texture size %v overflows", desc.Size)
		}
		planes := make([]plane, len(planeSizes))
		for i, bs := range planeSizes {
			p := plane{
				blockSize: bs,
				rowBytes:  uint64(phys.Width/bw) * uint64(bs),
				rows:      phys.Height / bh,
				slices:    phys.DepthOrArrayLayers,
			}
			p.data = make([]byte, p.sliceBytes()*uint64(p.slices))
			planes[i] = p
		}
		t.levels[level] = planes
	}
	return t, nil
}

func planeBlockSizes(f gputypes.TextureFormat) ([]uint32, error) {
	switch {
	case texel.IsCombinedDepthStencil(f):
		return []uint32{4, 1}, nil
	case f == gputypes.TextureFormatDepth24Plus:
		return []uint32{4}, nil
	}
	bs, ok := texel.BlockSize(f).Value()
	if !ok {
		return nil, fmt.Errorf("backend: unsupported texture format %v", f)
	}
	return []uint32{bs}, nil
}

// Format returns the texture format.
func (t *SoftwareTexture) Format() gputypes.TextureFormat {
	return t.format
}

// Plane returns the raw storage of one mip level plane, slice-major then
// block row then block column. It returns nil if the plane does not exist.
func (t *SoftwareTexture) Plane(level uint32, opt BlitOption) []byte {
	p := t.plane(level, opt)
	if p == nil {
		return nil
	}
	return p.data
}

func (t *SoftwareTexture) plane(level uint32, opt BlitOption) *plane {
	if level >= uint32(len(t.levels)) {
		return nil
	}
	planes := t.levels[level]
	idx := 0
	if opt == BlitOptionStencilFromDepthStencil && len(planes) > 1 {
		idx = 1
	}
	return &planes[idx]
}

type softwareEncoder struct {
	dev   *SoftwareDevice
	ended bool
	err   error
}

func (e *softwareEncoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *softwareEncoder) active() bool {
	if e.ended {
		e.fail(ErrEncoderEnded)
		return false
	}
	return true
}

func softwareBuffer(b Buffer) (*SoftwareBuffer, error) {
	sb, ok := b.(*SoftwareBuffer)
	if !ok {
		return nil, fmt.Errorf("backend: foreign buffer %T", b)
	}
	return sb, nil
}

func inRange(offset, size, length uint64) bool {
	return offset <= length && size <= length-offset
}

func (e *softwareEncoder) CopyBufferToBuffer(src Buffer, srcOffset uint64, dst Buffer, dstOffset, size uint64) {
	if !e.active() {
		return
	}
	s, err := softwareBuffer(src)
	if err != nil {
		e.fail(err)
		return
	}
	d, err := softwareBuffer(dst)
	if err != nil {
		e.fail(err)
		return
	}
	if !inRange(srcOffset, size, s.Length()) || !inRange(dstOffset, size, d.Length()) {
		e.fail(fmt.Errorf("%w: buffer copy of %d bytes", ErrOutOfRange, size))
		return
	}
	copy(d.data[dstOffset:dstOffset+size], s.data[srcOffset:srcOffset+size])
	e.dev.count(func(s *Stats) { s.BufferCopies++ })
}

func (e *softwareEncoder) CopyBufferToTexture(c *BufferTextureCopy) {
	if !e.active() {
		return
	}
	if err := transfer(c, true); err != nil {
		e.fail(err)
		return
	}
	e.dev.count(func(s *Stats) { s.BufferToTexture++ })
}

func (e *softwareEncoder) CopyTextureToBuffer(c *BufferTextureCopy) {
	if !e.active() {
		return
	}
	if err := transfer(c, false); err != nil {
		e.fail(err)
		return
	}
	e.dev.count(func(s *Stats) { s.TextureToBuffer++ })
}

// transfer moves the block rows of c between buffer and texture storage.
func transfer(c *BufferTextureCopy, toTexture bool) error {
	buf, err := softwareBuffer(c.Buffer)
	if err != nil {
		return err
	}
	tex, ok := c.Texture.(*SoftwareTexture)
	if !ok {
		return fmt.Errorf("backend: foreign texture %T", c.Texture)
	}
	p := tex.plane(c.Level, c.Options)
	if p == nil {
		return fmt.Errorf("%w: mip level %d", ErrOutOfRange, c.Level)
	}

	bw, bh := texel.BlockDimensions(tex.format)
	cols := (uint64(c.Size.Width) + uint64(bw) - 1) / uint64(bw)
	rows := (c.Size.Height + bh - 1) / bh
	rowLen := cols * uint64(p.blockSize)
	x0 := uint64(c.Origin.X/bw) * uint64(p.blockSize)
	y0 := c.Origin.Y / bh

	if x0+rowLen > p.rowBytes || uint64(y0)+uint64(rows) > uint64(p.rows) {
		return fmt.Errorf("%w: region %v at %v", ErrOutOfRange, c.Size, c.Origin)
	}

	for z := uint32(0); z < c.Size.DepthOrArrayLayers; z++ {
		s := uint64(c.Slice) + uint64(c.Origin.Z) + uint64(z)
		if s >= uint64(p.slices) {
			return fmt.Errorf("%w: slice %d", ErrOutOfRange, s)
		}
		for r := uint32(0); r < rows; r++ {
			bo := c.Offset + uint64(z)*c.BytesPerImage + uint64(r)*c.BytesPerRow
			if !inRange(bo, rowLen, buf.Length()) {
				return fmt.Errorf("%w: buffer offset %d", ErrOutOfRange, bo)
			}
			to := s*p.sliceBytes() + uint64(y0+r)*p.rowBytes + x0
			if toTexture {
				copy(p.data[to:to+rowLen], buf.data[bo:bo+rowLen])
			} else {
				copy(buf.data[bo:bo+rowLen], p.data[to:to+rowLen])
			}
		}
	}
	return nil
}

func (e *softwareEncoder) FillBuffer(dst Buffer, offset, size uint64, value byte) {
	if !e.active() {
		return
	}
	d, err := softwareBuffer(dst)
	if err != nil {
		e.fail(err)
		return
	}
	if !inRange(offset, size, d.Length()) {
		e.fail(fmt.Errorf("%w: fill of %d bytes at %d", ErrOutOfRange, size, offset))
		return
	}
	region := d.data[offset : offset+size]
	for i := range region {
		region[i] = value
	}
	e.dev.count(func(s *Stats) { s.Fills++ })
}

func (e *softwareEncoder) ClearTextureSlice(tex Texture, level, slice uint32) {
	if !e.active() {
		return
	}
	t, ok := tex.(*SoftwareTexture)
	if !ok {
		e.fail(fmt.Errorf("backend: foreign texture %T", tex))
		return
	}
	if level >= uint32(len(t.levels)) {
		e.fail(fmt.Errorf("%w: mip level %d", ErrOutOfRange, level))
		return
	}
	for i := range t.levels[level] {
		p := &t.levels[level][i]
		if t.dimension == gputypes.TextureDimension3D {
			clear(p.data)
			continue
		}
		if slice >= p.slices {
			e.fail(fmt.Errorf("%w: slice %d", ErrOutOfRange, slice))
			return
		}
		n := p.sliceBytes()
		clear(p.data[uint64(slice)*n : uint64(slice+1)*n])
	}
	e.dev.count(func(s *Stats) { s.TextureClears++ })
}

// Discard ends the encoder. Software commands run as they are recorded, so
// there is nothing left to drop.
func (e *softwareEncoder) Discard() {
	e.ended = true
}

func (e *softwareEncoder) EndEncoding() error {
	if e.ended {
		return ErrEncoderEnded
	}
	e.ended = true
	return e.err
}
