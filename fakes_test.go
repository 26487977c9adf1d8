package copyenc

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc/backend"
	"github.com/gogpu/copyenc/texel"
)

type fakeBuffer struct {
	size        uint64
	usage       gputypes.BufferUsage
	backing     backend.Buffer
	destroyed   bool
	invalidated int
}

func newFakeBuffer(size uint64) *fakeBuffer {
	return &fakeBuffer{
		size:    size,
		usage:   gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
		backing: backend.NewSoftwareBuffer(size),
	}
}

func (b *fakeBuffer) IsValid() bool               { return true }
func (b *fakeBuffer) IsDestroyed() bool           { return b.destroyed }
func (b *fakeBuffer) InitialSize() uint64         { return b.size }
func (b *fakeBuffer) Usage() gputypes.BufferUsage { return b.usage }
func (b *fakeBuffer) Backing() backend.Buffer     { return b.backing }
func (b *fakeBuffer) IndirectBufferInvalidated()  { b.invalidated++ }

type fakeTexture struct {
	desc    gputypes.TextureDescriptor
	cleared map[[2]uint32]bool
}

func newFakeTexture(format gputypes.TextureFormat, dim gputypes.TextureDimension, size gputypes.Extent3D) *fakeTexture {
	return &fakeTexture{
		desc: gputypes.TextureDescriptor{
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     dim,
			Format:        format,
			Usage:         gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
		},
		cleared: make(map[[2]uint32]bool),
	}
}

func (t *fakeTexture) IsValid() bool                        { return true }
func (t *fakeTexture) IsDestroyed() bool                    { return false }
func (t *fakeTexture) Format() gputypes.TextureFormat       { return t.desc.Format }
func (t *fakeTexture) Dimension() gputypes.TextureDimension { return t.desc.Dimension }
func (t *fakeTexture) SampleCount() uint32                  { return t.desc.SampleCount }
func (t *fakeTexture) MipLevelCount() uint32                { return t.desc.MipLevelCount }
func (t *fakeTexture) Usage() gputypes.TextureUsage         { return t.desc.Usage }
func (t *fakeTexture) Backing() backend.Texture             { return nil }

func (t *fakeTexture) LogicalMipExtent(level uint32) gputypes.Extent3D {
	return texel.MipExtent(t.desc.Dimension, t.desc.Size, level)
}

func (t *fakeTexture) PreviouslyCleared(level, slice uint32) bool {
	return t.cleared[[2]uint32{level, slice}]
}

func (t *fakeTexture) SetPreviouslyCleared(level, slice uint32, cleared bool) {
	t.cleared[[2]uint32{level, slice}] = cleared
}
