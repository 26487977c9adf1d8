package resource

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc"
	"github.com/gogpu/copyenc/backend"
	"github.com/gogpu/copyenc/texel"
)

var _ copyenc.Texture = (*Texture)(nil)

type subresource struct {
	level, slice uint32
}

// Texture is a GPU image with a mip chain.
type Texture struct {
	desc      gputypes.TextureDescriptor
	backing   backend.Texture
	valid     bool
	destroyed bool
	release   func()
	cleared   map[subresource]bool
}

// NewTexture wraps backing as a texture described by desc. The texture is
// invalid when backing is missing or desc cannot describe a texture.
func NewTexture(desc *gputypes.TextureDescriptor, backing backend.Texture) *Texture {
	d := *desc
	if d.SampleCount == 0 {
		d.SampleCount = 1
	}
	return &Texture{
		desc:    d,
		backing: backing,
		valid:   backing != nil && validDescriptor(&d),
		cleared: make(map[subresource]bool),
	}
}

func validDescriptor(d *gputypes.TextureDescriptor) bool {
	if d.Format == gputypes.TextureFormatUndefined || d.MipLevelCount == 0 {
		return false
	}
	if d.Size.Width == 0 || d.Size.Height == 0 || d.Size.DepthOrArrayLayers == 0 {
		return false
	}
	switch d.Dimension {
	case gputypes.TextureDimension1D:
		return d.Size.Height == 1 && d.Size.DepthOrArrayLayers == 1
	case gputypes.TextureDimension2D, gputypes.TextureDimension3D:
		return true
	}
	return false
}

// CreateTexture allocates backing storage from a and wraps it.
func CreateTexture(a backend.Allocator, desc *gputypes.TextureDescriptor) (*Texture, error) {
	t, err := a.NewTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("resource: create texture %q: %w", desc.Label, err)
	}
	tex := NewTexture(desc, t)
	tex.release = releaseFunc(a, t)
	return tex, nil
}

// Label returns the debug label.
func (t *Texture) Label() string { return t.desc.Label }

// IsValid reports whether the texture was created successfully.
func (t *Texture) IsValid() bool { return t.valid }

// IsDestroyed reports whether Destroy was called.
func (t *Texture) IsDestroyed() bool { return t.destroyed }

// Destroy releases the texture and, for allocated textures, its backing
// storage.
func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	if t.release != nil {
		t.release()
	}
}

// Format returns the texture format.
func (t *Texture) Format() gputypes.TextureFormat { return t.desc.Format }

// Dimension returns the texture dimension.
func (t *Texture) Dimension() gputypes.TextureDimension { return t.desc.Dimension }

// SampleCount returns the number of samples per texel.
func (t *Texture) SampleCount() uint32 { return t.desc.SampleCount }

// MipLevelCount returns the length of the mip chain.
func (t *Texture) MipLevelCount() uint32 { return t.desc.MipLevelCount }

// Usage returns the usage flags.
func (t *Texture) Usage() gputypes.TextureUsage { return t.desc.Usage }

// Size returns the size of mip level 0.
func (t *Texture) Size() gputypes.Extent3D { return t.desc.Size }

// LogicalMipExtent returns the size of a mip level in texels.
func (t *Texture) LogicalMipExtent(level uint32) gputypes.Extent3D {
	return texel.MipExtent(t.desc.Dimension, t.desc.Size, level)
}

// PreviouslyCleared reports whether a subresource holds defined contents.
func (t *Texture) PreviouslyCleared(level, slice uint32) bool {
	return t.cleared[subresource{level, slice}]
}

// SetPreviouslyCleared updates the defined-contents flag of a subresource.
func (t *Texture) SetPreviouslyCleared(level, slice uint32, cleared bool) {
	if cleared {
		t.cleared[subresource{level, slice}] = true
		return
	}
	delete(t.cleared, subresource{level, slice})
}

// Backing returns the backend storage.
func (t *Texture) Backing() backend.Texture { return t.backing }
