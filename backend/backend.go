package backend

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrEncoderEnded is returned when a command is issued after EndEncoding.
	ErrEncoderEnded = errors.New("backend: encoder already ended")

	// ErrOutOfRange is returned by devices that detect a transfer outside
	// the bounds of a resource.
	ErrOutOfRange = errors.New("backend: transfer out of range")
)

// Buffer is a backing store that blit commands read from or write to.
type Buffer interface {
	// Length returns the allocated size of the backing store in bytes.
	// It may exceed the size the buffer was created with.
	Length() uint64
}

// Texture is a backing texture. Its contents are opaque to callers.
type Texture interface{}

// BlitOption selects one plane of a combined depth-stencil texture.
type BlitOption uint8

const (
	// BlitOptionNone copies the only plane of the texture.
	BlitOptionNone BlitOption = iota
	// BlitOptionDepthFromDepthStencil copies the depth plane.
	BlitOptionDepthFromDepthStencil
	// BlitOptionStencilFromDepthStencil copies the stencil plane.
	BlitOptionStencilFromDepthStencil
)

var blitOptionNames = [...]string{
	BlitOptionNone:                    "None",
	BlitOptionDepthFromDepthStencil:   "DepthFromDepthStencil",
	BlitOptionStencilFromDepthStencil: "StencilFromDepthStencil",
}

// String returns the option name.
func (o BlitOption) String() string {
	if int(o) < len(blitOptionNames) {
		return blitOptionNames[o]
	}
	return "Unknown"
}

// BlitOptionFor returns the blit option that selects the given texture aspect.
func BlitOptionFor(aspect gputypes.TextureAspect) BlitOption {
	switch aspect {
	case gputypes.TextureAspectDepthOnly:
		return BlitOptionDepthFromDepthStencil
	case gputypes.TextureAspectStencilOnly:
		return BlitOptionStencilFromDepthStencil
	default:
		return BlitOptionNone
	}
}

// BufferTextureCopy describes one transfer between a buffer and a texture
// region.
//
// Slice selects the array layer; Origin.Z selects the first depth slice of a
// 3D texture. Size is in texels. BytesPerRow is the distance between block
// rows in the buffer and BytesPerImage the distance between depth slices; both
// are zero when the region has a single row or image respectively.
type BufferTextureCopy struct {
	Buffer        Buffer
	Offset        uint64
	BytesPerRow   uint64
	BytesPerImage uint64

	Texture Texture
	Slice   uint32
	Level   uint32
	Origin  gputypes.Origin3D
	Size    gputypes.Extent3D

	Options BlitOption
}

// BlitEncoder records transfer commands.
//
// Commands are not validated. EndEncoding finishes the encoder and reports
// any error the device detected while recording. Discard finishes it
// without submitting anything that was recorded; commands a device executes
// eagerly are not undone.
type BlitEncoder interface {
	CopyBufferToBuffer(src Buffer, srcOffset uint64, dst Buffer, dstOffset, size uint64)
	CopyBufferToTexture(c *BufferTextureCopy)
	CopyTextureToBuffer(c *BufferTextureCopy)
	FillBuffer(dst Buffer, offset, size uint64, value byte)

	// ClearTextureSlice zeroes one array slice of a mip level. For 3D
	// textures slice 0 covers the whole volume.
	ClearTextureSlice(tex Texture, level, slice uint32)

	EndEncoding() error
	Discard()
}

// Device creates blit encoders.
type Device interface {
	// Name returns the backend identifier (e.g., "software", "native").
	Name() string

	// AdapterInfo describes the adapter behind the device.
	AdapterInfo() gpucontext.AdapterInfo

	// NewBlitEncoder starts a new blit encoder.
	NewBlitEncoder() (BlitEncoder, error)
}

// Allocator creates backing storage for resources. Devices that own their
// memory implement it.
type Allocator interface {
	NewBuffer(desc *gputypes.BufferDescriptor) (Buffer, error)
	NewTexture(desc *gputypes.TextureDescriptor) (Texture, error)
}

// Releaser frees backing storage an Allocator created once the resource
// wrapping it is destroyed. Devices whose storage is garbage collected do
// not implement it.
type Releaser interface {
	Release(r any)
}
