package copyenc

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc/backend"
)

// Buffer is the view of a buffer resource the encoder needs.
type Buffer interface {
	// IsValid reports whether the buffer was created successfully.
	IsValid() bool
	IsDestroyed() bool

	// InitialSize is the size the buffer was created with. The backing
	// store may be larger.
	InitialSize() uint64
	Usage() gputypes.BufferUsage
	Backing() backend.Buffer

	// IndirectBufferInvalidated is called when an operation writes to the
	// buffer, so cached indirect draw validation can be dropped.
	IndirectBufferInvalidated()
}

// Texture is the view of a texture resource the encoder needs.
type Texture interface {
	IsValid() bool
	IsDestroyed() bool
	Format() gputypes.TextureFormat
	Dimension() gputypes.TextureDimension
	SampleCount() uint32
	MipLevelCount() uint32
	Usage() gputypes.TextureUsage

	// LogicalMipExtent returns the size of a mip level in texels. Array
	// layers are reported in DepthOrArrayLayers.
	LogicalMipExtent(level uint32) gputypes.Extent3D

	// PreviouslyCleared reports whether a (mip level, slice) pair holds
	// defined contents.
	PreviouslyCleared(level, slice uint32) bool
	SetPreviouslyCleared(level, slice uint32, cleared bool)

	Backing() backend.Texture
}

// QueryType is the kind of counters a query set holds.
type QueryType uint8

const (
	QueryTypeOcclusion QueryType = iota
	QueryTypeTimestamp
)

func (t QueryType) String() string {
	switch t {
	case QueryTypeOcclusion:
		return "Occlusion"
	case QueryTypeTimestamp:
		return "Timestamp"
	default:
		return "Unknown"
	}
}

// QuerySet is the view of a query set the encoder needs.
type QuerySet interface {
	IsValid() bool
	IsDestroyed() bool
	Type() QueryType
	Count() uint32

	// VisibilityBuffer holds one 8-byte result per occlusion query.
	VisibilityBuffer() backend.Buffer
}
