package resource

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc"
	"github.com/gogpu/copyenc/backend"
)

var _ copyenc.Buffer = (*Buffer)(nil)

// Buffer is a linear GPU allocation.
type Buffer struct {
	label     string
	size      uint64
	usage     gputypes.BufferUsage
	backing   backend.Buffer
	valid     bool
	destroyed bool
	release   func()

	indirectInvalidations int
}

// NewBuffer wraps backing as a buffer described by desc. The buffer is
// invalid when backing is missing or shorter than desc.Size.
func NewBuffer(desc *gputypes.BufferDescriptor, backing backend.Buffer) *Buffer {
	return &Buffer{
		label:   desc.Label,
		size:    desc.Size,
		usage:   desc.Usage,
		backing: backing,
		valid:   backing != nil && backing.Length() >= desc.Size,
	}
}

// CreateBuffer allocates backing storage from a and wraps it.
func CreateBuffer(a backend.Allocator, desc *gputypes.BufferDescriptor) (*Buffer, error) {
	b, err := a.NewBuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("resource: create buffer %q: %w", desc.Label, err)
	}
	buf := NewBuffer(desc, b)
	buf.release = releaseFunc(a, b)
	return buf, nil
}

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// IsValid reports whether the buffer was created successfully.
func (b *Buffer) IsValid() bool { return b.valid }

// IsDestroyed reports whether Destroy was called.
func (b *Buffer) IsDestroyed() bool { return b.destroyed }

// Destroy releases the buffer and, for allocated buffers, its backing
// storage. Operations on a destroyed buffer are no-ops.
func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	if b.release != nil {
		b.release()
	}
}

// InitialSize returns the size the buffer was created with.
func (b *Buffer) InitialSize() uint64 { return b.size }

// Usage returns the usage flags.
func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }

// Backing returns the backend storage.
func (b *Buffer) Backing() backend.Buffer { return b.backing }

// IndirectBufferInvalidated records that the buffer contents changed.
func (b *Buffer) IndirectBufferInvalidated() { b.indirectInvalidations++ }

// IndirectInvalidations returns how many writes were recorded.
func (b *Buffer) IndirectInvalidations() int { return b.indirectInvalidations }
