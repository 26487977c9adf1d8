package copyenc

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
)

// ChainedStruct is the head of an extension chain. No extensions are
// supported; any non-nil chain is rejected.
type ChainedStruct struct {
	Next  *ChainedStruct
	SType uint32
}

// Stride is an optional bytesPerRow or rowsPerImage value.
// The zero value is unspecified.
type Stride struct {
	value uint32
	set   bool
}

// StrideOf returns a specified stride of v.
func StrideOf(v uint32) Stride { return Stride{value: v, set: true} }

// RawStride converts a C-style stride where math.MaxUint32 means
// "undefined".
func RawStride(v uint32) Stride {
	if v == math.MaxUint32 {
		return Stride{}
	}
	return StrideOf(v)
}

// Get returns the stride and whether it was specified.
func (s Stride) Get() (uint32, bool) { return s.value, s.set }

// IsSpecified reports whether the stride carries a value.
func (s Stride) IsSpecified() bool { return s.set }

func (s Stride) String() string {
	if !s.set {
		return "undefined"
	}
	return fmt.Sprint(s.value)
}

// BufferSize is an optional byte count. The zero value means "to the end of
// the buffer".
type BufferSize struct {
	value uint64
	set   bool
}

// WholeBuffer is the BufferSize that extends to the end of the buffer.
var WholeBuffer = BufferSize{}

// SizeOf returns a BufferSize of n bytes.
func SizeOf(n uint64) BufferSize { return BufferSize{value: n, set: true} }

// RawSize converts a C-style size where math.MaxUint64 means "whole size".
func RawSize(v uint64) BufferSize {
	if v == math.MaxUint64 {
		return WholeBuffer
	}
	return SizeOf(v)
}

// Get returns the size and whether it was specified.
func (s BufferSize) Get() (uint64, bool) { return s.value, s.set }

func (s BufferSize) String() string {
	if !s.set {
		return "whole"
	}
	return fmt.Sprint(s.value)
}

// TextureDataLayout describes how texel data is laid out in a buffer.
type TextureDataLayout struct {
	NextInChain  *ChainedStruct
	Offset       uint64
	BytesPerRow  Stride
	RowsPerImage Stride
}

// CopyBufferDescriptor names a buffer region taking part in a copy.
type CopyBufferDescriptor struct {
	NextInChain *ChainedStruct
	Buffer      Buffer
	Layout      TextureDataLayout
}

// CopyTextureDescriptor names a texture subresource region taking part in a
// copy. An undefined Aspect is treated as TextureAspectAll.
type CopyTextureDescriptor struct {
	NextInChain *ChainedStruct
	Texture     Texture
	MipLevel    uint32
	Origin      gputypes.Origin3D
	Aspect      gputypes.TextureAspect
}
