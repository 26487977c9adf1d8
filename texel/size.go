package texel

// Size is a texel block byte size that may have overflowed.
// The zero value is overflowed.
type Size struct {
	value uint32
	valid bool
}

// SizeOf returns a valid Size of v bytes.
func SizeOf(v uint32) Size { return Size{value: v, valid: true} }

// Overflowed returns a Size that reports overflow.
func Overflowed() Size { return Size{} }

// Value returns the size in bytes and whether it is valid.
func (s Size) Value() (uint32, bool) { return s.value, s.valid }

// HasOverflowed reports whether the size is unusable.
func (s Size) HasOverflowed() bool { return !s.valid }
