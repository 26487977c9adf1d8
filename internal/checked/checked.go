// Package checked provides overflow-reporting arithmetic for the unsigned
// widths used in copy offset, stride and size computations.
//
// Every function returns the result together with ok=false when the exact
// result does not fit. A result that failed is always 0, never a wrapped value,
// so callers cannot accidentally use it.
package checked

import (
	"math"
	"math/bits"
)

// Add32 returns a+b.
func Add32(a, b uint32) (uint32, bool) {
	sum, carry := bits.Add32(a, b, 0)
	if carry != 0 {
		return 0, false
	}
	return sum, true
}

// Mul32 returns a*b.
func Mul32(a, b uint32) (uint32, bool) {
	hi, lo := bits.Mul32(a, b)
	if hi != 0 {
		return 0, false
	}
	return lo, true
}

// Add64 returns a+b.
func Add64(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, false
	}
	return sum, true
}

// Sub64 returns a-b. It fails when b > a.
func Sub64(a, b uint64) (uint64, bool) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, false
	}
	return diff, true
}

// Mul64 returns a*b.
func Mul64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, false
	}
	return lo, true
}

// MulAdd64 returns base + a*b, failing if either step overflows.
func MulAdd64(base, a, b uint64) (uint64, bool) {
	p, ok := Mul64(a, b)
	if !ok {
		return 0, false
	}
	return Add64(base, p)
}

// Narrow32 converts v to uint32 when it fits.
func Narrow32(v uint64) (uint32, bool) {
	if v > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}

// Chain accumulates a sequence of 64-bit operations and remembers whether any
// of them overflowed. Once failed, further operations are no-ops.
//
//	var c checked.Chain
//	off := c.Add(base, c.Mul(layer, imageStride))
//	if !c.OK() { ... }
type Chain struct {
	failed bool
}

// Add returns a+b, or 0 once the chain has failed.
func (c *Chain) Add(a, b uint64) uint64 {
	if c.failed {
		return 0
	}
	v, ok := Add64(a, b)
	c.failed = !ok
	return v
}

// Mul returns a*b, or 0 once the chain has failed.
func (c *Chain) Mul(a, b uint64) uint64 {
	if c.failed {
		return 0
	}
	v, ok := Mul64(a, b)
	c.failed = !ok
	return v
}

// OK reports whether every operation so far fit in 64 bits.
func (c *Chain) OK() bool { return !c.failed }
