// Package cache provides a small generic LRU cache whose evicted values are
// handed back to the owner for release.
//
// The native backend keeps its zero-filled scratch buffers in a Cache keyed
// by byte size, so repeated lazy clears of same-shaped subresources reuse
// one allocation:
//
//	c := cache.New[uint64, hal.Buffer](8, func(_ uint64, b hal.Buffer) {
//		device.DestroyBuffer(b)
//	})
//	buf, err := c.GetOrCreate(size, func() (hal.Buffer, error) { ... })
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
