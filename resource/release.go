package resource

import "github.com/gogpu/copyenc/backend"

// releaseFunc returns a function freeing backing through a, or nil when a
// does not manage the lifetime of its storage.
func releaseFunc(a backend.Allocator, backing any) func() {
	r, ok := a.(backend.Releaser)
	if !ok || backing == nil {
		return nil
	}
	return func() { r.Release(backing) }
}
