package backend

import (
	"fmt"
	"slices"
	"sync"
)

// Backend names.
const (
	// BackendSoftware is the CPU memory backend. It registers itself on
	// import and is always available.
	BackendSoftware = "software"
	// BackendNative is the gogpu/wgpu HAL backend, registered by
	// native.Register once a HAL device is open.
	BackendNative = "native"
)

// DeviceFactory returns a device, or nil if the backend cannot provide one
// right now.
type DeviceFactory func() Device

// preference lists the backends Default tries first.
var preference = []string{BackendNative, BackendSoftware}

var registry = struct {
	sync.RWMutex
	factories map[string]DeviceFactory
}{factories: make(map[string]DeviceFactory)}

// Register makes a backend available under name, replacing any factory
// already registered there.
func Register(name string, factory DeviceFactory) {
	registry.Lock()
	defer registry.Unlock()
	registry.factories[name] = factory
}

// Unregister removes the backend registered under name.
func Unregister(name string) {
	registry.Lock()
	defer registry.Unlock()
	delete(registry.factories, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.factories))
	for name := range registry.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether a backend is registered under name.
func IsRegistered(name string) bool {
	registry.RLock()
	defer registry.RUnlock()
	_, ok := registry.factories[name]
	return ok
}

// Get returns a device from the backend registered under name, or nil.
func Get(name string) Device {
	registry.RLock()
	factory, ok := registry.factories[name]
	registry.RUnlock()
	if !ok {
		return nil
	}
	return factory()
}

// Default returns a device from the first preferred backend that yields
// one, then from any other registered backend in name order. It returns nil
// when nothing is registered.
func Default() Device {
	names := Available()
	slices.SortStableFunc(names, func(a, b string) int {
		return rank(a) - rank(b)
	})
	for _, name := range names {
		if d := Get(name); d != nil {
			return d
		}
	}
	return nil
}

func rank(name string) int {
	if i := slices.Index(preference, name); i >= 0 {
		return i
	}
	return len(preference)
}

// Open returns a device from the backend registered under name, or the
// Default device when name is empty.
func Open(name string) (Device, error) {
	var d Device
	if name == "" {
		d = Default()
	} else {
		d = Get(name)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	return d, nil
}
