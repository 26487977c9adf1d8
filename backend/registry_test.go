package backend

import (
	"errors"
	"slices"
	"testing"
)

func TestRegistryDefaultIsSoftware(t *testing.T) {
	if !IsRegistered(BackendSoftware) {
		t.Fatal("software backend should register on import")
	}
	d := Default()
	if d == nil || d.Name() != BackendSoftware {
		t.Errorf("Default() = %v, want software device", d)
	}
}

func TestRegistryRegisterUnregister(t *testing.T) {
	Register("test", func() Device { return NewSoftwareDevice() })
	defer Unregister("test")

	found := false
	for _, name := range Available() {
		if name == "test" {
			found = true
		}
	}
	if !found {
		t.Error("Available() should list registered backend")
	}
	if Get("test") == nil {
		t.Error("Get(test) returned nil")
	}

	Unregister("test")
	if IsRegistered("test") {
		t.Error("backend still registered after Unregister")
	}
	if Get("test") != nil {
		t.Error("Get() should return nil for unregistered backend")
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open("missing"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(missing) error = %v, want ErrBackendNotAvailable", err)
	}
	d, err := Open("")
	if err != nil || d == nil {
		t.Errorf("Open(\"\") = (%v, %v), want default device", d, err)
	}
}

func TestDefaultPrefersNative(t *testing.T) {
	native := NewSoftwareDevice()
	Register(BackendNative, func() Device { return native })
	defer Unregister(BackendNative)
	Register("aaa", func() Device { return NewSoftwareDevice() })
	defer Unregister("aaa")

	if got := Default(); got != native {
		t.Errorf("Default() = %p, want the native device %p", got, native)
	}
}

func TestDefaultSkipsNilFactories(t *testing.T) {
	Register(BackendNative, func() Device { return nil })
	defer Unregister(BackendNative)

	d := Default()
	if d == nil || d.Name() != BackendSoftware {
		t.Errorf("Default() = %v, want software device", d)
	}
	if _, err := Open(BackendNative); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(native) error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestAvailableSorted(t *testing.T) {
	Register("zzz", func() Device { return nil })
	defer Unregister("zzz")
	names := Available()
	if !slices.IsSorted(names) {
		t.Errorf("Available() = %v, want sorted", names)
	}
}
