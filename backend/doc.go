// Package backend provides the blit encoder abstraction that copy commands
// are lowered onto.
//
// A Device hands out BlitEncoders. A BlitEncoder accepts low-level transfer
// commands (buffer-to-buffer, buffer-to-texture, texture-to-buffer, fills and
// texture slice clears) and performs no validation of its own: every command
// it receives has already been checked and clipped by the caller.
//
// # Backend Registration
//
// Devices are registered by name and selected at runtime. The software
// device is automatically registered on import:
//
//	import _ "github.com/gogpu/copyenc/backend"
//
// # Backend Selection
//
// Use Default() to get the best available device, or Get() to request
// a specific one by name:
//
//	dev := backend.Default()
//	dev = backend.Get("software")
//
// # Available Backends
//
//   - "software": CPU memory, always available
//   - "native": gogpu/wgpu HAL command encoders, registered by the caller
//     through the native package
package backend
