package native

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/copyenc/backend"
	"github.com/gogpu/copyenc/internal/cache"
)

// scratchLimit is how many zeroed scratch buffers, one per byte size, a
// device keeps between blit encoders.
const scratchLimit = 8

var (
	_ backend.Device    = (*Device)(nil)
	_ backend.Allocator = (*Device)(nil)
	_ backend.Releaser  = (*Device)(nil)
)

// Device is a backend.Device backed by a HAL device and queue.
type Device struct {
	device hal.Device
	queue  hal.Queue
	info   gpucontext.AdapterInfo
	logger atomic.Pointer[slog.Logger]

	scratch *cache.Cache[uint64, hal.Buffer]

	// HAL objects released while a blit encoder is open may be referenced
	// by its unsubmitted commands. Their destruction waits until no encoder
	// of this device is open.
	mu       sync.Mutex
	open     int
	deferred []func()
}

// NewDevice wraps an open HAL device. info describes the adapter the device
// was opened on.
func NewDevice(device hal.Device, queue hal.Queue, info gpucontext.AdapterInfo) *Device {
	d := &Device{device: device, queue: queue, info: info}
	d.scratch = cache.New[uint64, hal.Buffer](scratchLimit, func(_ uint64, b hal.Buffer) {
		d.retire(func() { d.device.DestroyBuffer(b) })
	})
	return d
}

// Register makes the HAL device available as backend.BackendNative.
func Register(device hal.Device, queue hal.Queue, info gpucontext.AdapterInfo) {
	backend.Register(backend.BackendNative, func() backend.Device {
		return NewDevice(device, queue, info)
	})
}

// Name returns the backend identifier.
func (d *Device) Name() string {
	return backend.BackendNative
}

// AdapterInfo describes the adapter behind the device.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	return d.info
}

// SetLogger overrides the package logger for this device.
func (d *Device) SetLogger(l *slog.Logger) {
	d.logger.Store(l)
}

func (d *Device) log() *slog.Logger {
	if l := d.logger.Load(); l != nil {
		return l
	}
	return backend.Logger()
}

// scratchBuffer returns a pooled copy-source buffer of exactly size bytes.
// Its contents are undefined; callers clear it in their own encoding.
func (d *Device) scratchBuffer(size uint64) (hal.Buffer, error) {
	return d.scratch.GetOrCreate(size, func() (hal.Buffer, error) {
		d.log().Debug("native: allocating clear scratch buffer", "size", size)
		b, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "copyenc-clear-scratch",
			Size:  size,
			Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("native: create clear scratch buffer: %w", err)
		}
		return b, nil
	})
}

// retire runs destroy now if no blit encoder is open, otherwise once the
// last open encoder has ended.
func (d *Device) retire(destroy func()) {
	d.mu.Lock()
	if d.open > 0 {
		d.deferred = append(d.deferred, destroy)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	destroy()
}

func (d *Device) encoderOpened() {
	d.mu.Lock()
	d.open++
	d.mu.Unlock()
}

// encoderClosed runs the deferred destructions when the last open encoder
// has ended. Submitted work has completed by then.
func (d *Device) encoderClosed() {
	d.mu.Lock()
	d.open--
	var run []func()
	if d.open == 0 {
		run, d.deferred = d.deferred, nil
	}
	d.mu.Unlock()
	for _, destroy := range run {
		destroy()
	}
}

// ReleaseScratch destroys every pooled scratch buffer. Buffers an open
// encoder may still use are destroyed once it ends.
func (d *Device) ReleaseScratch() {
	d.scratch.Purge()
}

// ScratchStats reports the scratch pool counters.
func (d *Device) ScratchStats() cache.Stats {
	return d.scratch.Stats()
}

// NewBlitEncoder creates a HAL command encoder and begins encoding.
func (d *Device) NewBlitEncoder() (backend.BlitEncoder, error) {
	raw, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "copyenc-blit",
	})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := raw.BeginEncoding("copyenc-blit"); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}
	d.encoderOpened()
	return &blitEncoder{dev: d, raw: raw}, nil
}

// NewBuffer creates a HAL buffer for desc.
func (d *Device) NewBuffer(desc *gputypes.BufferDescriptor) (backend.Buffer, error) {
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Size,
		Usage:            desc.Usage,
		MappedAtCreation: desc.MappedAtCreation,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create buffer %q: %w", desc.Label, err)
	}
	return &Buffer{raw: raw, size: desc.Size}, nil
}

// NewTexture creates a HAL texture for desc.
func (d *Device) NewTexture(desc *gputypes.TextureDescriptor) (backend.Texture, error) {
	raw, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Size.Width,
			Height:             desc.Size.Height,
			DepthOrArrayLayers: desc.Size.DepthOrArrayLayers,
		},
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   max(desc.SampleCount, 1),
		Dimension:     desc.Dimension,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture %q: %w", desc.Label, err)
	}
	return &Texture{raw: raw, desc: *desc}, nil
}

// Release destroys the HAL object behind a buffer or texture created by
// this device. Objects of other devices are ignored.
func (d *Device) Release(r any) {
	switch r := r.(type) {
	case *Buffer:
		d.retire(func() { d.device.DestroyBuffer(r.raw) })
	case *Texture:
		d.retire(func() { d.device.DestroyTexture(r.raw) })
	}
}

// Buffer is a HAL buffer with its creation size.
type Buffer struct {
	raw  hal.Buffer
	size uint64
}

// Length returns the buffer size in bytes.
func (b *Buffer) Length() uint64 { return b.size }

// Raw returns the HAL buffer.
func (b *Buffer) Raw() hal.Buffer { return b.raw }

// Texture is a HAL texture with the descriptor it was created from.
type Texture struct {
	raw  hal.Texture
	desc gputypes.TextureDescriptor
}

// Raw returns the HAL texture.
func (t *Texture) Raw() hal.Texture { return t.raw }

// Descriptor returns the descriptor the texture was created from.
func (t *Texture) Descriptor() gputypes.TextureDescriptor { return t.desc }
