package copyenc_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc"
	"github.com/gogpu/copyenc/backend"
	"github.com/gogpu/copyenc/resource"
)

// shortBuffer reports a backing store smaller than its creation size, as a
// driver that under-allocated would.
type shortBuffer struct {
	*resource.Buffer
	backing backend.Buffer
}

func (b *shortBuffer) Backing() backend.Buffer { return b.backing }

func TestOverflowPolicy(t *testing.T) {
	tests := []struct {
		name   string
		strict bool
	}{
		{"silent", false},
		{"strict", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, copyenc.WithStrictOverflow(tt.strict))
			buf := &shortBuffer{Buffer: e.buffer(64, copyUsage), backing: backend.NewSoftwareBuffer(8)}
			tex := e.texture(gputypes.TextureFormatRGBA8Unorm, gputypes.TextureDimension1D, gputypes.NewExtent3D(16, 1, 1))

			err := e.enc.CopyBufferToTexture(bufferDesc(buf, 0, unspecified, unspecified), textureDesc(tex, gputypes.Origin3D{}), gputypes.NewExtent3D(16, 1, 1))
			if tt.strict {
				if !errors.Is(err, copyenc.ErrAborted) || !errors.Is(err, copyenc.ErrValidation) {
					t.Errorf("error = %v, want a validation error wrapping ErrAborted", err)
				}
				if e.enc.State() != copyenc.StateInvalid {
					t.Errorf("State() = %v, want %v", e.enc.State(), copyenc.StateInvalid)
				}
				return
			}
			if err != nil {
				t.Errorf("error = %v, want nil", err)
			}
			e.finish()
			if s := e.dev.Stats(); s.BufferToTexture != 0 || s.TextureClears != 0 {
				t.Errorf("Stats() = %+v, want nothing emitted", s)
			}
		})
	}
}

func TestFinish(t *testing.T) {
	e := newEnv(t, copyenc.WithLabel("frame"))
	if e.enc.Label() != "frame" {
		t.Errorf("Label() = %q, want %q", e.enc.Label(), "frame")
	}
	buf := e.buffer(16, copyUsage)
	if err := e.enc.ClearBuffer(buf, 0, copyenc.WholeBuffer); err != nil {
		t.Fatalf("ClearBuffer() error = %v", err)
	}
	e.finish()
	if e.enc.State() != copyenc.StateEnded {
		t.Errorf("State() = %v, want %v", e.enc.State(), copyenc.StateEnded)
	}
	if got := e.dev.Stats().Encoders; got != 1 {
		t.Errorf("Encoders = %d, want 1", got)
	}

	if err := e.enc.Finish(); !errors.Is(err, copyenc.ErrInvalidEncoder) {
		t.Errorf("second Finish() error = %v, want ErrInvalidEncoder", err)
	}
	if err := e.enc.ClearBuffer(buf, 0, copyenc.WholeBuffer); !errors.Is(err, copyenc.ErrInvalidEncoder) {
		t.Errorf("ClearBuffer() after Finish error = %v, want ErrInvalidEncoder", err)
	}
	if e.enc.State() != copyenc.StateEnded {
		t.Errorf("use after Finish changed state to %v", e.enc.State())
	}
}

func TestEncoderReusesBlitEncoder(t *testing.T) {
	e := newEnv(t)
	buf := e.buffer(64, copyUsage)
	for range 3 {
		if err := e.enc.ClearBuffer(buf, 0, copyenc.SizeOf(16)); err != nil {
			t.Fatalf("ClearBuffer() error = %v", err)
		}
	}
	e.finish()
	s := e.dev.Stats()
	if s.Encoders != 1 || s.Fills != 3 {
		t.Errorf("Stats() = %+v, want 1 encoder and 3 fills", s)
	}
}

func TestLazyClearOnRead(t *testing.T) {
	e := newEnv(t)
	size := gputypes.NewExtent3D(4, 4, 2)
	tex := e.texture(gputypes.TextureFormatRGBA8Unorm, gputypes.TextureDimension2D, size)
	dst := e.buffer(2048, copyUsage)

	src := textureDesc(tex, gputypes.Origin3D{Z: 1})
	if err := e.enc.CopyTextureToBuffer(src, bufferDesc(dst, 0, copyenc.StrideOf(256), unspecified), gputypes.NewExtent3D(2, 2, 1)); err != nil {
		t.Fatalf("CopyTextureToBuffer() error = %v", err)
	}
	if err := e.enc.CopyTextureToBuffer(src, bufferDesc(dst, 0, copyenc.StrideOf(256), unspecified), gputypes.NewExtent3D(2, 2, 1)); err != nil {
		t.Fatalf("second CopyTextureToBuffer() error = %v", err)
	}
	e.finish()

	if got := e.dev.Stats().TextureClears; got != 1 {
		t.Errorf("TextureClears = %d, want 1", got)
	}
	if tex.PreviouslyCleared(0, 0) || !tex.PreviouslyCleared(0, 1) {
		t.Error("only the read slice should be cleared")
	}
}

func TestLazyClearOnWrite(t *testing.T) {
	tests := []struct {
		name   string
		origin gputypes.Origin3D
		size   gputypes.Extent3D
		clears int
	}{
		{"full", gputypes.Origin3D{}, gputypes.NewExtent3D(4, 4, 1), 0},
		{"partial", gputypes.Origin3D{X: 1}, gputypes.NewExtent3D(2, 4, 1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			tex := e.texture(gputypes.TextureFormatRGBA8Unorm, gputypes.TextureDimension2D, gputypes.NewExtent3D(4, 4, 1))
			src := e.patterned(1024)

			for range 2 {
				if err := e.enc.CopyBufferToTexture(bufferDesc(src, 0, copyenc.StrideOf(256), unspecified), textureDesc(tex, tt.origin), tt.size); err != nil {
					t.Fatalf("CopyBufferToTexture() error = %v", err)
				}
			}
			e.finish()

			if got := e.dev.Stats().TextureClears; got != tt.clears {
				t.Errorf("TextureClears = %d, want %d", got, tt.clears)
			}
			if !tex.PreviouslyCleared(0, 0) {
				t.Error("slice should be marked cleared after a write")
			}
		})
	}
}

func TestLazyClearCompressedPadding(t *testing.T) {
	e := newEnv(t)
	// A 6x6 BC1 texture is stored as 8x8; writing the physical extent covers
	// every logical texel.
	tex := e.texture(gputypes.TextureFormatBC1RGBAUnorm, gputypes.TextureDimension2D, gputypes.NewExtent3D(6, 6, 1))
	src := e.patterned(512)

	if err := e.enc.CopyBufferToTexture(bufferDesc(src, 0, copyenc.StrideOf(256), unspecified), textureDesc(tex, gputypes.Origin3D{}), gputypes.NewExtent3D(8, 8, 1)); err != nil {
		t.Fatalf("CopyBufferToTexture() error = %v", err)
	}
	e.finish()
	if got := e.dev.Stats().TextureClears; got != 0 {
		t.Errorf("TextureClears = %d, want 0", got)
	}
}

func TestClearBuffer(t *testing.T) {
	e := newEnv(t)
	buf := e.patterned(64)

	if err := e.enc.ClearBuffer(buf, 16, copyenc.WholeBuffer); err != nil {
		t.Fatalf("ClearBuffer(whole) error = %v", err)
	}
	if err := e.enc.ClearBuffer(buf, 0, copyenc.SizeOf(4)); err != nil {
		t.Fatalf("ClearBuffer(4) error = %v", err)
	}
	if err := e.enc.ClearBuffer(buf, 64, copyenc.WholeBuffer); err != nil {
		t.Fatalf("ClearBuffer(empty) error = %v", err)
	}
	e.finish()

	data := bytesOf(buf)
	if !bytes.Equal(data[:4], make([]byte, 4)) || !bytes.Equal(data[16:], make([]byte, 48)) {
		t.Errorf("cleared ranges not zero: %v", data)
	}
	if data[4] == 0 {
		t.Error("bytes outside the cleared ranges should be kept")
	}
	if got := e.dev.Stats().Fills; got != 2 {
		t.Errorf("Fills = %d, want 2", got)
	}
	if got := buf.IndirectInvalidations(); got != 3 {
		t.Errorf("IndirectInvalidations() = %d, want 3", got)
	}
}

func TestClearBufferValidation(t *testing.T) {
	tests := []struct {
		name   string
		usage  gputypes.BufferUsage
		offset uint64
		size   copyenc.BufferSize
		want   error
	}{
		{"offset past end", copyUsage, 68, copyenc.WholeBuffer, copyenc.ErrBufferBounds},
		{"range past end", copyUsage, 32, copyenc.SizeOf(64), copyenc.ErrBufferBounds},
		{"unaligned size", copyUsage, 0, copyenc.SizeOf(6), copyenc.ErrSizeAlignment},
		{"unaligned offset", copyUsage, 2, copyenc.SizeOf(4), copyenc.ErrOffsetAlignment},
		{"missing usage", gputypes.BufferUsageCopySrc, 0, copyenc.WholeBuffer, copyenc.ErrUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			buf := e.buffer(64, tt.usage)
			if err := e.enc.ClearBuffer(buf, tt.offset, tt.size); !isKind(err, tt.want) {
				t.Errorf("ClearBuffer() error = %v, want %v", err, tt.want)
			}
			if e.enc.State() != copyenc.StateInvalid {
				t.Errorf("State() = %v, want %v", e.enc.State(), copyenc.StateInvalid)
			}
		})
	}
}

func TestClearDestroyedBuffer(t *testing.T) {
	e := newEnv(t)
	buf := e.patterned(64)
	buf.Destroy()
	if err := e.enc.ClearBuffer(buf, 0, copyenc.WholeBuffer); err != nil {
		t.Fatalf("ClearBuffer() error = %v", err)
	}
	e.finish()
	if got := e.dev.Stats().Fills; got != 0 {
		t.Errorf("Fills = %d, want 0", got)
	}
}

// trackingDevice records how each blit encoder it hands out was finished.
type trackingDevice struct {
	*backend.SoftwareDevice
	encoders []*trackingBlit
}

type trackingBlit struct {
	backend.BlitEncoder
	ended     bool
	discarded bool
}

func (b *trackingBlit) EndEncoding() error {
	b.ended = true
	return b.BlitEncoder.EndEncoding()
}

func (b *trackingBlit) Discard() {
	b.discarded = true
	b.BlitEncoder.Discard()
}

func (d *trackingDevice) NewBlitEncoder() (backend.BlitEncoder, error) {
	enc, err := d.SoftwareDevice.NewBlitEncoder()
	if err != nil {
		return nil, err
	}
	b := &trackingBlit{BlitEncoder: enc}
	d.encoders = append(d.encoders, b)
	return b, nil
}

func TestFinishInvalidDiscardsRecording(t *testing.T) {
	dev := &trackingDevice{SoftwareDevice: backend.NewSoftwareDevice()}
	enc, err := copyenc.New(dev)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	buf, err := resource.CreateBuffer(dev, &gputypes.BufferDescriptor{Size: 64, Usage: copyUsage})
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	if err := enc.ClearBuffer(buf, 0, copyenc.SizeOf(16)); err != nil {
		t.Fatalf("ClearBuffer() error = %v", err)
	}
	if err := enc.ClearBuffer(buf, 2, copyenc.SizeOf(4)); !isKind(err, copyenc.ErrOffsetAlignment) {
		t.Fatalf("ClearBuffer() error = %v, want %v", err, copyenc.ErrOffsetAlignment)
	}

	if err := enc.Finish(); !errors.Is(err, copyenc.ErrInvalidEncoder) {
		t.Errorf("Finish() error = %v, want ErrInvalidEncoder", err)
	}
	if len(dev.encoders) != 1 {
		t.Fatalf("blit encoders = %d, want 1", len(dev.encoders))
	}
	if b := dev.encoders[0]; !b.discarded || b.ended {
		t.Errorf("blit encoder discarded = %v, ended = %v; want discarded only", b.discarded, b.ended)
	}
}
