package backend

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func newTexture(t *testing.T, format gputypes.TextureFormat, dim gputypes.TextureDimension, size gputypes.Extent3D, levels uint32) *SoftwareTexture {
	t.Helper()
	tex, err := NewSoftwareTexture(&gputypes.TextureDescriptor{
		Size:          size,
		MipLevelCount: levels,
		SampleCount:   1,
		Dimension:     dim,
		Format:        format,
	})
	if err != nil {
		t.Fatalf("NewSoftwareTexture() error = %v", err)
	}
	return tex
}

func TestSoftwareDeviceName(t *testing.T) {
	d := NewSoftwareDevice()
	if d.Name() != "software" {
		t.Errorf("Name() = %q, want %q", d.Name(), "software")
	}
	if info := d.AdapterInfo(); info.Type != gpucontext.AdapterTypeSoftware {
		t.Errorf("AdapterInfo().Type = %v, want Software", info.Type)
	}
}

func TestBufferTextureRoundTrip(t *testing.T) {
	d := NewSoftwareDevice()
	tex := newTexture(t, gputypes.TextureFormatRGBA8Unorm, gputypes.TextureDimension2D, gputypes.NewExtent3D(4, 4, 2), 1)

	src := NewSoftwareBuffer(256 * 2 * 2)
	for i := range src.Bytes() {
		src.Bytes()[i] = byte(i)
	}
	dst := NewSoftwareBuffer(src.Length())

	enc, err := d.NewBlitEncoder()
	if err != nil {
		t.Fatalf("NewBlitEncoder() error = %v", err)
	}
	for layer := uint32(0); layer < 2; layer++ {
		c := &BufferTextureCopy{
			Buffer:      src,
			Offset:      uint64(layer) * 512,
			BytesPerRow: 256,
			Texture:     tex,
			Slice:       layer,
			Origin:      gputypes.Origin3D{X: 1, Y: 1},
			Size:        gputypes.NewExtent3D(2, 2, 1),
		}
		enc.CopyBufferToTexture(c)
		back := *c
		back.Buffer = dst
		enc.CopyTextureToBuffer(&back)
	}
	if err := enc.EndEncoding(); err != nil {
		t.Fatalf("EndEncoding() error = %v", err)
	}

	for layer := 0; layer < 2; layer++ {
		for row := 0; row < 2; row++ {
			off := layer*512 + row*256
			if !bytes.Equal(dst.Bytes()[off:off+8], src.Bytes()[off:off+8]) {
				t.Errorf("layer %d row %d: got %v, want %v", layer, row, dst.Bytes()[off:off+8], src.Bytes()[off:off+8])
			}
		}
	}

	// Texel (1,1) of layer 1 lands at slice 1, row 1, byte 4.
	plane := tex.Plane(0, BlitOptionNone)
	if got := plane[16*4+16+4]; got != src.Bytes()[512] {
		t.Errorf("texel (1,1,1) = %d, want %d", got, src.Bytes()[512])
	}

	s := d.Stats()
	if s.BufferToTexture != 2 || s.TextureToBuffer != 2 {
		t.Errorf("Stats() = %+v, want 2 uploads and 2 readbacks", s)
	}
}

func TestCompressedTransfer(t *testing.T) {
	d := NewSoftwareDevice()
	tex := newTexture(t, gputypes.TextureFormatBC1RGBAUnorm, gputypes.TextureDimension2D, gputypes.NewExtent3D(8, 8, 1), 1)
	src := NewSoftwareBuffer(32)
	for i := range src.Bytes() {
		src.Bytes()[i] = byte(i + 1)
	}
	enc, _ := d.NewBlitEncoder()
	enc.CopyBufferToTexture(&BufferTextureCopy{
		Buffer:      src,
		BytesPerRow: 16,
		Texture:     tex,
		Size:        gputypes.NewExtent3D(8, 8, 1),
	})
	if err := enc.EndEncoding(); err != nil {
		t.Fatalf("EndEncoding() error = %v", err)
	}
	if !bytes.Equal(tex.Plane(0, BlitOptionNone), src.Bytes()) {
		t.Errorf("plane = %v, want %v", tex.Plane(0, BlitOptionNone), src.Bytes())
	}
}

func TestDepthStencilPlanes(t *testing.T) {
	d := NewSoftwareDevice()
	tex := newTexture(t, gputypes.TextureFormatDepth32FloatStencil8, gputypes.TextureDimension2D, gputypes.NewExtent3D(2, 1, 1), 1)
	src := NewSoftwareBuffer(2)
	src.Bytes()[0], src.Bytes()[1] = 7, 9

	enc, _ := d.NewBlitEncoder()
	enc.CopyBufferToTexture(&BufferTextureCopy{
		Buffer:  src,
		Texture: tex,
		Size:    gputypes.NewExtent3D(2, 1, 1),
		Options: BlitOptionStencilFromDepthStencil,
	})
	if err := enc.EndEncoding(); err != nil {
		t.Fatalf("EndEncoding() error = %v", err)
	}
	if got := tex.Plane(0, BlitOptionStencilFromDepthStencil); !bytes.Equal(got, []byte{7, 9}) {
		t.Errorf("stencil plane = %v, want [7 9]", got)
	}
	if got := tex.Plane(0, BlitOptionDepthFromDepthStencil); !bytes.Equal(got, make([]byte, 8)) {
		t.Errorf("depth plane = %v, want zeroes", got)
	}
}

func TestFillAndBufferCopy(t *testing.T) {
	d := NewSoftwareDevice()
	a := NewSoftwareBuffer(16)
	b := NewSoftwareBuffer(16)
	enc, _ := d.NewBlitEncoder()
	enc.FillBuffer(a, 4, 8, 0xAB)
	enc.CopyBufferToBuffer(a, 0, b, 0, 16)
	if err := enc.EndEncoding(); err != nil {
		t.Fatalf("EndEncoding() error = %v", err)
	}
	want := []byte{0, 0, 0, 0, 0xAB, 0xAB, 0xAB, 0xAB, 0xAB, 0xAB, 0xAB, 0xAB, 0, 0, 0, 0}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("buffer = %v, want %v", b.Bytes(), want)
	}
}

func TestClearTextureSlice(t *testing.T) {
	d := NewSoftwareDevice()
	tex := newTexture(t, gputypes.TextureFormatR8Unorm, gputypes.TextureDimension2D, gputypes.NewExtent3D(2, 2, 2), 1)
	data := tex.Plane(0, BlitOptionNone)
	for i := range data {
		data[i] = 1
	}
	enc, _ := d.NewBlitEncoder()
	enc.ClearTextureSlice(tex, 0, 1)
	if err := enc.EndEncoding(); err != nil {
		t.Fatalf("EndEncoding() error = %v", err)
	}
	if !bytes.Equal(data, []byte{1, 1, 1, 1, 0, 0, 0, 0}) {
		t.Errorf("plane = %v, want only slice 1 cleared", data)
	}

	vol := newTexture(t, gputypes.TextureFormatR8Unorm, gputypes.TextureDimension3D, gputypes.NewExtent3D(2, 2, 2), 1)
	vdata := vol.Plane(0, BlitOptionNone)
	for i := range vdata {
		vdata[i] = 1
	}
	enc, _ = d.NewBlitEncoder()
	enc.ClearTextureSlice(vol, 0, 0)
	if err := enc.EndEncoding(); err != nil {
		t.Fatalf("EndEncoding() error = %v", err)
	}
	if !bytes.Equal(vdata, make([]byte, 8)) {
		t.Errorf("volume = %v, want all cleared", vdata)
	}
}

func TestOutOfRange(t *testing.T) {
	d := NewSoftwareDevice()
	enc, _ := d.NewBlitEncoder()
	enc.FillBuffer(NewSoftwareBuffer(4), 2, 4, 0)
	if err := enc.EndEncoding(); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("EndEncoding() error = %v, want ErrOutOfRange", err)
	}
}

func TestEncoderEnded(t *testing.T) {
	d := NewSoftwareDevice()
	enc, _ := d.NewBlitEncoder()
	if err := enc.EndEncoding(); err != nil {
		t.Fatalf("EndEncoding() error = %v", err)
	}
	if err := enc.EndEncoding(); !errors.Is(err, ErrEncoderEnded) {
		t.Errorf("second EndEncoding() error = %v, want ErrEncoderEnded", err)
	}
}

func TestDiscardEndsEncoder(t *testing.T) {
	d := NewSoftwareDevice()
	enc, _ := d.NewBlitEncoder()
	enc.Discard()

	buf := NewSoftwareBuffer(8)
	buf.Bytes()[0] = 7
	enc.FillBuffer(buf, 0, 8, 0)
	if buf.Bytes()[0] != 7 {
		t.Error("FillBuffer ran after Discard")
	}
	if err := enc.EndEncoding(); !errors.Is(err, ErrEncoderEnded) {
		t.Errorf("EndEncoding() after Discard error = %v, want ErrEncoderEnded", err)
	}
}

func TestBlitOptionFor(t *testing.T) {
	tests := []struct {
		aspect gputypes.TextureAspect
		want   BlitOption
	}{
		{gputypes.TextureAspectAll, BlitOptionNone},
		{gputypes.TextureAspectDepthOnly, BlitOptionDepthFromDepthStencil},
		{gputypes.TextureAspectStencilOnly, BlitOptionStencilFromDepthStencil},
	}
	for _, tt := range tests {
		if got := BlitOptionFor(tt.aspect); got != tt.want {
			t.Errorf("BlitOptionFor(%v) = %v, want %v", tt.aspect, got, tt.want)
		}
	}
	if BlitOption(99).String() != "Unknown" {
		t.Error("out-of-range option should print Unknown")
	}
}
