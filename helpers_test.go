package copyenc_test

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc"
	"github.com/gogpu/copyenc/backend"
	"github.com/gogpu/copyenc/resource"
)

const (
	copyUsage    = gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
	textureUsage = gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst
)

type env struct {
	t    *testing.T
	dev  *backend.SoftwareDevice
	enc  *copyenc.Encoder
	errs []error
}

func newEnv(t *testing.T, opts ...copyenc.Option) *env {
	t.Helper()
	e := &env{t: t, dev: backend.NewSoftwareDevice()}
	opts = append(opts, copyenc.WithErrorHandler(func(err error) { e.errs = append(e.errs, err) }))
	enc, err := copyenc.New(e.dev, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e.enc = enc
	return e
}

func (e *env) buffer(size uint64, usage gputypes.BufferUsage) *resource.Buffer {
	e.t.Helper()
	b, err := resource.CreateBuffer(e.dev, &gputypes.BufferDescriptor{Size: size, Usage: usage})
	if err != nil {
		e.t.Fatalf("CreateBuffer() error = %v", err)
	}
	return b
}

// patterned returns a buffer whose byte i holds a value derived from i.
func (e *env) patterned(size uint64) *resource.Buffer {
	b := e.buffer(size, copyUsage)
	data := bytesOf(b)
	for i := range data {
		data[i] = byte(i*7 + i/256 + 1)
	}
	return b
}

func (e *env) texture(format gputypes.TextureFormat, dim gputypes.TextureDimension, size gputypes.Extent3D) *resource.Texture {
	e.t.Helper()
	return e.textureDesc(&gputypes.TextureDescriptor{
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     dim,
		Format:        format,
		Usage:         textureUsage,
	})
}

func (e *env) textureDesc(desc *gputypes.TextureDescriptor) *resource.Texture {
	e.t.Helper()
	tex, err := resource.CreateTexture(e.dev, desc)
	if err != nil {
		e.t.Fatalf("CreateTexture() error = %v", err)
	}
	if !tex.IsValid() {
		e.t.Fatalf("texture %+v is invalid", desc)
	}
	return tex
}

// finish ends the encoder so software commands are complete and checks for
// backend errors.
func (e *env) finish() {
	e.t.Helper()
	if err := e.enc.Finish(); err != nil {
		e.t.Fatalf("Finish() error = %v", err)
	}
}

func bytesOf(b *resource.Buffer) []byte {
	return b.Backing().(*backend.SoftwareBuffer).Bytes()
}

func planeOf(t *resource.Texture, opt backend.BlitOption) []byte {
	return t.Backing().(*backend.SoftwareTexture).Plane(0, opt)
}

func bufferDesc(b copyenc.Buffer, offset uint64, bpr, rpi copyenc.Stride) *copyenc.CopyBufferDescriptor {
	return &copyenc.CopyBufferDescriptor{
		Buffer: b,
		Layout: copyenc.TextureDataLayout{Offset: offset, BytesPerRow: bpr, RowsPerImage: rpi},
	}
}

func textureDesc(t copyenc.Texture, origin gputypes.Origin3D) *copyenc.CopyTextureDescriptor {
	return &copyenc.CopyTextureDescriptor{Texture: t, Origin: origin}
}

var unspecified copyenc.Stride

// isKind reports whether err is a validation error of the given kind.
func isKind(err, kind error) bool {
	return errors.Is(err, copyenc.ErrValidation) && errors.Is(err, kind)
}
