package main

import (
	"fmt"
	"image"
	"os"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/bmp"

	"github.com/gogpu/copyenc"
	"github.com/gogpu/copyenc/backend"
	"github.com/gogpu/copyenc/resource"
	"github.com/gogpu/copyenc/texel"
)

// readbackAlignment is the bytesPerRow alignment of buffer copies.
const readbackAlignment = 256

// readback is a pending texture read into a staging buffer.
type readback struct {
	staging *resource.Buffer
	format  gputypes.TextureFormat
	width   uint32
	height  uint32
	pitch   uint32
}

// queueReadback records a copy of mip level 0, slice of tex into a new
// staging buffer. The pixels are available once the encoder finished.
func (r *runner) queueReadback(name string, slice uint32) (*readback, error) {
	tex, err := r.texture(name)
	if err != nil {
		return nil, err
	}
	switch tex.Format() {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
	default:
		return nil, fmt.Errorf("cannot dump %v texture %q", tex.Format(), name)
	}

	size := tex.Size()
	pitch, ok := texel.RoundUp32(readbackAlignment, size.Width*4)
	if !ok {
		return nil, fmt.Errorf("texture %q is too wide to dump", name)
	}
	staging, err := resource.CreateBuffer(r.alloc, &gputypes.BufferDescriptor{
		Label: "dump-staging",
		Size:  uint64(pitch) * uint64(size.Height),
		Usage: gputypes.BufferUsageCopyDst | gputypes.BufferUsageMapRead,
	})
	if err != nil {
		return nil, fmt.Errorf("creating staging buffer: %w", err)
	}

	origin := gputypes.Origin3D{Z: slice}
	err = r.enc.CopyTextureToBuffer(
		&copyenc.CopyTextureDescriptor{Texture: tex, Origin: origin},
		&copyenc.CopyBufferDescriptor{
			Buffer: staging,
			Layout: copyenc.TextureDataLayout{BytesPerRow: copyenc.StrideOf(pitch)},
		},
		gputypes.Extent3D{Width: size.Width, Height: size.Height, DepthOrArrayLayers: 1})
	if err != nil {
		return nil, fmt.Errorf("reading back %q: %w", name, err)
	}
	return &readback{staging: staging, format: tex.Format(), width: size.Width, height: size.Height, pitch: pitch}, nil
}

// image converts the staging buffer into an image.
func (rb *readback) image() (*image.NRGBA, error) {
	sb, ok := rb.staging.Backing().(*backend.SoftwareBuffer)
	if !ok {
		return nil, fmt.Errorf("dump needs the software backend")
	}
	data := sb.Bytes()
	img := image.NewNRGBA(image.Rect(0, 0, int(rb.width), int(rb.height)))
	bgra := rb.format == gputypes.TextureFormatBGRA8Unorm || rb.format == gputypes.TextureFormatBGRA8UnormSrgb
	for y := 0; y < int(rb.height); y++ {
		src := data[y*int(rb.pitch) : y*int(rb.pitch)+int(rb.width)*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+int(rb.width)*4]
		copy(dst, src)
		if bgra {
			for x := 0; x < len(dst); x += 4 {
				dst[x], dst[x+2] = dst[x+2], dst[x]
			}
		}
	}
	return img, nil
}

// writeBMP encodes the read-back pixels to path.
func (rb *readback) writeBMP(path string) error {
	img, err := rb.image()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
