package native

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/copyenc/backend"
	"github.com/gogpu/copyenc/internal/checked"
	"github.com/gogpu/copyenc/texel"
)

// copyPitchAlignment is the row pitch alignment HAL backends require for
// buffer<->texture copies.
const copyPitchAlignment = 256

// submitTimeout bounds the wait for a submitted blit command buffer.
var submitTimeout = 5 * time.Second

// completionPoll is the interval at which queue completion is polled.
const completionPoll = 100 * time.Microsecond

var (
	// ErrUnsupportedFill is reported when a buffer fill with a non-zero
	// value is requested. HAL command encoders can only clear to zero.
	ErrUnsupportedFill = errors.New("native: non-zero buffer fill")

	// ErrSubmitTimeout is returned by EndEncoding when the queue does not
	// complete the submission within the timeout.
	ErrSubmitTimeout = errors.New("native: blit submission did not complete")
)

type blitEncoder struct {
	dev   *Device
	raw   hal.CommandEncoder
	ended bool
	err   error
}

func (e *blitEncoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *blitEncoder) active() bool {
	if e.ended {
		e.fail(backend.ErrEncoderEnded)
		return false
	}
	return true
}

func halBuffer(b backend.Buffer) (*Buffer, error) {
	nb, ok := b.(*Buffer)
	if !ok {
		return nil, fmt.Errorf("native: foreign buffer %T", b)
	}
	return nb, nil
}

func halTexture(t backend.Texture) (*Texture, error) {
	nt, ok := t.(*Texture)
	if !ok {
		return nil, fmt.Errorf("native: foreign texture %T", t)
	}
	return nt, nil
}

// aspectOf maps a blit option to the texture aspect it addresses.
func aspectOf(opt backend.BlitOption) gputypes.TextureAspect {
	switch opt {
	case backend.BlitOptionDepthFromDepthStencil:
		return gputypes.TextureAspectDepthOnly
	case backend.BlitOptionStencilFromDepthStencil:
		return gputypes.TextureAspectStencilOnly
	}
	return gputypes.TextureAspectAll
}

func (e *blitEncoder) CopyBufferToBuffer(src backend.Buffer, srcOffset uint64, dst backend.Buffer, dstOffset, size uint64) {
	if !e.active() {
		return
	}
	s, err := halBuffer(src)
	if err != nil {
		e.fail(err)
		return
	}
	d, err := halBuffer(dst)
	if err != nil {
		e.fail(err)
		return
	}
	e.raw.CopyBufferToBuffer(s.raw, d.raw, []hal.BufferCopy{{
		SrcOffset: srcOffset,
		DstOffset: dstOffset,
		Size:      size,
	}})
}

func (e *blitEncoder) CopyBufferToTexture(c *backend.BufferTextureCopy) {
	if !e.active() {
		return
	}
	buf, tex, region, err := e.region(c)
	if err != nil {
		e.fail(err)
		return
	}
	e.raw.CopyBufferToTexture(buf.raw, tex.raw, []hal.BufferTextureCopy{region})
}

func (e *blitEncoder) CopyTextureToBuffer(c *backend.BufferTextureCopy) {
	if !e.active() {
		return
	}
	buf, tex, region, err := e.region(c)
	if err != nil {
		e.fail(err)
		return
	}
	e.raw.CopyTextureToBuffer(tex.raw, buf.raw, []hal.BufferTextureCopy{region})
}

// region converts a blit into a HAL copy region.
//
// A zero BytesPerRow describes a single block row; HAL still needs a pitch
// so it gets the aligned row length. Slice selects the array layer and
// Origin.Z the depth of 3D textures; HAL folds both into the origin.
func (e *blitEncoder) region(c *backend.BufferTextureCopy) (*Buffer, *Texture, hal.BufferTextureCopy, error) {
	buf, err := halBuffer(c.Buffer)
	if err != nil {
		return nil, nil, hal.BufferTextureCopy{}, err
	}
	tex, err := halTexture(c.Texture)
	if err != nil {
		return nil, nil, hal.BufferTextureCopy{}, err
	}

	aspect := aspectOf(c.Options)
	f := texel.AspectSpecificFormat(tex.desc.Format, aspect)
	_, bh := texel.BlockDimensions(f)
	blockRows := (c.Size.Height + bh - 1) / bh

	pitch := c.BytesPerRow
	if pitch == 0 {
		row, ok := texel.BytesPerRow(f, c.Size.Width, 1)
		if ok {
			pitch, ok = texel.RoundUp(copyPitchAlignment, row)
		}
		if !ok {
			return nil, nil, hal.BufferTextureCopy{}, fmt.Errorf("%w: row pitch of %v", backend.ErrOutOfRange, c.Size)
		}
	}
	bpr, ok := checked.Narrow32(pitch)
	if !ok {
		return nil, nil, hal.BufferTextureCopy{}, fmt.Errorf("%w: bytes per row %d", backend.ErrOutOfRange, pitch)
	}
	rpi := blockRows
	if c.BytesPerRow != 0 && c.BytesPerImage != 0 {
		if rpi, ok = checked.Narrow32(c.BytesPerImage / c.BytesPerRow); !ok {
			return nil, nil, hal.BufferTextureCopy{}, fmt.Errorf("%w: rows per image", backend.ErrOutOfRange)
		}
	}
	z, ok := checked.Add32(c.Slice, c.Origin.Z)
	if !ok {
		return nil, nil, hal.BufferTextureCopy{}, fmt.Errorf("%w: slice %d", backend.ErrOutOfRange, c.Slice)
	}

	return buf, tex, hal.BufferTextureCopy{
		BufferLayout: hal.ImageDataLayout{Offset: c.Offset, BytesPerRow: bpr, RowsPerImage: rpi},
		TextureBase: hal.ImageCopyTexture{
			Texture:  tex.raw,
			MipLevel: c.Level,
			Origin:   hal.Origin3D{X: c.Origin.X, Y: c.Origin.Y, Z: z},
			Aspect:   aspect,
		},
		Size: hal.Extent3D{
			Width:              c.Size.Width,
			Height:             c.Size.Height,
			DepthOrArrayLayers: c.Size.DepthOrArrayLayers,
		},
	}, nil
}

func (e *blitEncoder) FillBuffer(dst backend.Buffer, offset, size uint64, value byte) {
	if !e.active() {
		return
	}
	d, err := halBuffer(dst)
	if err != nil {
		e.fail(err)
		return
	}
	if value != 0 {
		e.dev.log().Warn("native: dropping non-zero buffer fill", "value", value, "size", size)
		e.fail(fmt.Errorf("%w: value %#x", ErrUnsupportedFill, value))
		return
	}
	e.raw.ClearBuffer(d.raw, offset, size)
}

// ClearTextureSlice zeroes one slice of a mip level by copying from a
// cleared scratch buffer. Combined depth-stencil textures are cleared one
// aspect at a time; aspects that cannot be copied into are left alone.
func (e *blitEncoder) ClearTextureSlice(t backend.Texture, level, slice uint32) {
	if !e.active() {
		return
	}
	tex, err := halTexture(t)
	if err != nil {
		e.fail(err)
		return
	}
	desc := &tex.desc
	logical := texel.MipExtent(desc.Dimension, desc.Size, level)
	depth, z := uint32(1), slice
	if desc.Dimension == gputypes.TextureDimension3D {
		depth, z = logical.DepthOrArrayLayers, 0
	}

	aspects := []gputypes.TextureAspect{gputypes.TextureAspectAll}
	if texel.IsCombinedDepthStencil(desc.Format) {
		aspects = []gputypes.TextureAspect{gputypes.TextureAspectDepthOnly, gputypes.TextureAspectStencilOnly}
	}
	for _, aspect := range aspects {
		f := texel.AspectSpecificFormat(desc.Format, aspect)
		if !texel.IsCopyable(f, true) {
			e.dev.log().Warn("native: cannot clear aspect by copy", "format", f.String(), "level", level, "slice", slice)
			continue
		}
		if err := e.clearAspect(tex, f, aspect, level, z, logical, depth); err != nil {
			e.fail(err)
			return
		}
	}
}

func (e *blitEncoder) clearAspect(tex *Texture, f gputypes.TextureFormat, aspect gputypes.TextureAspect,
	level, z uint32, logical gputypes.Extent3D, depth uint32) error {
	phys, ok := texel.PhysicalExtent(f, logical)
	if !ok {
		return fmt.Errorf("%w: extent %v", backend.ErrOutOfRange, logical)
	}
	_, bh := texel.BlockDimensions(f)
	rows := phys.Height / bh

	var c checked.Chain
	row, ok := texel.BytesPerRow(f, phys.Width, 1)
	pitch, okPitch := texel.RoundUp(copyPitchAlignment, row)
	size := c.Mul(c.Mul(pitch, uint64(rows)), uint64(depth))
	bpr, okNarrow := checked.Narrow32(pitch)
	if !ok || !okPitch || !okNarrow || !c.OK() {
		return fmt.Errorf("%w: clear of %v %v", backend.ErrOutOfRange, f, phys)
	}

	scratch, err := e.dev.scratchBuffer(size)
	if err != nil {
		return err
	}

	e.raw.ClearBuffer(scratch, 0, size)
	e.raw.CopyBufferToTexture(scratch, tex.raw, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: bpr, RowsPerImage: rows},
		TextureBase: hal.ImageCopyTexture{
			Texture:  tex.raw,
			MipLevel: level,
			Origin:   hal.Origin3D{Z: z},
			Aspect:   aspect,
		},
		Size: hal.Extent3D{Width: phys.Width, Height: phys.Height, DepthOrArrayLayers: depth},
	}})
	return nil
}

// EndEncoding submits the recorded commands and waits for them. If any
// command failed the encoding is discarded and the first error returned.
func (e *blitEncoder) EndEncoding() error {
	if e.ended {
		return backend.ErrEncoderEnded
	}
	e.ended = true
	defer e.dev.encoderClosed()

	if e.err != nil {
		e.raw.DiscardEncoding()
		return e.err
	}

	cmdBuf, err := e.raw.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	defer e.dev.device.FreeCommandBuffer(cmdBuf)

	idx, err := e.dev.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	return e.dev.waitCompleted(idx)
}

// Discard drops everything recorded without submitting it.
func (e *blitEncoder) Discard() {
	if e.ended {
		return
	}
	e.ended = true
	e.raw.DiscardEncoding()
	e.dev.encoderClosed()
}

// waitCompleted blocks until the queue reports submission idx complete.
func (d *Device) waitCompleted(idx uint64) error {
	deadline := time.Now().Add(submitTimeout)
	for d.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: index %d, completed %d after %v",
				ErrSubmitTimeout, idx, d.queue.PollCompleted(), submitTimeout)
		}
		time.Sleep(completionPoll)
	}
	return nil
}
