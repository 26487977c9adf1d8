package recording

import (
	"errors"

	"github.com/gogpu/copyenc/backend"
)

// ErrNilEncoder is returned when a recording is played back onto a nil encoder.
var ErrNilEncoder = errors.New("recording: nil blit encoder")

// Recorder accumulates commands in order.
// The zero value is ready to use.
type Recorder struct {
	commands []Command
}

// NewRecorder creates a new Recorder.
func NewRecorder() *Recorder {
	return &Recorder{commands: make([]Command, 0, 8)}
}

// Len returns the number of recorded commands.
func (r *Recorder) Len() int {
	return len(r.commands)
}

// Record appends an arbitrary command.
func (r *Recorder) Record(cmd Command) {
	r.commands = append(r.commands, cmd)
}

// CopyBufferToBuffer records a buffer-to-buffer copy.
func (r *Recorder) CopyBufferToBuffer(src backend.Buffer, srcOffset uint64, dst backend.Buffer, dstOffset, size uint64) {
	r.Record(CopyBufferToBufferCommand{Src: src, SrcOffset: srcOffset, Dst: dst, DstOffset: dstOffset, Size: size})
}

// CopyBufferToTexture records an upload.
func (r *Recorder) CopyBufferToTexture(c backend.BufferTextureCopy) {
	r.Record(CopyBufferToTextureCommand{Copy: c})
}

// CopyTextureToBuffer records a readback.
func (r *Recorder) CopyTextureToBuffer(c backend.BufferTextureCopy) {
	r.Record(CopyTextureToBufferCommand{Copy: c})
}

// FillBuffer records a buffer fill.
func (r *Recorder) FillBuffer(dst backend.Buffer, offset, size uint64, value byte) {
	r.Record(FillBufferCommand{Dst: dst, Offset: offset, Size: size, Value: value})
}

// ClearTexture records a slice clear.
func (r *Recorder) ClearTexture(target SliceMarker, tex backend.Texture, level, slice uint32) {
	r.Record(ClearTextureCommand{Texture: tex, Target: target, Level: level, Slice: slice})
}

// MarkCleared records that a slice becomes defined.
func (r *Recorder) MarkCleared(target SliceMarker, level, slice uint32) {
	r.Record(MarkClearedCommand{Target: target, Level: level, Slice: slice})
}

// FinishRecording returns a Recording containing all recorded commands.
// After calling FinishRecording, the Recorder should not be used again.
func (r *Recorder) FinishRecording() *Recording {
	return &Recording{commands: r.commands}
}

// Recording is an immutable list of blit commands.
type Recording struct {
	commands []Command
}

// Commands returns the recorded commands.
func (r *Recording) Commands() []Command {
	return r.commands
}

// Len returns the number of commands.
func (r *Recording) Len() int {
	return len(r.commands)
}

// Count returns how many commands of type t the recording holds.
func (r *Recording) Count(t CommandType) int {
	n := 0
	for _, cmd := range r.commands {
		if cmd.Type() == t {
			n++
		}
	}
	return n
}

// Playback replays the recording onto enc.
// Clear markers are applied as their commands are replayed.
func (r *Recording) Playback(enc backend.BlitEncoder) error {
	if enc == nil {
		return ErrNilEncoder
	}

	for _, cmd := range r.commands {
		switch c := cmd.(type) {
		case CopyBufferToBufferCommand:
			enc.CopyBufferToBuffer(c.Src, c.SrcOffset, c.Dst, c.DstOffset, c.Size)
		case CopyBufferToTextureCommand:
			cp := c.Copy
			enc.CopyBufferToTexture(&cp)
		case CopyTextureToBufferCommand:
			cp := c.Copy
			enc.CopyTextureToBuffer(&cp)
		case FillBufferCommand:
			enc.FillBuffer(c.Dst, c.Offset, c.Size, c.Value)
		case ClearTextureCommand:
			enc.ClearTextureSlice(c.Texture, c.Level, c.Slice)
			if c.Target != nil {
				c.Target.SetPreviouslyCleared(c.Level, c.Slice, true)
			}
		case MarkClearedCommand:
			if c.Target != nil {
				c.Target.SetPreviouslyCleared(c.Level, c.Slice, true)
			}
		}
	}

	return nil
}
