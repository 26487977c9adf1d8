package copyenc

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc/internal/checked"
	"github.com/gogpu/copyenc/recording"
)

// clearAlignment is the required alignment of ClearBuffer offsets and sizes.
const clearAlignment = 4

// ClearBuffer zeroes size bytes of buffer starting at offset. WholeBuffer
// clears to the end of the buffer.
func (e *Encoder) ClearBuffer(buffer Buffer, offset uint64, size BufferSize) error {
	const op = "ClearBuffer"
	if err := e.gate(op); err != nil {
		return err
	}
	if buffer == nil || !buffer.IsValid() {
		return e.makeInvalid(invalid(op, ErrInvalidResource, "buffer"))
	}

	n, ok := size.Get()
	if !ok {
		if n, ok = checked.Sub64(buffer.InitialSize(), offset); !ok {
			return e.makeInvalid(invalid(op, ErrBufferBounds, "offset %d > buffer size %d", offset, buffer.InitialSize()))
		}
	}
	if err := validateClearBuffer(op, buffer, offset, n); err != nil {
		return e.makeInvalid(err)
	}

	buffer.IndirectBufferInvalidated()
	if buffer.IsDestroyed() || n == 0 {
		return nil
	}
	backing := buffer.Backing()
	if end := offset + n; end > backing.Length() {
		Logger().Debug("copyenc: clear past backing length", "end", end, "length", backing.Length())
		return nil
	}

	rec := recording.NewRecorder()
	rec.FillBuffer(backing, offset, n, 0)
	return e.submit(rec.FinishRecording())
}

func validateClearBuffer(op string, buffer Buffer, offset, size uint64) error {
	if !buffer.Usage().Contains(gputypes.BufferUsageCopyDst) {
		return invalid(op, ErrUsage, "buffer lacks CopyDst")
	}
	if size%clearAlignment != 0 {
		return invalid(op, ErrSizeAlignment, "size %d is not a multiple of %d", size, clearAlignment)
	}
	if offset%clearAlignment != 0 {
		return invalid(op, ErrOffsetAlignment, "offset %d is not a multiple of %d", offset, clearAlignment)
	}
	if end, ok := checked.Add64(offset, size); !ok || end > buffer.InitialSize() {
		return invalid(op, ErrBufferBounds, "offset %d + size %d > buffer size %d", offset, size, buffer.InitialSize())
	}
	return nil
}
