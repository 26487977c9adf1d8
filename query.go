package copyenc

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc/internal/checked"
	"github.com/gogpu/copyenc/recording"
)

const (
	// queryResolveAlignment is the required alignment of the destination
	// offset of ResolveQuerySet.
	queryResolveAlignment = 256

	// querySize is the byte size of one resolved query result.
	querySize = 8
)

// ResolveQuerySet copies queryCount results starting at firstQuery into
// destination at destinationOffset.
//
// Only occlusion results live in a visibility buffer this encoder can copy
// from; other query types are validated and otherwise left to the backend.
func (e *Encoder) ResolveQuerySet(querySet QuerySet, firstQuery, queryCount uint32, destination Buffer, destinationOffset uint64) error {
	const op = "ResolveQuerySet"
	if err := e.gate(op); err != nil {
		return err
	}
	if err := validateResolveQuerySet(op, querySet, firstQuery, queryCount, destination, destinationOffset); err != nil {
		return e.makeInvalid(err)
	}

	destination.IndirectBufferInvalidated()
	if querySet.IsDestroyed() || destination.IsDestroyed() || queryCount == 0 {
		return nil
	}
	if querySet.Type() != QueryTypeOcclusion {
		return nil
	}

	rec := recording.NewRecorder()
	rec.CopyBufferToBuffer(
		querySet.VisibilityBuffer(), querySize*uint64(firstQuery),
		destination.Backing(), destinationOffset,
		querySize*uint64(queryCount))
	return e.submit(rec.FinishRecording())
}

func validateResolveQuerySet(op string, qs QuerySet, firstQuery, queryCount uint32, dst Buffer, dstOffset uint64) error {
	if dstOffset%queryResolveAlignment != 0 {
		return invalid(op, ErrOffsetAlignment, "destination offset %d is not a multiple of %d", dstOffset, queryResolveAlignment)
	}
	if qs == nil || !(qs.IsDestroyed() || qs.IsValid()) {
		return invalid(op, ErrInvalidResource, "query set")
	}
	if dst == nil || !(dst.IsDestroyed() || dst.IsValid()) {
		return invalid(op, ErrInvalidResource, "destination buffer")
	}
	if !dst.Usage().Contains(gputypes.BufferUsageQueryResolve) {
		return invalid(op, ErrUsage, "destination buffer lacks QueryResolve")
	}
	if firstQuery >= qs.Count() {
		return invalid(op, ErrQueryRange, "first query %d of %d", firstQuery, qs.Count())
	}
	if end, ok := checked.Add32(firstQuery, queryCount); !ok || end > qs.Count() {
		return invalid(op, ErrQueryRange, "queries %d+%d of %d", firstQuery, queryCount, qs.Count())
	}
	var c checked.Chain
	end := c.Add(dstOffset, c.Mul(querySize, uint64(queryCount)))
	if !c.OK() || end > dst.InitialSize() {
		return invalid(op, ErrBufferBounds, "offset %d + %d results > size %d", dstOffset, queryCount, dst.InitialSize())
	}
	return nil
}
