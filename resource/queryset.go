package resource

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc"
	"github.com/gogpu/copyenc/backend"
)

var _ copyenc.QuerySet = (*QuerySet)(nil)

// resultSize is the byte size of one query result.
const resultSize = 8

// QuerySet holds a fixed number of GPU queries.
type QuerySet struct {
	typ        copyenc.QueryType
	count      uint32
	visibility backend.Buffer
	valid      bool
	destroyed  bool
	release    func()
}

// NewQuerySet creates a query set. Occlusion sets need a visibility buffer
// with room for count results; the set is invalid otherwise.
func NewQuerySet(typ copyenc.QueryType, count uint32, visibility backend.Buffer) *QuerySet {
	valid := count > 0
	if typ == copyenc.QueryTypeOcclusion {
		valid = valid && visibility != nil && visibility.Length() >= resultSize*uint64(count)
	}
	return &QuerySet{typ: typ, count: count, visibility: visibility, valid: valid}
}

// CreateQuerySet allocates the visibility buffer of an occlusion set from a.
func CreateQuerySet(a backend.Allocator, typ copyenc.QueryType, count uint32) (*QuerySet, error) {
	if typ != copyenc.QueryTypeOcclusion {
		return NewQuerySet(typ, count, nil), nil
	}
	b, err := a.NewBuffer(&gputypes.BufferDescriptor{
		Label: "visibility",
		Size:  resultSize * uint64(count),
		Usage: gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("resource: create visibility buffer: %w", err)
	}
	qs := NewQuerySet(typ, count, b)
	qs.release = releaseFunc(a, b)
	return qs, nil
}

// IsValid reports whether the query set was created successfully.
func (q *QuerySet) IsValid() bool { return q.valid }

// IsDestroyed reports whether Destroy was called.
func (q *QuerySet) IsDestroyed() bool { return q.destroyed }

// Destroy releases the query set and its visibility buffer.
func (q *QuerySet) Destroy() {
	if q.destroyed {
		return
	}
	q.destroyed = true
	if q.release != nil {
		q.release()
	}
}

// Type returns the query type.
func (q *QuerySet) Type() copyenc.QueryType { return q.typ }

// Count returns the number of queries.
func (q *QuerySet) Count() uint32 { return q.count }

// VisibilityBuffer returns the buffer occlusion results are written to.
func (q *QuerySet) VisibilityBuffer() backend.Buffer { return q.visibility }
