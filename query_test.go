package copyenc_test

import (
	"bytes"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc"
	"github.com/gogpu/copyenc/backend"
	"github.com/gogpu/copyenc/resource"
)

const resolveUsage = gputypes.BufferUsageQueryResolve | gputypes.BufferUsageCopyDst

// occlusionSet returns an occlusion query set whose result i holds i+1.
func occlusionSet(t *testing.T, count uint32) *resource.QuerySet {
	t.Helper()
	vis := backend.NewSoftwareBuffer(8 * uint64(count))
	for i := range count {
		vis.Bytes()[8*i] = byte(i + 1)
	}
	qs := resource.NewQuerySet(copyenc.QueryTypeOcclusion, count, vis)
	if !qs.IsValid() {
		t.Fatal("occlusion query set is invalid")
	}
	return qs
}

func TestResolveQuerySet(t *testing.T) {
	e := newEnv(t)
	qs := occlusionSet(t, 4)
	dst := e.buffer(512, resolveUsage)

	if err := e.enc.ResolveQuerySet(qs, 1, 2, dst, 256); err != nil {
		t.Fatalf("ResolveQuerySet() error = %v", err)
	}
	e.finish()

	want := make([]byte, 16)
	want[0], want[8] = 2, 3
	if got := bytesOf(dst)[256:272]; !bytes.Equal(got, want) {
		t.Errorf("resolved = %v, want %v", got, want)
	}
	if got := dst.IndirectInvalidations(); got != 1 {
		t.Errorf("IndirectInvalidations() = %d, want 1", got)
	}
}

func TestResolveQuerySetNoops(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *env) (copyenc.QuerySet, *resource.Buffer, uint32)
	}{
		{
			name: "zero queries",
			setup: func(e *env) (copyenc.QuerySet, *resource.Buffer, uint32) {
				return occlusionSet(e.t, 4), e.buffer(256, resolveUsage), 0
			},
		},
		{
			name: "destroyed query set",
			setup: func(e *env) (copyenc.QuerySet, *resource.Buffer, uint32) {
				qs := occlusionSet(e.t, 4)
				qs.Destroy()
				return qs, e.buffer(256, resolveUsage), 2
			},
		},
		{
			name: "destroyed destination",
			setup: func(e *env) (copyenc.QuerySet, *resource.Buffer, uint32) {
				dst := e.buffer(256, resolveUsage)
				dst.Destroy()
				return occlusionSet(e.t, 4), dst, 2
			},
		},
		{
			name: "timestamp",
			setup: func(e *env) (copyenc.QuerySet, *resource.Buffer, uint32) {
				return resource.NewQuerySet(copyenc.QueryTypeTimestamp, 4, nil), e.buffer(256, resolveUsage), 2
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			qs, dst, count := tt.setup(e)
			if err := e.enc.ResolveQuerySet(qs, 0, count, dst, 0); err != nil {
				t.Fatalf("ResolveQuerySet() error = %v", err)
			}
			e.finish()
			if got := e.dev.Stats().BufferCopies; got != 0 {
				t.Errorf("BufferCopies = %d, want 0", got)
			}
			if got := dst.IndirectInvalidations(); got != 1 {
				t.Errorf("IndirectInvalidations() = %d, want 1", got)
			}
		})
	}
}

func TestResolveQuerySetValidation(t *testing.T) {
	tests := []struct {
		name   string
		usage  gputypes.BufferUsage
		size   uint64
		first  uint32
		count  uint32
		offset uint64
		want   error
	}{
		{"unaligned offset", resolveUsage, 512, 0, 1, 255, copyenc.ErrOffsetAlignment},
		{"missing usage", gputypes.BufferUsageCopyDst, 512, 0, 1, 0, copyenc.ErrUsage},
		{"first past end", resolveUsage, 512, 4, 0, 0, copyenc.ErrQueryRange},
		{"range past end", resolveUsage, 512, 2, 3, 0, copyenc.ErrQueryRange},
		{"destination too small", resolveUsage, 272, 0, 4, 256, copyenc.ErrBufferBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			dst := e.buffer(tt.size, tt.usage)
			err := e.enc.ResolveQuerySet(occlusionSet(t, 4), tt.first, tt.count, dst, tt.offset)
			if !isKind(err, tt.want) {
				t.Errorf("ResolveQuerySet() error = %v, want %v", err, tt.want)
			}
			if e.enc.State() != copyenc.StateInvalid {
				t.Errorf("State() = %v, want %v", e.enc.State(), copyenc.StateInvalid)
			}
		})
	}
}

func TestResolveQuerySetInvalidSet(t *testing.T) {
	e := newEnv(t)
	qs := resource.NewQuerySet(copyenc.QueryTypeOcclusion, 4, nil)
	err := e.enc.ResolveQuerySet(qs, 0, 1, e.buffer(256, resolveUsage), 0)
	if !isKind(err, copyenc.ErrInvalidResource) {
		t.Errorf("ResolveQuerySet() error = %v, want ErrInvalidResource", err)
	}
}
