package copyenc

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc/recording"
)

// CopyBufferToTexture copies texel data from a buffer into a texture
// subresource region.
//
// Validation failures invalidate the encoder and are returned as
// *ValidationError. Copies touching destroyed resources, zero-sized copies
// and copies whose offsets overflow do nothing and return nil, unless the
// encoder was created WithStrictOverflow.
func (e *Encoder) CopyBufferToTexture(src *CopyBufferDescriptor, dst *CopyTextureDescriptor, copySize gputypes.Extent3D) error {
	const op = "CopyBufferToTexture"
	if err := e.gate(op); err != nil {
		return err
	}
	if src == nil || dst == nil {
		return e.makeInvalid(invalid(op, ErrInvalidResource, "nil descriptor"))
	}
	if err := validateChains(op, src, dst); err != nil {
		return e.makeInvalid(err)
	}
	return e.copy(op, &copyRequest{
		dir:      bufferToTexture,
		buffer:   src.Buffer,
		layout:   src.Layout,
		texture:  dst.Texture,
		mipLevel: dst.MipLevel,
		origin:   dst.Origin,
		aspect:   normalizeAspect(dst.Aspect),
		size:     copySize,
	})
}

// CopyTextureToBuffer copies texel data from a texture subresource region
// into a buffer. Slices that were never written are zero-initialized first.
func (e *Encoder) CopyTextureToBuffer(src *CopyTextureDescriptor, dst *CopyBufferDescriptor, copySize gputypes.Extent3D) error {
	const op = "CopyTextureToBuffer"
	if err := e.gate(op); err != nil {
		return err
	}
	if src == nil || dst == nil {
		return e.makeInvalid(invalid(op, ErrInvalidResource, "nil descriptor"))
	}
	if err := validateChains(op, dst, src); err != nil {
		return e.makeInvalid(err)
	}
	return e.copy(op, &copyRequest{
		dir:      textureToBuffer,
		buffer:   dst.Buffer,
		layout:   dst.Layout,
		texture:  src.Texture,
		mipLevel: src.MipLevel,
		origin:   src.Origin,
		aspect:   normalizeAspect(src.Aspect),
		size:     copySize,
	})
}

func (e *Encoder) copy(op string, req *copyRequest) error {
	if err := validateCopy(op, req); err != nil {
		return e.makeInvalid(err)
	}
	// A zero-sized copy leaves every resource untouched.
	if req.isEmpty() {
		return nil
	}
	if !req.toTexture() {
		req.buffer.IndirectBufferInvalidated()
	}
	if req.buffer.IsDestroyed() || req.texture.IsDestroyed() {
		Logger().Debug("copyenc: copy on destroyed resource", "op", op, "label", e.opts.label)
		return nil
	}
	return e.runCopy(op, *req)
}

// workItem is either a single copy or a splitter producing sub-copies.
type workItem struct {
	req   copyRequest
	split *rowSplitter
}

// runCopy drains a work queue seeded with req. Each copy is resolved,
// planned into a recording and submitted before the next one is planned, so
// clear flags set by one sub-copy are visible to the next.
func (e *Encoder) runCopy(op string, req copyRequest) error {
	queue := []workItem{{req: req}}
	for len(queue) > 0 {
		var cur copyRequest
		if s := queue[0].split; s != nil {
			sub, ok := s.pop()
			if !ok {
				queue = queue[1:]
				continue
			}
			cur = sub
		} else {
			cur = queue[0].req
			queue = queue[1:]
		}

		split, err := e.planCopy(&cur)
		if err != nil {
			if errors.Is(err, ErrOverflow) || errors.Is(err, ErrAborted) {
				return e.abort(op, err)
			}
			return err
		}
		if split != nil {
			queue = append(queue, workItem{split: split})
		}
	}
	return nil
}

// planCopy plans and submits one copy. It returns a splitter instead of
// blits when the copy must be decomposed; the lazy clears of the whole copy
// are submitted first either way.
func (e *Encoder) planCopy(req *copyRequest) (*rowSplitter, error) {
	l, err := e.resolveLayout(req)
	if err != nil {
		return nil, err
	}

	var split *rowSplitter
	if l.needsSplit() {
		if split, err = newRowSplitter(req, &l); err != nil {
			return nil, err
		}
		Logger().Debug("copyenc: splitting copy",
			"label", e.opts.label,
			"bytesPerRow", l.rowStride,
			"max", l.maxRowStride,
			"subcopies", split.count())
	}

	rec := recording.NewRecorder()
	if err := planClears(rec, req, &l); err != nil {
		return nil, err
	}
	if split == nil {
		if err := planBlits(rec, req, &l); err != nil {
			return nil, err
		}
	}
	return split, e.submit(rec.FinishRecording())
}
