package main

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc"
	"github.com/gogpu/copyenc/backend"
	"github.com/gogpu/copyenc/resource"
)

// runner owns the resources a script declares and the encoder its steps
// run through.
type runner struct {
	dev       backend.Device
	alloc     backend.Allocator
	enc       *copyenc.Encoder
	buffers   map[string]*resource.Buffer
	textures  map[string]*resource.Texture
	querySets map[string]*resource.QuerySet
	errs      []error
}

// StepResult is the outcome of one script step.
type StepResult struct {
	Index int
	Op    string
	Err   error
}

func newRunner(dev backend.Device, s *Script) (*runner, error) {
	alloc, ok := dev.(backend.Allocator)
	if !ok {
		return nil, fmt.Errorf("backend %q cannot allocate resources", dev.Name())
	}
	r := &runner{
		dev:       dev,
		alloc:     alloc,
		buffers:   make(map[string]*resource.Buffer),
		textures:  make(map[string]*resource.Texture),
		querySets: make(map[string]*resource.QuerySet),
	}
	enc, err := copyenc.New(dev,
		copyenc.WithLabel(s.Label),
		copyenc.WithStrictOverflow(s.Strict),
		copyenc.WithErrorHandler(func(err error) { r.errs = append(r.errs, err) }),
	)
	if err != nil {
		return nil, err
	}
	r.enc = enc

	for name, spec := range s.Buffers {
		if err := r.addBuffer(name, spec); err != nil {
			return nil, err
		}
	}
	for name, spec := range s.Textures {
		if err := r.addTexture(name, spec); err != nil {
			return nil, err
		}
	}
	for name, spec := range s.QuerySets {
		typ, err := parseQueryType(spec.Type)
		if err != nil {
			return nil, fmt.Errorf("query set %q: %w", name, err)
		}
		qs, err := resource.CreateQuerySet(alloc, typ, spec.Count)
		if err != nil {
			return nil, fmt.Errorf("query set %q: %w", name, err)
		}
		r.querySets[name] = qs
	}
	return r, nil
}

func (r *runner) addBuffer(name string, spec BufferSpec) error {
	usage, err := parseBufferUsage(spec.Usage)
	if err != nil {
		return fmt.Errorf("buffer %q: %w", name, err)
	}
	b, err := resource.CreateBuffer(r.alloc, &gputypes.BufferDescriptor{Label: name, Size: spec.Size, Usage: usage})
	if err != nil {
		return fmt.Errorf("buffer %q: %w", name, err)
	}
	switch spec.Fill {
	case "", "zero":
	case "pattern":
		sb, ok := b.Backing().(*backend.SoftwareBuffer)
		if !ok {
			return fmt.Errorf("buffer %q: pattern fill needs the software backend", name)
		}
		data := sb.Bytes()
		for i := range data {
			data[i] = byte(i % 251)
		}
	default:
		return fmt.Errorf("buffer %q: unknown fill %q", name, spec.Fill)
	}
	r.buffers[name] = b
	return nil
}

func (r *runner) addTexture(name string, spec TextureSpec) error {
	format, err := parseFormat(spec.Format)
	if err != nil {
		return fmt.Errorf("texture %q: %w", name, err)
	}
	dim, err := parseDimension(spec.Dimension)
	if err != nil {
		return fmt.Errorf("texture %q: %w", name, err)
	}
	usage, err := parseTextureUsage(spec.Usage)
	if err != nil {
		return fmt.Errorf("texture %q: %w", name, err)
	}
	t, err := resource.CreateTexture(r.alloc, &gputypes.TextureDescriptor{
		Label:         name,
		Size:          extent(spec.Size),
		MipLevelCount: max(spec.MipLevels, 1),
		SampleCount:   max(spec.SampleCount, 1),
		Dimension:     dim,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return fmt.Errorf("texture %q: %w", name, err)
	}
	r.textures[name] = t
	return nil
}

func (r *runner) buffer(name string) (*resource.Buffer, error) {
	b, ok := r.buffers[name]
	if !ok {
		return nil, fmt.Errorf("unknown buffer %q", name)
	}
	return b, nil
}

func (r *runner) texture(name string) (*resource.Texture, error) {
	t, ok := r.textures[name]
	if !ok {
		return nil, fmt.Errorf("unknown texture %q", name)
	}
	return t, nil
}

// run executes every step and returns one result per step. A step that
// fails does not stop the script; later steps report the invalid encoder.
func (r *runner) run(steps []Step) []StepResult {
	results := make([]StepResult, 0, len(steps))
	for i, st := range steps {
		results = append(results, StepResult{Index: i, Op: st.Op, Err: r.step(&st)})
	}
	return results
}

func (r *runner) step(st *Step) error {
	switch st.Op {
	case "copy_buffer_to_texture", "copy_texture_to_buffer":
		buf, err := r.buffer(st.Buffer)
		if err != nil {
			return err
		}
		tex, err := r.texture(st.Texture)
		if err != nil {
			return err
		}
		aspect, err := parseAspect(st.Aspect)
		if err != nil {
			return err
		}
		bd := &copyenc.CopyBufferDescriptor{
			Buffer: buf,
			Layout: copyenc.TextureDataLayout{
				Offset:       st.Offset,
				BytesPerRow:  stride(st.BytesPerRow),
				RowsPerImage: stride(st.RowsPerImage),
			},
		}
		td := &copyenc.CopyTextureDescriptor{
			Texture:  tex,
			MipLevel: st.MipLevel,
			Origin:   gputypes.Origin3D{X: st.Origin[0], Y: st.Origin[1], Z: st.Origin[2]},
			Aspect:   aspect,
		}
		if st.Op == "copy_buffer_to_texture" {
			return r.enc.CopyBufferToTexture(bd, td, extent(st.Size))
		}
		return r.enc.CopyTextureToBuffer(td, bd, extent(st.Size))

	case "clear_buffer":
		buf, err := r.buffer(st.Buffer)
		if err != nil {
			return err
		}
		size := copyenc.WholeBuffer
		if st.ClearSize != nil {
			size = copyenc.SizeOf(*st.ClearSize)
		}
		return r.enc.ClearBuffer(buf, st.Offset, size)

	case "resolve_query_set":
		qs, ok := r.querySets[st.QuerySet]
		if !ok {
			return fmt.Errorf("unknown query set %q", st.QuerySet)
		}
		buf, err := r.buffer(st.Buffer)
		if err != nil {
			return err
		}
		return r.enc.ResolveQuerySet(qs, st.FirstQuery, st.QueryCount, buf, st.Offset)

	case "destroy":
		if b, ok := r.buffers[st.Buffer]; ok {
			b.Destroy()
		}
		if t, ok := r.textures[st.Texture]; ok {
			t.Destroy()
		}
		return nil
	}
	return fmt.Errorf("unknown op %q", st.Op)
}
