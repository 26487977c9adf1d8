package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/copyenc"
)

// Script is a YAML description of resources and the operations to record
// against them.
type Script struct {
	// Label is passed to the encoder.
	Label string `yaml:"label"`

	// Strict promotes overflow and aborted blits to validation errors.
	Strict bool `yaml:"strict"`

	Buffers   map[string]BufferSpec   `yaml:"buffers"`
	Textures  map[string]TextureSpec  `yaml:"textures"`
	QuerySets map[string]QuerySetSpec `yaml:"query_sets"`
	Steps     []Step                  `yaml:"steps"`
}

// BufferSpec declares a buffer.
type BufferSpec struct {
	Size  uint64   `yaml:"size"`
	Usage []string `yaml:"usage"`

	// Fill is "zero" (default) or "pattern", which writes byte i as i mod 251.
	Fill string `yaml:"fill"`
}

// TextureSpec declares a texture.
type TextureSpec struct {
	Format      string    `yaml:"format"`
	Dimension   string    `yaml:"dimension"`
	Size        [3]uint32 `yaml:"size"`
	MipLevels   uint32    `yaml:"mip_levels"`
	SampleCount uint32    `yaml:"sample_count"`
	Usage       []string  `yaml:"usage"`
}

// QuerySetSpec declares a query set.
type QuerySetSpec struct {
	Type  string `yaml:"type"`
	Count uint32 `yaml:"count"`
}

// Step is one encoder operation. Op selects which of the other fields apply.
type Step struct {
	Op string `yaml:"op"`

	Buffer       string    `yaml:"buffer"`
	Offset       uint64    `yaml:"offset"`
	BytesPerRow  *uint32   `yaml:"bytes_per_row"`
	RowsPerImage *uint32   `yaml:"rows_per_image"`
	Texture      string    `yaml:"texture"`
	MipLevel     uint32    `yaml:"mip_level"`
	Origin       [3]uint32 `yaml:"origin"`
	Aspect       string    `yaml:"aspect"`
	Size         [3]uint32 `yaml:"size"`

	// ClearSize is the byte count of clear_buffer; absent means whole buffer.
	ClearSize *uint64 `yaml:"clear_size"`

	QuerySet   string `yaml:"query_set"`
	FirstQuery uint32 `yaml:"first_query"`
	QueryCount uint32 `yaml:"query_count"`
}

// LoadScript reads and decodes a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("script has no steps")
	}
	return &s, nil
}

var bufferUsages = map[string]gputypes.BufferUsage{
	"copy_src":      gputypes.BufferUsageCopySrc,
	"copy_dst":      gputypes.BufferUsageCopyDst,
	"query_resolve": gputypes.BufferUsageQueryResolve,
	"map_read":      gputypes.BufferUsageMapRead,
	"map_write":     gputypes.BufferUsageMapWrite,
}

var textureUsages = map[string]gputypes.TextureUsage{
	"copy_src":          gputypes.TextureUsageCopySrc,
	"copy_dst":          gputypes.TextureUsageCopyDst,
	"texture_binding":   gputypes.TextureUsageTextureBinding,
	"render_attachment": gputypes.TextureUsageRenderAttachment,
}

func parseBufferUsage(names []string) (gputypes.BufferUsage, error) {
	if len(names) == 0 {
		return gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst, nil
	}
	var u gputypes.BufferUsage
	for _, n := range names {
		f, ok := bufferUsages[strings.ToLower(n)]
		if !ok {
			return 0, fmt.Errorf("unknown buffer usage %q", n)
		}
		u |= f
	}
	return u, nil
}

func parseTextureUsage(names []string) (gputypes.TextureUsage, error) {
	if len(names) == 0 {
		return gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst, nil
	}
	var u gputypes.TextureUsage
	for _, n := range names {
		f, ok := textureUsages[strings.ToLower(n)]
		if !ok {
			return 0, fmt.Errorf("unknown texture usage %q", n)
		}
		u |= f
	}
	return u, nil
}

// lastTextureFormat is the highest defined gputypes.TextureFormat value.
const lastTextureFormat = gputypes.TextureFormatASTC12x12UnormSrgb

// parseFormat matches a format by its gputypes name, ignoring case.
func parseFormat(name string) (gputypes.TextureFormat, error) {
	for f := gputypes.TextureFormat(1); f <= lastTextureFormat; f++ {
		if strings.EqualFold(f.String(), name) {
			return f, nil
		}
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("unknown texture format %q", name)
}

func parseDimension(name string) (gputypes.TextureDimension, error) {
	switch strings.ToLower(name) {
	case "1d":
		return gputypes.TextureDimension1D, nil
	case "", "2d":
		return gputypes.TextureDimension2D, nil
	case "3d":
		return gputypes.TextureDimension3D, nil
	}
	return gputypes.TextureDimensionUndefined, fmt.Errorf("unknown texture dimension %q", name)
}

func parseAspect(name string) (gputypes.TextureAspect, error) {
	switch strings.ToLower(name) {
	case "", "all":
		return gputypes.TextureAspectAll, nil
	case "depth", "depth_only":
		return gputypes.TextureAspectDepthOnly, nil
	case "stencil", "stencil_only":
		return gputypes.TextureAspectStencilOnly, nil
	}
	return gputypes.TextureAspectUndefined, fmt.Errorf("unknown texture aspect %q", name)
}

func parseQueryType(name string) (copyenc.QueryType, error) {
	switch strings.ToLower(name) {
	case "", "occlusion":
		return copyenc.QueryTypeOcclusion, nil
	case "timestamp":
		return copyenc.QueryTypeTimestamp, nil
	}
	return 0, fmt.Errorf("unknown query type %q", name)
}

func extent(v [3]uint32) gputypes.Extent3D {
	return gputypes.Extent3D{Width: v[0], Height: v[1], DepthOrArrayLayers: v[2]}
}

func stride(v *uint32) copyenc.Stride {
	if v == nil {
		return copyenc.Stride{}
	}
	return copyenc.StrideOf(*v)
}
