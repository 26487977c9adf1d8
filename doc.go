// Package copyenc encodes WebGPU-style copy and resolve commands onto a
// backend transfer engine.
//
// # Overview
//
// An Encoder accepts four operations:
//
//   - CopyBufferToTexture
//   - CopyTextureToBuffer
//   - ClearBuffer
//   - ResolveQuerySet
//
// Each request is validated against the WebGPU rules for alignment, bounds,
// aspects and texture dimensions before anything is emitted. Offsets and
// strides are computed with checked arithmetic only. Copies whose row
// stride is too large for a single blit are split into one-row copies.
// Texture slices are zero-initialized before their first read and before a
// partial write.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/copyenc"
//		"github.com/gogpu/copyenc/backend"
//		"github.com/gogpu/copyenc/resource"
//	)
//
//	dev := backend.NewSoftwareDevice()
//	buf, _ := resource.NewBuffer(dev, &gputypes.BufferDescriptor{
//		Size:  1024,
//		Usage: gputypes.BufferUsageCopySrc,
//	})
//	tex, _ := resource.NewTexture(dev, &gputypes.TextureDescriptor{...})
//
//	enc, _ := copyenc.New(dev, copyenc.WithLabel("upload"))
//	err := enc.CopyBufferToTexture(
//		&copyenc.CopyBufferDescriptor{Buffer: buf, Layout: copyenc.TextureDataLayout{
//			BytesPerRow: copyenc.StrideOf(256),
//		}},
//		&copyenc.CopyTextureDescriptor{Texture: tex},
//		gputypes.NewExtent3D(64, 64, 1),
//	)
//	err = enc.Finish()
//
// # Errors
//
// A validation failure returns a *ValidationError and leaves the encoder
// Invalid for good; later operations return ErrInvalidEncoder. Operations
// on destroyed resources are no-ops. Arithmetic overflow drops the single
// operation silently unless the encoder is created WithStrictOverflow.
//
// # Architecture
//
// The library is organized into:
//   - copyenc: validation, layout resolution, splitting, lazy clears
//   - texel: format table (block sizes, aspects, mip extents)
//   - recording: planned blit commands, played back all at once
//   - backend: blit encoder interface, software and native devices
//   - resource: buffers, textures and query sets
package copyenc
