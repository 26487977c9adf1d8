// Package resource provides the buffer, texture and query set objects an
// encoder operates on.
//
// Resources wrap backend storage and track the state the encoder reads and
// updates: validity, destruction, usage flags and, for textures, which
// (mip level, slice) pairs hold defined contents.
//
//	dev := backend.NewSoftwareDevice()
//	tex, err := resource.CreateTexture(dev, &gputypes.TextureDescriptor{
//		Size:          gputypes.NewExtent3D(256, 256, 1),
//		MipLevelCount: 1,
//		SampleCount:   1,
//		Dimension:     gputypes.TextureDimension2D,
//		Format:        gputypes.TextureFormatRGBA8Unorm,
//		Usage:         gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc,
//	})
package resource
