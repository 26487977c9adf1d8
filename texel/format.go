package texel

import "github.com/gogpu/gputypes"

// BlockSize returns the byte size of one texel block of f.
//
// Combined depth-stencil formats and Depth24Plus have no byte layout of their
// own; resolve them with AspectSpecificFormat first.
func BlockSize(f gputypes.TextureFormat) Size {
	switch f {
	case gputypes.TextureFormatR8Unorm, gputypes.TextureFormatR8Snorm,
		gputypes.TextureFormatR8Uint, gputypes.TextureFormatR8Sint,
		gputypes.TextureFormatStencil8:
		return SizeOf(1)

	case gputypes.TextureFormatR16Unorm, gputypes.TextureFormatR16Snorm,
		gputypes.TextureFormatR16Uint, gputypes.TextureFormatR16Sint,
		gputypes.TextureFormatR16Float,
		gputypes.TextureFormatRG8Unorm, gputypes.TextureFormatRG8Snorm,
		gputypes.TextureFormatRG8Uint, gputypes.TextureFormatRG8Sint,
		gputypes.TextureFormatDepth16Unorm:
		return SizeOf(2)

	case gputypes.TextureFormatR32Float, gputypes.TextureFormatR32Uint,
		gputypes.TextureFormatR32Sint,
		gputypes.TextureFormatRG16Unorm, gputypes.TextureFormatRG16Snorm,
		gputypes.TextureFormatRG16Uint, gputypes.TextureFormatRG16Sint,
		gputypes.TextureFormatRG16Float,
		gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatRGBA8Snorm, gputypes.TextureFormatRGBA8Uint,
		gputypes.TextureFormatRGBA8Sint,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatRGB10A2Uint, gputypes.TextureFormatRGB10A2Unorm,
		gputypes.TextureFormatRG11B10Ufloat, gputypes.TextureFormatRGB9E5Ufloat,
		gputypes.TextureFormatDepth32Float:
		return SizeOf(4)

	case gputypes.TextureFormatRG32Float, gputypes.TextureFormatRG32Uint,
		gputypes.TextureFormatRG32Sint,
		gputypes.TextureFormatRGBA16Unorm, gputypes.TextureFormatRGBA16Snorm,
		gputypes.TextureFormatRGBA16Uint, gputypes.TextureFormatRGBA16Sint,
		gputypes.TextureFormatRGBA16Float:
		return SizeOf(8)

	case gputypes.TextureFormatRGBA32Float, gputypes.TextureFormatRGBA32Uint,
		gputypes.TextureFormatRGBA32Sint:
		return SizeOf(16)

	case gputypes.TextureFormatBC1RGBAUnorm, gputypes.TextureFormatBC1RGBAUnormSrgb,
		gputypes.TextureFormatBC4RUnorm, gputypes.TextureFormatBC4RSnorm,
		gputypes.TextureFormatETC2RGB8Unorm, gputypes.TextureFormatETC2RGB8UnormSrgb,
		gputypes.TextureFormatETC2RGB8A1Unorm, gputypes.TextureFormatETC2RGB8A1UnormSrgb,
		gputypes.TextureFormatEACR11Unorm, gputypes.TextureFormatEACR11Snorm:
		return SizeOf(8)

	case gputypes.TextureFormatBC2RGBAUnorm, gputypes.TextureFormatBC2RGBAUnormSrgb,
		gputypes.TextureFormatBC3RGBAUnorm, gputypes.TextureFormatBC3RGBAUnormSrgb,
		gputypes.TextureFormatBC5RGUnorm, gputypes.TextureFormatBC5RGSnorm,
		gputypes.TextureFormatBC6HRGBUfloat, gputypes.TextureFormatBC6HRGBFloat,
		gputypes.TextureFormatBC7RGBAUnorm, gputypes.TextureFormatBC7RGBAUnormSrgb,
		gputypes.TextureFormatETC2RGBA8Unorm, gputypes.TextureFormatETC2RGBA8UnormSrgb,
		gputypes.TextureFormatEACRG11Unorm, gputypes.TextureFormatEACRG11Snorm:
		return SizeOf(16)
	}

	if isASTC(f) {
		return SizeOf(16)
	}
	return Overflowed()
}

// BlockDimensions returns the width and height in texels of one block of f.
// Uncompressed formats have 1x1 blocks.
func BlockDimensions(f gputypes.TextureFormat) (width, height uint32) {
	switch {
	case f >= gputypes.TextureFormatBC1RGBAUnorm && f <= gputypes.TextureFormatEACRG11Snorm:
		return 4, 4
	case isASTC(f):
		d := astcBlocks[(f-gputypes.TextureFormatASTC4x4Unorm)/2]
		return d[0], d[1]
	default:
		return 1, 1
	}
}

// astcBlocks lists ASTC footprints in gputypes order; each footprint has an
// Unorm and an UnormSrgb variant.
var astcBlocks = [...][2]uint32{
	{4, 4}, {5, 4}, {5, 5}, {6, 5}, {6, 6}, {8, 5}, {8, 6},
	{8, 8}, {10, 5}, {10, 6}, {10, 8}, {10, 10}, {12, 10}, {12, 12},
}

func isASTC(f gputypes.TextureFormat) bool {
	return f >= gputypes.TextureFormatASTC4x4Unorm && f <= gputypes.TextureFormatASTC12x12UnormSrgb
}

// IsCompressed reports whether f uses blocks larger than one texel.
func IsCompressed(f gputypes.TextureFormat) bool {
	w, h := BlockDimensions(f)
	return w != 1 || h != 1
}

// IsCombinedDepthStencil reports whether f stores both depth and stencil.
func IsCombinedDepthStencil(f gputypes.TextureFormat) bool {
	return f.HasDepth() && f.HasStencil()
}

// AspectSpecificFormat returns the format of the given aspect of f.
// It returns TextureFormatUndefined when f has no such aspect.
func AspectSpecificFormat(f gputypes.TextureFormat, aspect gputypes.TextureAspect) gputypes.TextureFormat {
	switch aspect {
	case gputypes.TextureAspectAll:
		return f
	case gputypes.TextureAspectDepthOnly:
		switch f {
		case gputypes.TextureFormatDepth24PlusStencil8:
			return gputypes.TextureFormatDepth24Plus
		case gputypes.TextureFormatDepth32FloatStencil8:
			return gputypes.TextureFormatDepth32Float
		}
		if f.HasDepth() {
			return f
		}
	case gputypes.TextureAspectStencilOnly:
		if f.HasStencil() {
			return gputypes.TextureFormatStencil8
		}
	}
	return gputypes.TextureFormatUndefined
}

// IsCopyable reports whether a buffer copy may read (toTexture=false) or write
// (toTexture=true) the aspect-specific format f.
//
// Depth24Plus is never copyable. Depth32Float may only be read back.
func IsCopyable(f gputypes.TextureFormat, toTexture bool) bool {
	switch f {
	case gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32FloatStencil8:
		return false
	case gputypes.TextureFormatDepth32Float:
		return !toTexture
	}
	return !BlockSize(f).HasOverflowed()
}
