package copyenc

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/copyenc/internal/checked"
	"github.com/gogpu/copyenc/texel"
)

// bytesPerRowAlignment is the required alignment of a specified bytesPerRow
// in buffer<->texture copies.
const bytesPerRowAlignment = 256

// validateChains rejects extension chains, which no descriptor supports.
func validateChains(op string, buf *CopyBufferDescriptor, tex *CopyTextureDescriptor) error {
	switch {
	case buf.NextInChain != nil:
		return invalid(op, ErrUnsupportedChain, "buffer descriptor")
	case buf.Layout.NextInChain != nil:
		return invalid(op, ErrUnsupportedChain, "texture data layout")
	case tex.NextInChain != nil:
		return invalid(op, ErrUnsupportedChain, "texture descriptor")
	}
	return nil
}

// validateCopy applies the linear texture data rules to a caller-submitted
// copy. Requests derived by splitting are not validated again.
func validateCopy(op string, req *copyRequest) error {
	buf, tex := req.buffer, req.texture
	if buf == nil || !buf.IsValid() {
		return invalid(op, ErrInvalidResource, "buffer")
	}
	if tex == nil || !tex.IsValid() {
		return invalid(op, ErrInvalidResource, "texture")
	}

	if req.toTexture() {
		if !buf.Usage().Contains(gputypes.BufferUsageCopySrc) {
			return invalid(op, ErrUsage, "source buffer lacks CopySrc")
		}
		if !tex.Usage().Contains(gputypes.TextureUsageCopyDst) {
			return invalid(op, ErrUsage, "destination texture lacks CopyDst")
		}
	} else {
		if !tex.Usage().Contains(gputypes.TextureUsageCopySrc) {
			return invalid(op, ErrUsage, "source texture lacks CopySrc")
		}
		if !buf.Usage().Contains(gputypes.BufferUsageCopyDst) {
			return invalid(op, ErrUsage, "destination buffer lacks CopyDst")
		}
	}

	if n := tex.SampleCount(); n != 1 {
		return invalid(op, ErrSampleCount, "sample count %d", n)
	}
	if req.mipLevel >= tex.MipLevelCount() {
		return invalid(op, ErrMipLevel, "level %d of %d", req.mipLevel, tex.MipLevelCount())
	}

	format := tex.Format()
	f := texel.AspectSpecificFormat(format, req.aspect)
	if f == gputypes.TextureFormatUndefined {
		return invalid(op, ErrAspect, "%v has no %v aspect", format, req.aspect)
	}
	if req.aspect == gputypes.TextureAspectAll && texel.IsCombinedDepthStencil(format) {
		return invalid(op, ErrAspect, "%v copies must select the depth or stencil aspect", format)
	}
	if !texel.IsCopyable(f, req.toTexture()) {
		return invalid(op, ErrFormatNotCopyable, "%v", f)
	}

	if err := validateShape(op, tex.Dimension(), req.size); err != nil {
		return err
	}

	bw, bh := texel.BlockDimensions(f)
	if req.origin.X%bw != 0 || req.origin.Y%bh != 0 {
		return invalid(op, ErrTexelAlignment, "origin %v with %dx%d blocks", req.origin, bw, bh)
	}
	if req.size.Width%bw != 0 || req.size.Height%bh != 0 {
		return invalid(op, ErrTexelAlignment, "extent %v with %dx%d blocks", req.size, bw, bh)
	}

	logical := tex.LogicalMipExtent(req.mipLevel)
	phys, ok := texel.PhysicalExtent(f, logical)
	if !ok ||
		!fits(req.origin.X, req.size.Width, phys.Width) ||
		!fits(req.origin.Y, req.size.Height, phys.Height) ||
		!fits(req.origin.Z, req.size.DepthOrArrayLayers, phys.DepthOrArrayLayers) {
		return invalid(op, ErrTextureBounds, "origin %v extent %v in mip extent %v", req.origin, req.size, phys)
	}

	if !req.isEmpty() {
		c := clipExtent(req.size, logical, req.origin)
		if c.Width == 0 || c.Height == 0 || c.DepthOrArrayLayers == 0 {
			return invalid(op, ErrDegenerateCopy, "extent %v clips to %v", req.size, c)
		}
	}

	bs, _ := texel.BlockSize(f).Value()
	align := uint64(bs)
	if f.HasDepth() || f.HasStencil() {
		align = 4
	}
	if req.layout.Offset%align != 0 {
		return invalid(op, ErrOffsetAlignment, "offset %d is not a multiple of %d", req.layout.Offset, align)
	}

	return validateLinearLayout(op, &req.layout, f, req.size, buf.InitialSize())
}

// validateShape checks the copy extent against the texture dimension. For 2D
// textures the depth counts array layers.
func validateShape(op string, dim gputypes.TextureDimension, size gputypes.Extent3D) error {
	switch dim {
	case gputypes.TextureDimension1D:
		if size.Height != 1 || size.DepthOrArrayLayers != 1 {
			return invalid(op, ErrDimension, "1D copies need height and depth of 1, got %v", size)
		}
	case gputypes.TextureDimension2D, gputypes.TextureDimension3D:
	default:
		return invalid(op, ErrDimension, "texture dimension %v", dim)
	}
	return nil
}

func fits(origin, size, extent uint32) bool {
	end, ok := checked.Add32(origin, size)
	return ok && end <= extent
}

// validateLinearLayout checks that the buffer side of a copy is well formed
// and in bounds.
func validateLinearLayout(op string, layout *TextureDataLayout, f gputypes.TextureFormat, size gputypes.Extent3D, bufferSize uint64) error {
	bs, _ := texel.BlockSize(f).Value()
	bw, bh := texel.BlockDimensions(f)
	widthInBlocks := uint64(size.Width / bw)
	heightInBlocks := uint64(size.Height / bh)
	depth := uint64(size.DepthOrArrayLayers)
	bytesInLastRow := widthInBlocks * uint64(bs)

	bpr, bprSet := layout.BytesPerRow.Get()
	rpi, rpiSet := layout.RowsPerImage.Get()

	if bprSet && bpr%bytesPerRowAlignment != 0 {
		return invalid(op, ErrBytesPerRow, "%d is not a multiple of %d", bpr, bytesPerRowAlignment)
	}
	if heightInBlocks > 1 && !bprSet {
		return invalid(op, ErrBytesPerRow, "required for %d block rows", heightInBlocks)
	}
	if depth > 1 && !bprSet {
		return invalid(op, ErrBytesPerRow, "required for %d images", depth)
	}
	if depth > 1 && !rpiSet {
		return invalid(op, ErrRowsPerImage, "required for %d images", depth)
	}
	if bprSet && uint64(bpr) < bytesInLastRow {
		return invalid(op, ErrBytesPerRow, "%d is less than the %d bytes of one block row", bpr, bytesInLastRow)
	}
	if rpiSet && uint64(rpi) < heightInBlocks {
		return invalid(op, ErrRowsPerImage, "%d is less than %d block rows", rpi, heightInBlocks)
	}

	var c checked.Chain
	var required uint64
	if depth > 1 {
		required = c.Mul(c.Mul(uint64(bpr), uint64(rpi)), depth-1)
	}
	if depth > 0 && heightInBlocks > 0 {
		required = c.Add(required, c.Add(c.Mul(uint64(bpr), heightInBlocks-1), bytesInLastRow))
	}
	end := c.Add(layout.Offset, required)
	if !c.OK() || end > bufferSize {
		return invalid(op, ErrBufferBounds, "offset %d + %d bytes > size %d", layout.Offset, required, bufferSize)
	}
	return nil
}
