package copyenc

import (
	"errors"
	"fmt"
)

// Precondition and internal errors.
var (
	// ErrInvalidEncoder is returned when an operation is issued on an
	// encoder that is no longer recording.
	ErrInvalidEncoder = errors.New("copyenc: encoder is not recording")

	// ErrNilDevice is returned by New when no device is given.
	ErrNilDevice = errors.New("copyenc: nil device")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("copyenc: validation failed")

	// ErrOverflow reports that a derived offset, stride or size does not fit
	// its integer width.
	ErrOverflow = errors.New("copyenc: arithmetic overflow")

	// ErrAborted reports that a final check before emission refused a blit.
	ErrAborted = errors.New("copyenc: blit aborted")
)

// Validation failure kinds. A *ValidationError unwraps to one of these and
// to ErrValidation.
var (
	ErrUnsupportedChain  = errors.New("unsupported extension chain")
	ErrInvalidResource   = errors.New("invalid resource")
	ErrUsage             = errors.New("missing usage flag")
	ErrSampleCount       = errors.New("texture is multisampled")
	ErrMipLevel          = errors.New("mip level out of range")
	ErrAspect            = errors.New("aspect does not match format")
	ErrFormatNotCopyable = errors.New("format is not copyable in this direction")
	ErrDimension         = errors.New("copy shape does not fit texture dimension")
	ErrDegenerateCopy    = errors.New("copy region is degenerate")
	ErrTexelAlignment    = errors.New("origin or extent not aligned to texel blocks")
	ErrTextureBounds     = errors.New("copy exceeds texture bounds")
	ErrOffsetAlignment   = errors.New("offset misaligned")
	ErrSizeAlignment     = errors.New("size misaligned")
	ErrBytesPerRow       = errors.New("invalid bytesPerRow")
	ErrRowsPerImage      = errors.New("invalid rowsPerImage")
	ErrBufferBounds      = errors.New("range exceeds buffer size")
	ErrQueryRange        = errors.New("query range exceeds query set")
)

// ValidationError describes a rejected operation. Op names the public
// operation and Reason is a human readable description.
type ValidationError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("copyenc: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("copyenc: %s: %v: %s", e.Op, e.Err, e.Reason)
}

// Unwrap returns ErrValidation and the specific failure kind.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

func invalid(op string, kind error, format string, args ...any) *ValidationError {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...), Err: kind}
}
