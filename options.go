package copyenc

import "github.com/gogpu/gputypes"

// Option configures an Encoder during creation.
//
// Example:
//
//	enc, err := copyenc.New(dev,
//		copyenc.WithLabel("upload"),
//		copyenc.WithErrorHandler(func(err error) { log.Print(err) }),
//	)
type Option func(*options)

// options holds optional configuration for Encoder creation.
type options struct {
	label          string
	limits         gputypes.Limits
	errorHandler   func(error)
	strictOverflow bool
}

// defaultOptions returns the default encoder options.
func defaultOptions() options {
	return options{
		limits: gputypes.DefaultLimits(),
	}
}

// WithLabel sets the debug label of the encoder and of the backend blit
// encoder it creates.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithLimits sets the device limits used to clamp defaulted row strides.
func WithLimits(limits gputypes.Limits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithErrorHandler installs a callback that receives every validation error
// and every use of an encoder that is no longer recording. It is the
// application's error scope.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithStrictOverflow promotes arithmetic overflow and aborted blits from a
// silent no-op to a validation error that invalidates the encoder.
func WithStrictOverflow(strict bool) Option {
	return func(o *options) {
		o.strictOverflow = strict
	}
}
