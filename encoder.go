package copyenc

import (
	"fmt"

	"github.com/gogpu/copyenc/backend"
	"github.com/gogpu/copyenc/recording"
)

// State is the validity state of an Encoder.
type State uint8

const (
	// StateRecording accepts commands.
	StateRecording State = iota
	// StateInvalid is entered on the first validation failure and never left.
	StateInvalid
	// StateEnded is entered by Finish.
	StateEnded
)

var stateNames = [...]string{
	StateRecording: "Recording",
	StateInvalid:   "Invalid",
	StateEnded:     "Ended",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Encoder validates copy, clear and resolve requests and lowers them onto a
// backend blit encoder.
//
// An Encoder is not safe for concurrent use. The backend blit encoder is
// created on first use and reused until Finish.
type Encoder struct {
	device backend.Device
	opts   options
	state  State
	err    error
	blit   backend.BlitEncoder
}

// New creates an Encoder that records onto device.
func New(device backend.Device, opts ...Option) (*Encoder, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	info := device.AdapterInfo()
	Logger().Info("copyenc: encoder created",
		"label", o.label,
		"backend", device.Name(),
		"adapter", info.Name,
		"type", info.Type.String())

	return &Encoder{device: device, opts: o}, nil
}

// Label returns the encoder label.
func (e *Encoder) Label() string {
	return e.opts.label
}

// State returns the validity state.
func (e *Encoder) State() State {
	return e.state
}

// Err returns the error that invalidated the encoder, or nil.
func (e *Encoder) Err() error {
	return e.err
}

// Finish ends the backend blit encoder, if one was started, and closes the
// encoder. It fails if the encoder was invalidated.
func (e *Encoder) Finish() error {
	switch e.state {
	case StateInvalid:
		if e.blit != nil {
			e.blit.Discard()
			e.blit = nil
		}
		return fmt.Errorf("%w: %w", ErrInvalidEncoder, e.err)
	case StateEnded:
		return fmt.Errorf("%w: already finished", ErrInvalidEncoder)
	}

	e.state = StateEnded
	if e.blit == nil {
		return nil
	}
	err := e.blit.EndEncoding()
	e.blit = nil
	if err != nil {
		return fmt.Errorf("copyenc: end blit encoding: %w", err)
	}
	return nil
}

// gate is the precondition check run at the top of every operation.
func (e *Encoder) gate(op string) error {
	if e.state == StateRecording {
		return nil
	}
	var err error
	if e.state == StateInvalid {
		err = fmt.Errorf("%w: %s: %w", ErrInvalidEncoder, op, e.err)
	} else {
		err = fmt.Errorf("%w: %s: encoder state is %v", ErrInvalidEncoder, op, e.state)
	}
	e.report(err)
	return err
}

// makeInvalid records err as the sticky encoder error.
func (e *Encoder) makeInvalid(err error) error {
	if e.state == StateRecording {
		e.state = StateInvalid
		e.err = err
	}
	e.report(err)
	return err
}

func (e *Encoder) report(err error) {
	if e.opts.errorHandler != nil {
		e.opts.errorHandler(err)
	}
}

// abort handles ErrOverflow and ErrAborted according to the overflow policy.
func (e *Encoder) abort(op string, err error) error {
	if e.opts.strictOverflow {
		return e.makeInvalid(&ValidationError{Op: op, Reason: "strict overflow policy", Err: err})
	}
	Logger().Debug("copyenc: operation dropped", "op", op, "label", e.opts.label, "reason", err)
	return nil
}

// blitEncoder returns the shared backend blit encoder, creating it on first
// use.
func (e *Encoder) blitEncoder() (backend.BlitEncoder, error) {
	if e.blit != nil {
		return e.blit, nil
	}
	b, err := e.device.NewBlitEncoder()
	if err != nil {
		Logger().Warn("copyenc: blit encoder unavailable", "backend", e.device.Name(), "err", err)
		return nil, fmt.Errorf("copyenc: new blit encoder: %w", err)
	}
	e.blit = b
	return b, nil
}

// submit plays a fully planned recording back onto the blit encoder.
func (e *Encoder) submit(r *recording.Recording) error {
	if r.Len() == 0 {
		return nil
	}
	b, err := e.blitEncoder()
	if err != nil {
		return err
	}
	Logger().Debug("copyenc: submit", "label", e.opts.label, "commands", r.Len())
	return r.Playback(b)
}
