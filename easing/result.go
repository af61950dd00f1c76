package easing

import "errors"

// Reason classifies why a host-boundary call produced an invalid value.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUndefined
	ReasonInvalidArguments
	ReasonErrored
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "ok"
	case ReasonUndefined:
		return "undefined"
	case ReasonInvalidArguments:
		return "invalid-arguments"
	case ReasonErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Result is the total outcome of a host-boundary call: either a number or an invalid value.
type Result struct {
	Value  float64
	Reason Reason
	Err    error
}

// Ok wraps a successfully computed value.
func Ok(v float64) Result {
	return Result{Value: v}
}

// Invalid builds an invalid-value result. A nil err is replaced by the reason's sentinel.
func Invalid(reason Reason, err error) Result {
	if err == nil {
		err = reason.sentinel()
	}
	return Result{Reason: reason, Err: err}
}

// OK reports whether the result carries a usable number.
func (r Result) OK() bool {
	return r.Reason == ReasonNone
}

func (r Reason) sentinel() error {
	switch r {
	case ReasonUndefined:
		return ErrUndefined
	case ReasonInvalidArguments:
		return ErrInvalidArguments
	case ReasonErrored:
		return ErrErrored
	default:
		return nil
	}
}

// ReasonOf maps an error from the runtime's taxonomy back to its Reason.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrUndefined):
		return ReasonUndefined
	case errors.Is(err, ErrInvalidArguments):
		return ReasonInvalidArguments
	default:
		return ReasonErrored
	}
}

// ConsumerHandle identifies a host-side computation that depends on a lookup.
type ConsumerHandle string

// Request is the unit of work submitted by the host.
type Request struct {
	Name     string
	Args     []Token
	Progress float64

	// Consumer, when set, is subscribed for invalidation if Name is not yet defined.
	Consumer ConsumerHandle
}
