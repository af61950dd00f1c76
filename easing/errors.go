package easing

import "go.trai.ch/zerr"

var (
	// ErrValidationRejected is the umbrella error for a definition refused at registration time.
	ErrValidationRejected = zerr.New("easing definition rejected")

	// ErrEmptyName is returned when a definition has no name.
	ErrEmptyName = zerr.New("easing name is empty")

	// ErrInvalidName is returned when a name contains characters outside [A-Za-z0-9_-]
	// or starts with a digit.
	ErrInvalidName = zerr.New("easing name is not a valid identifier")

	// ErrReservedName is returned when a name collides with a built-in easing or a CSS-wide keyword.
	ErrReservedName = zerr.New("easing name is reserved")

	// ErrUnknownKind is returned when a parameter declares a kind outside the closed vocabulary.
	ErrUnknownKind = zerr.New("unknown argument kind")

	// ErrMissingLogic is returned when a definition carries no constructor.
	ErrMissingLogic = zerr.New("easing logic is missing")

	// ErrArityMismatch is returned when the constructor arity differs from the declared parameters.
	ErrArityMismatch = zerr.New("easing logic arity does not match declared parameters")

	// ErrRequiredAfterOptional is returned when a parameter without default follows one with a default.
	ErrRequiredAfterOptional = zerr.New("required parameter follows an optional one")

	// ErrInvalidDefault is returned when a default value is outside its parameter's kind or domain.
	ErrInvalidDefault = zerr.New("default value is invalid for its parameter")

	// ErrDuplicateParam is returned when two parameters share a name.
	ErrDuplicateParam = zerr.New("duplicate parameter name")

	// ErrAlreadyDefined is returned when a name is registered twice.
	ErrAlreadyDefined = zerr.New("easing already defined")
)

var (
	// ErrUndefined marks a request for a name that has not been registered yet.
	ErrUndefined = zerr.New("easing is not defined")

	// ErrInvalidArguments marks a request whose tokens do not coerce against the definition,
	// or whose construction logic faulted.
	ErrInvalidArguments = zerr.New("invalid easing arguments")

	// ErrErrored marks an evaluation fault at a specific progress value.
	ErrErrored = zerr.New("easing evaluation errored")

	// ErrNonFinite is returned when user logic produces NaN or an infinity.
	ErrNonFinite = zerr.New("easing produced a non-finite value")

	// ErrContextFault can be returned (or panicked with) by user logic to signal that the
	// evaluation context it runs in is no longer usable. The context is discarded and replaced.
	ErrContextFault = zerr.New("evaluation context fault")

	// ErrContextDiscarded is delivered to work that was queued on a discarded context.
	ErrContextDiscarded = zerr.New("evaluation context discarded")

	// ErrBudgetExceeded is delivered when user logic runs past the evaluation budget.
	ErrBudgetExceeded = zerr.New("evaluation budget exceeded")

	// ErrRuntimeClosed is delivered to requests issued after the runtime has been closed.
	ErrRuntimeClosed = zerr.New("easing runtime closed")
)
