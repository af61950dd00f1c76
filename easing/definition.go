package easing

import "fmt"

// Kind is the primitive tag of a declared argument.
// The vocabulary is closed; the host's token producer must agree on it.
type Kind string

const (
	// KindNumber accepts any finite real number.
	KindNumber Kind = "number"

	// KindInteger accepts finite whole numbers.
	KindInteger Kind = "integer"

	// KindPercentage accepts tokens with a trailing '%'; the canonical value is the fraction (50% -> 0.5).
	KindPercentage Kind = "percentage"

	// KindBoolean accepts "true" or "false"; the canonical value is 1 or 0.
	KindBoolean Kind = "boolean"
)

var kinds = []Kind{KindNumber, KindInteger, KindPercentage, KindBoolean}

// Kinds returns the recognized argument kinds.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Valid reports whether k belongs to the recognized vocabulary.
func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Param declares one positional argument of a definition.
type Param struct {
	Name string
	Kind Kind

	// Default makes the parameter optional. It is a canonical value:
	// percentages as fractions, booleans as 0 or 1.
	Default *float64

	// Min and Max bound the accepted domain, inclusive.
	Min *float64
	Max *float64
}

// Optional reports whether the parameter may be omitted.
func (p Param) Optional() bool {
	return p.Default != nil
}

// Float returns a pointer to v, handy for Param literals.
func Float(v float64) *float64 {
	return &v
}

// Easing is the evaluation capability of a constructed instance.
//
// Ease must be a pure function of progress: the runtime memoizes its results
// and may call it from any evaluation context.
type Easing interface {
	Ease(progress float64) (float64, error)
}

// EaseFunc adapts an infallible function to Easing.
type EaseFunc func(progress float64) float64

func (f EaseFunc) Ease(progress float64) (float64, error) {
	return f(progress), nil
}

// Constructor is the construction capability of a definition.
type Constructor interface {
	Arity() int
	Construct(args Args) (Easing, error)
}

// Definition is the registered description of a named easing.
type Definition struct {
	Name   string
	Params []Param
	Logic  Constructor
}

// String renders the signature, e.g. spring(stiffness: number = 100).
func (d Definition) String() string {
	s := d.Name + "("
	for i, p := range d.Params {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s: %s", p.Name, p.Kind)
		if p.Default != nil {
			s += fmt.Sprintf(" = %g", *p.Default)
		}
	}
	return s + ")"
}

type constructorFunc struct {
	arity int
	fn    func(Args) (Easing, error)
}

func (c constructorFunc) Arity() int { return c.arity }

func (c constructorFunc) Construct(args Args) (Easing, error) {
	if len(args) != c.arity {
		return nil, fmt.Errorf("%w: want %d arguments, got %d", ErrArityMismatch, c.arity, len(args))
	}
	return c.fn(args)
}

// ConstructN builds a Constructor of the given arity from a function over the canonical arguments.
func ConstructN(arity int, fn func(Args) (Easing, error)) Constructor {
	if fn == nil {
		return nil
	}
	return constructorFunc{arity: arity, fn: fn}
}

// Construct0 builds a Constructor for a definition without parameters.
func Construct0(fn func() (Easing, error)) Constructor {
	if fn == nil {
		return nil
	}
	return ConstructN(0, func(Args) (Easing, error) { return fn() })
}

// Construct1 builds a Constructor for a single parameter.
func Construct1(fn func(a float64) (Easing, error)) Constructor {
	if fn == nil {
		return nil
	}
	return ConstructN(1, func(args Args) (Easing, error) { return fn(args[0]) })
}

// Construct2 builds a Constructor for two parameters.
func Construct2(fn func(a, b float64) (Easing, error)) Constructor {
	if fn == nil {
		return nil
	}
	return ConstructN(2, func(args Args) (Easing, error) { return fn(args[0], args[1]) })
}

// Construct3 builds a Constructor for three parameters.
func Construct3(fn func(a, b, c float64) (Easing, error)) Constructor {
	if fn == nil {
		return nil
	}
	return ConstructN(3, func(args Args) (Easing, error) { return fn(args[0], args[1], args[2]) })
}
