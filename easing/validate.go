package easing

import (
	"fmt"
	"math"
	"regexp"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_-][A-Za-z0-9_-]*$`)

// reserved holds the built-in easing functions and the CSS-wide keywords
// that an author-supplied easing can never shadow.
var reserved = map[string]struct{}{
	"linear":       {},
	"ease":         {},
	"ease-in":      {},
	"ease-out":     {},
	"ease-in-out":  {},
	"step-start":   {},
	"step-end":     {},
	"steps":        {},
	"cubic-bezier": {},
	"initial":      {},
	"inherit":      {},
	"unset":        {},
	"revert":       {},
	"default":      {},
	"none":         {},
}

// IsReserved reports whether name belongs to the built-in vocabulary.
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// Validate checks a proposed definition before it is accepted.
//
// The returned error matches ErrValidationRejected and the specific reason
// (ErrEmptyName, ErrReservedName, ErrUnknownKind, ...). Validate has no side effects.
func Validate(def Definition) error {
	if err := validate(def); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrValidationRejected, def.Name, err)
	}
	return nil
}

func validate(def Definition) error {
	switch {
	case def.Name == "":
		return ErrEmptyName
	case !namePattern.MatchString(def.Name):
		return ErrInvalidName
	case IsReserved(def.Name):
		return ErrReservedName
	}

	seen := make(map[string]struct{}, len(def.Params))
	optional := false
	for i, p := range def.Params {
		if !p.Kind.Valid() {
			return fmt.Errorf("%w: param %d %q has kind %q", ErrUnknownKind, i, p.Name, p.Kind)
		}
		if p.Name != "" {
			if _, dup := seen[p.Name]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicateParam, p.Name)
			}
			seen[p.Name] = struct{}{}
		}
		if p.Optional() {
			optional = true
			if err := p.check(*p.Default); err != nil {
				return fmt.Errorf("%w: param %d %q: %w", ErrInvalidDefault, i, p.Name, err)
			}
		} else if optional {
			return fmt.Errorf("%w: param %d %q", ErrRequiredAfterOptional, i, p.Name)
		}
	}

	if def.Logic == nil {
		return ErrMissingLogic
	}
	arity, err := arityOf(def.Logic)
	if err != nil {
		return err
	}
	if arity != len(def.Params) {
		return fmt.Errorf("%w: logic takes %d, %d declared", ErrArityMismatch, arity, len(def.Params))
	}
	return nil
}

// arityOf asks the author's constructor for its arity. A typed-nil or
// panicking constructor counts as missing logic.
func arityOf(logic Constructor) (arity int, err error) {
	defer func() {
		if r := recover(); r != nil {
			arity, err = 0, fmt.Errorf("%w: arity panicked: %v", ErrMissingLogic, r)
		}
	}()
	return logic.Arity(), nil
}

// check verifies that a canonical value belongs to the parameter's kind and domain.
func (p Param) check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%g is not finite", v)
	}
	switch p.Kind {
	case KindInteger:
		if v != math.Trunc(v) {
			return fmt.Errorf("%g is not an integer", v)
		}
	case KindBoolean:
		if v != 0 && v != 1 {
			return fmt.Errorf("%g is not a boolean", v)
		}
	}
	if p.Min != nil && v < *p.Min {
		return fmt.Errorf("%g is below minimum %g", v, *p.Min)
	}
	if p.Max != nil && v > *p.Max {
		return fmt.Errorf("%g is above maximum %g", v, *p.Max)
	}
	return nil
}
