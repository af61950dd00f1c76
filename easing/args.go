package easing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Token is a raw argument as produced by the host's function-reference parser.
type Token string

// Tokens is a convenience constructor for a token list.
func Tokens(raw ...string) []Token {
	out := make([]Token, len(raw))
	for i, r := range raw {
		out[i] = Token(r)
	}
	return out
}

// Args is the canonical, ordered list of bound argument values.
type Args []float64

// Equal reports structural equality of two canonical argument lists.
func (a Args) Equal(b Args) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Coerce binds raw tokens against the definition's declared parameters.
//
// Omitted trailing arguments take their declared defaults. Any count, kind or
// domain mismatch returns an error matching ErrInvalidArguments.
func Coerce(def Definition, tokens []Token) (Args, error) {
	if len(tokens) > len(def.Params) {
		return nil, fmt.Errorf("%w: %s takes at most %d arguments, got %d",
			ErrInvalidArguments, def.Name, len(def.Params), len(tokens))
	}
	args := make(Args, len(def.Params))
	for i, p := range def.Params {
		if i >= len(tokens) {
			if !p.Optional() {
				return nil, fmt.Errorf("%w: %s: missing argument %d (%s)",
					ErrInvalidArguments, def.Name, i, p.Name)
			}
			args[i] = canonical(*p.Default)
			continue
		}
		v, err := parse(p.Kind, tokens[i])
		if err == nil {
			err = p.check(v)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: argument %d (%s): %v",
				ErrInvalidArguments, def.Name, i, p.Name, err)
		}
		args[i] = canonical(v)
	}
	return args, nil
}

func parse(kind Kind, tok Token) (float64, error) {
	s := strings.TrimSpace(string(tok))
	switch kind {
	case KindBoolean:
		switch s {
		case "true":
			return 1, nil
		case "false":
			return 0, nil
		}
		return 0, fmt.Errorf("%q is not a boolean", s)
	case KindPercentage:
		num, ok := strings.CutSuffix(s, "%")
		if !ok {
			return 0, fmt.Errorf("%q is not a percentage", s)
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a percentage", s)
		}
		return v / 100, nil
	case KindNumber, KindInteger:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", s)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// canonical folds negative zero into zero so that "-0" and "0" bind to the same instance.
func canonical(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

// InstanceKey is the identity of an instance: definition name plus canonical arguments.
type InstanceKey string

// KeyOf renders the identity of (name, args).
func KeyOf(name string, args Args) InstanceKey {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, v := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte(')')
	return InstanceKey(b.String())
}

// Hash returns a stable 64-bit hash of the key.
func (k InstanceKey) Hash() uint64 {
	return xxhash.Sum64String(string(k))
}

// PartitionKey routes an instance to its owning evaluation context.
func (k InstanceKey) PartitionKey() string {
	return string(k)
}
