// Package catalog is a sample module of easing definitions.
//
// It exercises every argument kind and shows both closed-form logic and logic
// delegated to github.com/fogleman/ease.
package catalog

import (
	"math"

	"github.com/fogleman/ease"

	"github.com/on-the-ground/easing_ive_go/easing"
)

// Module returns every catalog definition, ready for Runtime.RegisterModule.
func Module() []easing.Definition {
	return []easing.Definition{
		Spring(),
		Bounce(),
		Elastic(),
		Smooth(),
		Overshoot(),
		Stairs(),
		Fade(),
	}
}

// Spring is a damped harmonic oscillator released at progress 0 and settling at 1.
//
//	spring(stiffness: number = 100, damping: number = 10, mass: number = 1)
func Spring() easing.Definition {
	return easing.Definition{
		Name: "spring",
		Params: []easing.Param{
			{Name: "stiffness", Kind: easing.KindNumber, Default: easing.Float(100), Min: easing.Float(1e-6)},
			{Name: "damping", Kind: easing.KindNumber, Default: easing.Float(10), Min: easing.Float(0)},
			{Name: "mass", Kind: easing.KindNumber, Default: easing.Float(1), Min: easing.Float(1e-6)},
		},
		Logic: easing.Construct3(func(stiffness, damping, mass float64) (easing.Easing, error) {
			return newSpring(stiffness, damping, mass), nil
		}),
	}
}

type spring struct {
	omega float64 // undamped angular frequency
	zeta  float64 // damping ratio
}

func newSpring(stiffness, damping, mass float64) spring {
	return spring{
		omega: math.Sqrt(stiffness / mass),
		zeta:  damping / (2 * math.Sqrt(stiffness*mass)),
	}
}

func (s spring) Ease(p float64) (float64, error) {
	t := p
	switch {
	case s.zeta < 1:
		wd := s.omega * math.Sqrt(1-s.zeta*s.zeta)
		decay := math.Exp(-s.zeta * s.omega * t)
		return 1 - decay*(math.Cos(wd*t)+(s.zeta*s.omega/wd)*math.Sin(wd*t)), nil
	case s.zeta == 1:
		return 1 - math.Exp(-s.omega*t)*(1+s.omega*t), nil
	default:
		r := s.omega * math.Sqrt(s.zeta*s.zeta-1)
		a := -s.zeta*s.omega + r
		b := -s.zeta*s.omega - r
		return 1 + (b*math.Exp(a*t)-a*math.Exp(b*t))/(a-b), nil
	}
}

// Bounce settles with decaying bounces.
//
//	bounce()
func Bounce() easing.Definition {
	return easing.Definition{
		Name:  "bounce",
		Logic: easing.Construct0(func() (easing.Easing, error) { return easing.EaseFunc(ease.OutBounce), nil }),
	}
}

// Elastic overshoots and oscillates around the target.
//
//	elastic()
func Elastic() easing.Definition {
	return easing.Definition{
		Name:  "elastic",
		Logic: easing.Construct0(func() (easing.Easing, error) { return easing.EaseFunc(ease.OutElastic), nil }),
	}
}

// Smooth accelerates then decelerates; cubic is the steeper of the two curves.
//
//	smooth(cubic: boolean = false)
func Smooth() easing.Definition {
	return easing.Definition{
		Name:   "smooth",
		Params: []easing.Param{{Name: "cubic", Kind: easing.KindBoolean, Default: easing.Float(0)}},
		Logic: easing.Construct1(func(cubic float64) (easing.Easing, error) {
			if cubic == 1 {
				return easing.EaseFunc(ease.InOutCubic), nil
			}
			return easing.EaseFunc(ease.InOutQuad), nil
		}),
	}
}

// Overshoot follows a smooth curve up to 1 and holds at 1 + amplitude beyond it.
// Progress below 0 passes through unchanged.
//
//	overshoot(amplitude: number = 0.1)
func Overshoot() easing.Definition {
	return easing.Definition{
		Name:   "overshoot",
		Params: []easing.Param{{Name: "amplitude", Kind: easing.KindNumber, Default: easing.Float(0.1)}},
		Logic: easing.Construct1(func(amplitude float64) (easing.Easing, error) {
			return easing.EaseFunc(func(p float64) float64 {
				switch {
				case p > 1:
					return 1 + amplitude
				case p < 0:
					return p
				default:
					return ease.InOutCubic(p)
				}
			}), nil
		}),
	}
}

// Stairs jumps in equal steps. With jumpStart the first step happens at progress 0.
//
//	stairs(steps: integer = 4, jump-start: boolean = false)
func Stairs() easing.Definition {
	return easing.Definition{
		Name: "stairs",
		Params: []easing.Param{
			{Name: "steps", Kind: easing.KindInteger, Default: easing.Float(4), Min: easing.Float(1)},
			{Name: "jump-start", Kind: easing.KindBoolean, Default: easing.Float(0)},
		},
		Logic: easing.Construct2(func(steps, jumpStart float64) (easing.Easing, error) {
			return easing.EaseFunc(func(p float64) float64 {
				n := math.Floor(p * steps)
				if jumpStart == 1 {
					n++
				}
				return math.Min(n, steps) / steps
			}), nil
		}),
	}
}

// Fade reaches its target at a fraction of the timeline and holds afterwards.
//
//	fade(until: percentage = 100%)
func Fade() easing.Definition {
	return easing.Definition{
		Name: "fade",
		Params: []easing.Param{
			{Name: "until", Kind: easing.KindPercentage, Default: easing.Float(1), Min: easing.Float(0.01), Max: easing.Float(1)},
		},
		Logic: easing.Construct1(func(until float64) (easing.Easing, error) {
			return easing.EaseFunc(func(p float64) float64 {
				return math.Min(p/until, 1)
			}), nil
		}),
	}
}
