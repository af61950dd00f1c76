// Package easing defines the data model shared by every part of the easing runtime.
//
// A Definition pairs a declared argument schema ([]Param) with opaque author logic
// expressed as two capabilities:
//   - Constructor: builds an instance from canonical arguments.
//   - Easing: maps a progress value to an output number.
//
// The package also owns validation of definitions (Validate), coercion of raw
// host tokens into canonical arguments (Coerce), instance identity (InstanceKey),
// the tagged Result returned at the host boundary, and the error taxonomy.
//
// Example:
//
//	def := easing.Definition{
//	    Name:   "overshoot",
//	    Params: []easing.Param{{Name: "amplitude", Kind: easing.KindNumber, Default: easing.Float(0.1)}},
//	    Logic: easing.Construct1(func(a float64) (easing.Easing, error) {
//	        return easing.EaseFunc(func(p float64) float64 { return p * (1 + a) }), nil
//	    }),
//	}
package easing
