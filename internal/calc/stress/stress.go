// Package stress holds the closed-form stress primitives. Every function is
// pure and generic over expr.Value, so deferred inputs propagate structurally.
package stress

import (
	"Helix/internal/calc/calcerr"
	"Helix/internal/expr"
)

// Shape selects the transverse shear distribution of a cross-section.
type Shape string

const (
	ShapeCircle       Shape = "circle"
	ShapeRectangle    Shape = "rectangle"
	ShapeHollowCircle Shape = "hollow circle"
)

// shearFactor is the peak-to-nominal ratio of transverse shear stress.
var shearFactor = map[Shape]float64{
	ShapeCircle:       4.0 / 3.0,
	ShapeRectangle:    3.0 / 2.0,
	ShapeHollowCircle: 2.0,
}

// Uniform returns F / A.
func Uniform(force, area expr.Value) expr.Value {
	return force.Div(area)
}

// Bending returns M c / I.
func Bending(moment, inertia, distance expr.Value) expr.Value {
	return moment.Mul(distance).Div(inertia)
}

// Torsion returns T r / J.
func Torsion(torque, distance, polarInertia expr.Value) expr.Value {
	return torque.Mul(distance).Div(polarInertia)
}

// MaxShear returns the peak transverse shear stress k V / A for the shape.
func MaxShear(force, area expr.Value, shape Shape) (expr.Value, error) {
	k, ok := shearFactor[shape]
	if !ok {
		return expr.Value{}, calcerr.Invalid("unsupported cross-section shape %q", shape)
	}
	return force.Div(area).Scale(k), nil
}

// VonMises returns sqrt(σ² + 3τ²).
func VonMises(normal, shear expr.Value) expr.Value {
	return normal.Pow(2).Add(shear.Pow(2).Scale(3)).Sqrt()
}

// EquivalentMoment combines two orthogonal bending moments.
func EquivalentMoment(my, mz expr.Value) expr.Value {
	return my.Pow(2).Add(mz.Pow(2)).Sqrt()
}
