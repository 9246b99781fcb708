// Package spring designs helical push (compression) and extension springs.
//
// A design is built from a wire diameter, one of coil diameter or spring
// index, a wire material and exactly one of active coils, body coils or
// rate. The remaining coupled quantities are derived and kept consistent as
// the design is edited.
package spring

import (
	"math"

	"Helix/internal/calc/calcerr"
	"Helix/internal/calc/diag"
	"Helix/internal/calc/fatigue"
	"Helix/internal/expr"
)

const (
	defaultZeta  = 0.15
	maxIter      = 200
	relTolerance = 1e-9
)

// Zimmerli's unpeened and shot-peened shear strength components in MPa.
var zimmerli = map[bool][2]float64{
	false: {241, 379},
	true:  {398, 534},
}

// ShearEndurance is Zimmerli's shear endurance limit corrected for
// reliability: ke Ssa / (1 - (Ssm/Ssu)^2).
func ShearEndurance(ssu expr.Value, reliabilityPct float64, peened bool) expr.Value {
	if reliabilityPct == 0 {
		reliabilityPct = 50
	}
	z := zimmerli[peened]
	ke := fatigue.ReliabilityFactor(reliabilityPct)
	return expr.Num(ke * z[0]).Div(expr.Num(1).Sub(expr.Num(z[1]).Div(ssu).Pow(2)))
}

// Wahl returns Kw = (4C-1)/(4C-4) + 0.615/C.
func Wahl(c expr.Value) expr.Value {
	return c.Scale(4).Sub(expr.Num(1)).Div(c.Scale(4).Sub(expr.Num(4))).Add(expr.Num(0.615).Div(c))
}

// shearStress is K 8 F D / (π d³).
func shearStress(k, force expr.Value, g Geometry) expr.Value {
	return k.Mul(force).Mul(g.CoilDiameter()).Scale(8 / math.Pi).Div(g.WireDiameter().Pow(3))
}

// naturalFrequency in Hz for one end fixed against a flat plate. Density is
// in kg/mm³ and is converted to t/mm³ to stay consistent with MPa.
func naturalFrequency(g Geometry, shearModulus float64, active expr.Value, density float64) expr.Value {
	D := g.CoilDiameter()
	return g.WireDiameter().Div(D.Pow(2).Mul(active).Scale(2 * math.Pi)).
		Mul(expr.Num(shearModulus / (2 * density * 1e-3)).Sqrt())
}

// weight in kg of the active coils.
func weight(g Geometry, active expr.Value, density float64) expr.Value {
	d := g.WireDiameter()
	return d.Pow(2).Mul(g.CoilDiameter()).Mul(active).Scale(0.25 * density * math.Pi * math.Pi)
}

// fixedPoint iterates d = next(d) until the relative change drops below
// relTolerance.
func fixedPoint(start float64, next func(d float64) float64) (float64, error) {
	d := start
	for i := 0; i < maxIter; i++ {
		nd := next(d)
		if math.IsNaN(nd) || math.IsInf(nd, 0) || nd <= 0 {
			return 0, calcerr.ErrNoConvergence
		}
		if math.Abs(nd-d) <= relTolerance*math.Abs(nd) {
			return nd, nil
		}
		d = nd
	}
	return 0, calcerr.ErrNoConvergence
}

// startDiameter picks the current wire diameter when concrete.
func startDiameter(g Geometry) float64 {
	if d, ok := g.WireDiameter().Float(); ok && d > 0 {
		return d
	}
	return 1
}

// diameterAt returns D(d) under the caller's fixed quantity.
func diameterAt(g Geometry, d float64) (float64, error) {
	f, ok := g.fixed.Float()
	if !ok {
		return 0, calcerr.Invalid("minimum wire diameter needs a concrete coil diameter or spring index")
	}
	if g.indexFixed {
		return f * d, nil
	}
	return f, nil
}

func checkIndex(l *diag.List, c expr.Value, lo, hi float64) {
	if f, ok := c.Float(); ok && (f < lo || f > hi) {
		l.Add(diag.KindSpringIndex, f, "spring index C=%.2f is outside [%g,%g]; low C causes surface cracks, high C tangles", f, lo, hi)
	}
}

func checkActiveCoils(l *diag.List, na expr.Value) {
	if f, ok := na.Float(); ok && (f < 3 || f > 15) {
		l.Add(diag.KindActiveCoils, f, "active coils Na=%.2f is outside [3,15] and may behave non-linearly", f)
	}
}

func checkFrequency(l *diag.List, fn expr.Value, working float64) {
	if f, ok := fn.Float(); ok && f <= 20*working {
		l.Add(diag.KindNaturalFrequency, f, "natural frequency %.1f Hz is not above 20x the working frequency %.1f Hz", f, working)
	}
}

func concreteForce(name string, v expr.Value) (float64, error) {
	f, ok := v.Float()
	if !ok {
		return 0, calcerr.Invalid("%s must be concrete", name)
	}
	if !(f > 0) {
		return 0, calcerr.Invalid("%s must be positive, got %g", name, f)
	}
	return f, nil
}
