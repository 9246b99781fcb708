package spring

import (
	"math"
	"strings"

	"Helix/internal/calc/calcerr"
	"Helix/internal/calc/diag"
	"Helix/internal/calc/fatigue"
	"Helix/internal/expr"
)

type EndType string

const (
	EndPlain         EndType = "plain"
	EndPlainGround   EndType = "plain and ground"
	EndSquared       EndType = "squared or closed"
	EndSquaredGround EndType = "squared and ground"
)

var endCoils = map[EndType]float64{
	EndPlain:         0,
	EndPlainGround:   1,
	EndSquared:       2,
	EndSquaredGround: 2,
}

// EndCondition is how the spring ends are supported against buckling.
type EndCondition string

const (
	FixedFixed   EndCondition = "fixed-fixed"
	FixedHinged  EndCondition = "fixed-hinged"
	HingedHinged EndCondition = "hinged-hinged"
	ClampedFree  EndCondition = "clamped-free"
)

var endConditionAlpha = map[EndCondition]float64{
	FixedFixed:   0.5,
	FixedHinged:  0.707,
	HingedHinged: 1,
	ClampedFree:  2,
}

type PushParams struct {
	MaxForce     expr.Value `json:"max_force_n" yaml:"max_force_n"`
	WireDiameter expr.Value `json:"wire_diameter_mm" yaml:"wire_diameter_mm"`
	CoilDiameter expr.Value `json:"coil_diameter_mm" yaml:"coil_diameter_mm"`
	SpringIndex  expr.Value `json:"spring_index" yaml:"spring_index"`
	Material     Material   `json:"material" yaml:"material"`
	EndType      EndType    `json:"end_type" yaml:"end_type"`
	// Zeta is the overrun safety factor; nil means 0.15.
	Zeta         *float64   `json:"zeta,omitempty" yaml:"zeta"`

	ActiveCoils expr.Value `json:"active_coils" yaml:"active_coils"`
	TotalCoils  expr.Value `json:"total_coils" yaml:"total_coils"`
	Rate        expr.Value `json:"rate_n_per_mm" yaml:"rate_n_per_mm"`
	FreeLength  expr.Value `json:"free_length_mm" yaml:"free_length_mm"`

	SetRemoved bool `json:"set_removed" yaml:"set_removed"`
	ShotPeened bool `json:"shot_peened" yaml:"shot_peened"`

	EndCondition     EndCondition `json:"end_condition,omitempty" yaml:"end_condition"`
	DensityKgMM3     float64      `json:"density_kg_mm3,omitempty" yaml:"density_kg_mm3"`
	WorkingFrequency float64      `json:"working_frequency_hz,omitempty" yaml:"working_frequency_hz"`
}

// PushSpring is a helical compression spring design.
type PushSpring struct {
	force      expr.Value
	geom       Geometry
	mat        Material
	endType    EndType
	zeta       float64
	setRemoved bool
	peened     bool

	endCondition EndCondition
	density      float64
	working      float64

	res     *Resolver
	changes diag.List
}

// NewPushSpring validates p and resolves the coupled coil set.
func NewPushSpring(p PushParams) (*PushSpring, error) {
	if !supplied(p.MaxForce) {
		return nil, calcerr.Invalid("max force is required")
	}
	if err := positive("max force", p.MaxForce); err != nil {
		return nil, err
	}
	geom, err := NewGeometry(p.WireDiameter, p.CoilDiameter, p.SpringIndex)
	if err != nil {
		return nil, err
	}
	if err := p.Material.validate(false, false); err != nil {
		return nil, err
	}
	end := EndType(strings.ToLower(strings.TrimSpace(string(p.EndType))))
	if _, ok := endCoils[end]; !ok {
		return nil, calcerr.Invalid("unknown end type %q", p.EndType)
	}
	cond := EndCondition(strings.ToLower(strings.TrimSpace(string(p.EndCondition))))
	if cond != "" {
		if _, ok := endConditionAlpha[cond]; !ok {
			return nil, calcerr.Invalid("unknown end condition %q", p.EndCondition)
		}
	}
	zeta := defaultZeta
	if p.Zeta != nil {
		zeta = *p.Zeta
	}
	if zeta < 0 {
		return nil, calcerr.Invalid("overrun factor must not be negative, got %g", zeta)
	}

	s := &PushSpring{
		force:        p.MaxForce,
		geom:         geom,
		mat:          p.Material,
		endType:      end,
		zeta:         zeta,
		setRemoved:   p.SetRemoved,
		peened:       p.ShotPeened,
		endCondition: cond,
		density:      p.DensityKgMM3,
		working:      p.WorkingFrequency,
	}
	s.res, err = newResolver(s, p.ActiveCoils, p.TotalCoils, p.Rate)
	if err != nil {
		return nil, err
	}
	if supplied(p.FreeLength) {
		if err := s.res.SetFreeLength(p.FreeLength); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *PushSpring) rateFor(active expr.Value) expr.Value {
	return rate(s.geom, s.mat.ShearModulus, active)
}

func (s *PushSpring) activeForRate(k expr.Value) expr.Value {
	return rate(s.geom, s.mat.ShearModulus, k)
}

func (s *PushSpring) bodyFor(active expr.Value) expr.Value {
	return active.Add(expr.Num(endCoils[s.endType]))
}

func (s *PushSpring) activeForBody(total expr.Value) expr.Value {
	return total.Sub(expr.Num(endCoils[s.endType]))
}

func (s *PushSpring) freeLengthFor(_, total, k expr.Value) expr.Value {
	return s.SolidForce().Div(k).Add(s.solidLength(total))
}

func (s *PushSpring) Role() Role { return s.res.Role() }
func (s *PushSpring) Force() expr.Value { return s.force }
func (s *PushSpring) WireDiameter() expr.Value { return s.geom.WireDiameter() }
func (s *PushSpring) CoilDiameter() expr.Value { return s.geom.CoilDiameter() }
func (s *PushSpring) SpringIndex() expr.Value { return s.geom.Index() }
func (s *PushSpring) ActiveCoils() expr.Value { return s.res.ActiveCoils() }
func (s *PushSpring) TotalCoils() expr.Value { return s.res.BodyCoils() }
func (s *PushSpring) Rate() expr.Value { return s.res.Rate() }
func (s *PushSpring) FreeLength() expr.Value { return s.res.FreeLength() }
func (s *PushSpring) EndCoils() float64 { return endCoils[s.endType] }
func (s *PushSpring) Strengths() Strengths { return s.mat.At(s.geom.WireDiameter()) }
func (s *PushSpring) BodyCoils() expr.Value { return s.TotalCoils() }
func (s *PushSpring) SetBodyCoils(v expr.Value) error { return s.SetTotalCoils(v) }

func (s *PushSpring) SetActiveCoils(v expr.Value) error { return s.res.SetActiveCoils(v) }
func (s *PushSpring) SetTotalCoils(v expr.Value) error { return s.res.SetBodyCoils(v) }
func (s *PushSpring) SetRate(v expr.Value) error { return s.res.SetRate(v) }
func (s *PushSpring) SetFreeLength(v expr.Value) error { return s.res.SetFreeLength(v) }

// SetWireDiameter changes d, keeping whichever of D and C the caller fixed.
func (s *PushSpring) SetWireDiameter(d expr.Value) error {
	if err := s.geom.setWire(d); err != nil {
		return err
	}
	s.geometryChanged()
	return nil
}

// SetCoilDiameter changes D and holds it fixed from now on.
func (s *PushSpring) SetCoilDiameter(D expr.Value) error {
	if err := s.geom.setCoilDiameter(D); err != nil {
		return err
	}
	s.geometryChanged()
	return nil
}

func (s *PushSpring) geometryChanged() {
	s.res.Invalidate()
	noteGeometryChange(&s.changes, s.res)
}

func noteGeometryChange(l *diag.List, r *Resolver) {
	if r.Role() == RoleRate {
		return
	}
	v, _ := r.GroundTruth().Float()
	l.Add(diag.KindGeometryChanged, v, "geometry changed while %s was the ground truth; it was kept as given and the rate re-derived", r.Role())
}

// Ks is the direct shear factor (2C+1)/(2C).
func (s *PushSpring) Ks() expr.Value {
	c := s.SpringIndex()
	return c.Scale(2).Add(expr.Num(1)).Div(c.Scale(2))
}

func (s *PushSpring) Kw() expr.Value { return Wahl(s.SpringIndex()) }

// KB is the Bergsträsser factor (4C+2)/(4C-3). It is reported alongside Kw
// but does not enter the working stress.
func (s *PushSpring) KB() expr.Value {
	c := s.SpringIndex()
	return c.Scale(4).Add(expr.Num(2)).Div(c.Scale(4).Sub(expr.Num(3)))
}

// stressFactor is Ks for a set-removed spring and Kw otherwise.
func (s *PushSpring) stressFactor() expr.Value {
	if s.setRemoved {
		return s.Ks()
	}
	return s.Kw()
}

// ShearStress returns the corrected torsional stress for force F.
func (s *PushSpring) ShearStress(force expr.Value) expr.Value {
	return shearStress(s.stressFactor(), force, s.geom)
}

func (s *PushSpring) solidLength(total expr.Value) expr.Value {
	d := s.geom.WireDiameter()
	switch s.endType {
	case EndPlainGround, EndSquaredGround:
		return d.Mul(total)
	}
	return d.Mul(total.Add(expr.Num(1)))
}

// SolidLength is the length with all coils closed.
func (s *PushSpring) SolidLength() expr.Value { return s.solidLength(s.TotalCoils()) }

// SolidForce is (1 + ζ) Fmax.
func (s *PushSpring) SolidForce() expr.Value { return s.force.Scale(1 + s.zeta) }

// Deflection under force F.
func (s *PushSpring) Deflection(force expr.Value) expr.Value { return force.Div(s.Rate()) }

// StaticSafetyFactor is Ssy over the stress at Fmax, or at the solid force.
func (s *PushSpring) StaticSafetyFactor(atSolid bool) expr.Value {
	force := s.force
	if atSolid {
		force = s.SolidForce()
	}
	return s.Strengths().ShearYield.Div(s.ShearStress(force))
}

// MaxForce returns the largest force that keeps the static safety factor n.
// When that force would exceed the solid force the design force Fmax is
// returned instead and reported as capped.
func (s *PushSpring) MaxForce(n float64) (force expr.Value, capped bool, err error) {
	if !(n > 0) {
		return expr.Value{}, false, calcerr.Invalid("safety factor must be positive, got %g", n)
	}
	d := s.geom.WireDiameter()
	f := s.Strengths().ShearYield.Mul(d.Pow(3)).Scale(math.Pi / (8 * n)).
		Div(s.stressFactor().Mul(s.CoilDiameter()))
	if fs, ok := expr.Floats(f, s.SolidForce()); ok && fs[0] > fs[1] {
		return s.SolidForce().Scale(1 / (1 + s.zeta)), true, nil
	}
	return f, false, nil
}

type Buckling struct {
	CriticalLength expr.Value `json:"critical_length_mm"`
	Buckles        bool       `json:"buckles"`
}

// Buckling checks absolute stability. E of zero uses the material's
// elastic modulus.
func (s *PushSpring) Buckling(cond EndCondition, elastic float64) (Buckling, error) {
	alpha, ok := endConditionAlpha[EndCondition(strings.ToLower(strings.TrimSpace(string(cond))))]
	if !ok {
		return Buckling{}, calcerr.Invalid("unknown end condition %q", cond)
	}
	if elastic == 0 {
		elastic = s.mat.ElasticModulus
	}
	G := s.mat.ShearModulus
	if !(elastic > G) {
		return Buckling{}, calcerr.Invalid("elastic modulus %g must exceed the shear modulus %g", elastic, G)
	}
	l := s.CoilDiameter().Scale(math.Pi / alpha * math.Sqrt(2*(elastic-G)/(2*G+elastic)))
	b := Buckling{CriticalLength: l}
	if fs, ok := expr.Floats(s.FreeLength(), l); ok {
		b.Buckles = fs[0] >= fs[1]
	}
	return b, nil
}

// ShearEndurance is the Zimmerli limit for this spring.
func (s *PushSpring) ShearEndurance(reliabilityPct float64) expr.Value {
	return ShearEndurance(s.Strengths().ShearUltimate, reliabilityPct, s.peened)
}

// FatigueAnalysis evaluates the shear stresses of a Fmax/Fmin cycle against
// (Ssy, Ssu, Sse) with the chosen criterion.
func (s *PushSpring) FatigueAnalysis(fmax, fmin expr.Value, reliabilityPct float64, c fatigue.Criterion, verbose bool) (fatigue.SafetyFactors, error) {
	load := fatigue.FromRange(fmax, fmin)
	st := s.Strengths()
	return fatigue.Evaluate(
		fatigue.Strengths{Yield: st.ShearYield, Ultimate: st.ShearUltimate, Endurance: s.ShearEndurance(reliabilityPct)},
		s.ShearStress(load.Alternating),
		s.ShearStress(load.Mean),
		c,
		verbose,
	)
}

// MinimumWireDiameter solves for the smallest d meeting static safety factor
// n at Fmax, or at the solid force. D or C stays fixed as the caller supplied
// it and the stress factor is re-evaluated at every iterate.
func (s *PushSpring) MinimumWireDiameter(n float64, atSolid bool) (float64, error) {
	if !(n > 0) {
		return 0, calcerr.Invalid("safety factor must be positive, got %g", n)
	}
	force := s.force
	if atSolid {
		force = s.SolidForce()
	}
	F, err := concreteForce("force", force)
	if err != nil {
		return 0, err
	}
	if s.mat.SutMPa != 0 {
		return 0, calcerr.Invalid("minimum wire diameter needs the Ap/d^m strength model, not a fixed Sut")
	}
	p, _ := Fraction(s.mat.ShearYieldPct)
	if _, err := diameterAt(s.geom, 1); err != nil {
		return 0, err
	}

	factor := func(c float64) float64 {
		if s.setRemoved {
			return (2*c + 1) / (2 * c)
		}
		return (4*c-1)/(4*c-4) + 0.615/c
	}
	return fixedPoint(startDiameter(s.geom), func(d float64) float64 {
		D, _ := diameterAt(s.geom, d)
		c := D / d
		return math.Pow(8*factor(c)*F*c*n/(math.Pi*p*s.mat.Ap), 1/(2-s.mat.M))
	})
}

// NaturalFrequency in Hz for density in kg/mm³.
func (s *PushSpring) NaturalFrequency(density float64) (expr.Value, error) {
	if !(density > 0) {
		return expr.Value{}, calcerr.Invalid("density must be positive, got %g", density)
	}
	return naturalFrequency(s.geom, s.mat.ShearModulus, s.ActiveCoils(), density), nil
}

// Weight in kg of the active coils for density in kg/mm³.
func (s *PushSpring) Weight(density float64) (expr.Value, error) {
	if !(density > 0) {
		return expr.Value{}, calcerr.Invalid("density must be positive, got %g", density)
	}
	return weight(s.geom, s.ActiveCoils(), density), nil
}

// Check returns the design notices for the current state. Values that are
// not concrete are skipped.
func (s *PushSpring) Check() diag.List {
	var l diag.List
	if s.setRemoved {
		checkIndex(&l, s.SpringIndex(), 4, 12)
		l.Add(diag.KindSetRemoved, 1, "set removal raises static strength only; do not use it for cyclic loading")
	} else {
		checkIndex(&l, s.SpringIndex(), 3, 12)
	}
	checkActiveCoils(&l, s.ActiveCoils())
	if s.zeta < 0.15 {
		l.Add(diag.KindOverrun, s.zeta, "overrun factor zeta=%.2f is below 0.15; the spring may close solid", s.zeta)
	}
	if s.endCondition != "" && s.mat.ElasticModulus > 0 {
		if b, err := s.Buckling(s.endCondition, 0); err == nil && b.Buckles {
			cl, _ := b.CriticalLength.Float()
			l.Add(diag.KindBuckling, cl, "free length reaches the critical length %.1f mm for %s ends", cl, s.endCondition)
		}
	}
	if s.density > 0 && s.working > 0 {
		fn, _ := s.NaturalFrequency(s.density)
		checkFrequency(&l, fn, s.working)
	}
	return append(l, s.changes...)
}
