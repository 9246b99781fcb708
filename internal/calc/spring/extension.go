package spring

import (
	"math"

	"Helix/internal/calc/calcerr"
	"Helix/internal/calc/diag"
	"Helix/internal/calc/fatigue"
	"Helix/internal/expr"
)

type ExtensionParams struct {
	MaxForce       expr.Value `json:"max_force_n" yaml:"max_force_n"`
	InitialTension expr.Value `json:"initial_tension_n" yaml:"initial_tension_n"`
	WireDiameter   expr.Value `json:"wire_diameter_mm" yaml:"wire_diameter_mm"`
	CoilDiameter   expr.Value `json:"coil_diameter_mm" yaml:"coil_diameter_mm"`
	SpringIndex    expr.Value `json:"spring_index" yaml:"spring_index"`
	// HookR1 is the hook's inner bend radius, HookR2 the radius of the bend
	// into the body.
	HookR1         expr.Value `json:"hook_r1_mm" yaml:"hook_r1_mm"`
	HookR2         expr.Value `json:"hook_r2_mm" yaml:"hook_r2_mm"`
	Material       Material   `json:"material" yaml:"material"`

	ActiveCoils expr.Value `json:"active_coils" yaml:"active_coils"`
	BodyCoils   expr.Value `json:"body_coils" yaml:"body_coils"`
	Rate        expr.Value `json:"rate_n_per_mm" yaml:"rate_n_per_mm"`
	FreeLength  expr.Value `json:"free_length_mm" yaml:"free_length_mm"`

	ShotPeened       bool    `json:"shot_peened" yaml:"shot_peened"`
	DensityKgMM3     float64 `json:"density_kg_mm3,omitempty" yaml:"density_kg_mm3"`
	WorkingFrequency float64 `json:"working_frequency_hz,omitempty" yaml:"working_frequency_hz"`
}

// ExtensionSpring is a helical extension spring with machine hooks.
type ExtensionSpring struct {
	force, tension expr.Value
	r1, r2         expr.Value
	geom           Geometry
	mat            Material
	peened         bool
	density        float64
	working        float64

	res     *Resolver
	changes diag.List
}

func NewExtensionSpring(p ExtensionParams) (*ExtensionSpring, error) {
	if !supplied(p.MaxForce) {
		return nil, calcerr.Invalid("max force is required")
	}
	if err := positive("max force", p.MaxForce); err != nil {
		return nil, err
	}
	if f, ok := p.InitialTension.Float(); ok && f < 0 {
		return nil, calcerr.Invalid("initial tension must not be negative, got %g", f)
	}
	for _, r := range []struct {
		name string
		v    expr.Value
	}{{"hook radius r1", p.HookR1}, {"hook radius r2", p.HookR2}} {
		if !supplied(r.v) {
			return nil, calcerr.Invalid("%s is required", r.name)
		}
		if err := positive(r.name, r.v); err != nil {
			return nil, err
		}
	}
	geom, err := NewGeometry(p.WireDiameter, p.CoilDiameter, p.SpringIndex)
	if err != nil {
		return nil, err
	}
	if err := p.Material.validate(true, true); err != nil {
		return nil, err
	}

	s := &ExtensionSpring{
		force:   p.MaxForce,
		tension: p.InitialTension,
		r1:      p.HookR1,
		r2:      p.HookR2,
		geom:    geom,
		mat:     p.Material,
		peened:  p.ShotPeened,
		density: p.DensityKgMM3,
		working: p.WorkingFrequency,
	}
	s.res, err = newResolver(s, p.ActiveCoils, p.BodyCoils, p.Rate)
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

func (s *ExtensionSpring) rateFor(active expr.Value) expr.Value {
	return rate(s.geom, s.mat.ShearModulus, active)
}

func (s *ExtensionSpring) activeForRate(k expr.Value) expr.Value {
	return rate(s.geom, s.mat.ShearModulus, k)
}

// Na = Nb + G/E accounts for the hook deflection.
func (s *ExtensionSpring) hookCoils() expr.Value {
	return expr.Num(s.mat.ShearModulus / s.mat.ElasticModulus)
}

func (s *ExtensionSpring) bodyFor(active expr.Value) expr.Value {
	return active.Sub(s.hookCoils())
}

func (s *ExtensionSpring) activeForBody(body expr.Value) expr.Value {
	return body.Add(s.hookCoils())
}

// freeLengthFor is 2(D - d) + (Nb + 1) d: two hooks plus the closed body.
func (s *ExtensionSpring) freeLengthFor(_, body, _ expr.Value) expr.Value {
	d := s.geom.WireDiameter()
	return s.geom.CoilDiameter().Sub(d).Scale(2).Add(body.Add(expr.Num(1)).Mul(d))
}

func (s *ExtensionSpring) Role() Role { return s.res.Role() }
func (s *ExtensionSpring) Force() expr.Value { return s.force }
func (s *ExtensionSpring) InitialTension() expr.Value { return s.tension }
func (s *ExtensionSpring) WireDiameter() expr.Value { return s.geom.WireDiameter() }
func (s *ExtensionSpring) CoilDiameter() expr.Value { return s.geom.CoilDiameter() }
func (s *ExtensionSpring) SpringIndex() expr.Value { return s.geom.Index() }
func (s *ExtensionSpring) ActiveCoils() expr.Value { return s.res.ActiveCoils() }
func (s *ExtensionSpring) BodyCoils() expr.Value { return s.res.BodyCoils() }
func (s *ExtensionSpring) Rate() expr.Value { return s.res.Rate() }
func (s *ExtensionSpring) FreeLength() expr.Value { return s.res.FreeLength() }
func (s *ExtensionSpring) Strengths() Strengths { return s.mat.At(s.geom.WireDiameter()) }

func (s *ExtensionSpring) SetActiveCoils(v expr.Value) error { return s.res.SetActiveCoils(v) }
func (s *ExtensionSpring) SetBodyCoils(v expr.Value) error { return s.res.SetBodyCoils(v) }
func (s *ExtensionSpring) SetRate(v expr.Value) error { return s.res.SetRate(v) }
func (s *ExtensionSpring) SetFreeLength(v expr.Value) error { return s.res.SetFreeLength(v) }

func (s *ExtensionSpring) SetWireDiameter(d expr.Value) error {
	if err := s.geom.setWire(d); err != nil {
		return err
	}
	s.res.Invalidate()
	noteGeometryChange(&s.changes, s.res)
	return nil
}

func (s *ExtensionSpring) SetCoilDiameter(D expr.Value) error {
	if err := s.geom.setCoilDiameter(D); err != nil {
		return err
	}
	s.res.Invalidate()
	noteGeometryChange(&s.changes, s.res)
	return nil
}

// hookKA is the bending correction (4C1² - C1 - 1)/(4 C1 (C1 - 1)) with
// C1 = 2 r1 / d.
func hookKA(r1, d expr.Value) expr.Value {
	c1 := r1.Scale(2).Div(d)
	return c1.Pow(2).Scale(4).Sub(c1).Sub(expr.Num(1)).Div(c1.Scale(4).Mul(c1.Sub(expr.Num(1))))
}

// hookKB is the torsion correction (4C2 - 1)/(4C2 - 4) with C2 = 2 r2 / d.
func hookKB(r2, d expr.Value) expr.Value {
	c2 := r2.Scale(2).Div(d)
	return c2.Scale(4).Sub(expr.Num(1)).Div(c2.Scale(4).Sub(expr.Num(4)))
}

func (s *ExtensionSpring) HookKA() expr.Value { return hookKA(s.r1, s.geom.WireDiameter()) }
func (s *ExtensionSpring) HookKB() expr.Value { return hookKB(s.r2, s.geom.WireDiameter()) }
func (s *ExtensionSpring) Kw() expr.Value { return Wahl(s.SpringIndex()) }

// NormalStress is the hook's bending plus axial stress F (KA 16D/(πd³) + 4/(πd²)).
func (s *ExtensionSpring) NormalStress(force expr.Value) expr.Value {
	d := s.geom.WireDiameter()
	bend := s.HookKA().Mul(s.CoilDiameter()).Scale(16 / math.Pi).Div(d.Pow(3))
	axial := expr.Num(4 / math.Pi).Div(d.Pow(2))
	return force.Mul(bend.Add(axial))
}

// ShearStress is the hook torsion stress.
func (s *ExtensionSpring) ShearStress(force expr.Value) expr.Value {
	return shearStress(s.HookKB(), force, s.geom)
}

// BodyShearStress is the body torsion stress with the Wahl factor.
func (s *ExtensionSpring) BodyShearStress(force expr.Value) expr.Value {
	return shearStress(s.Kw(), force, s.geom)
}

// Deflection is (F - Fi) / k.
func (s *ExtensionSpring) Deflection(force expr.Value) expr.Value {
	return force.Sub(s.tension).Div(s.Rate())
}

type ExtensionStatic struct {
	HookShear  expr.Value `json:"hook_shear"`
	HookNormal expr.Value `json:"hook_normal"`
	Body       expr.Value `json:"body"`
}

// StaticSafetyFactors at the max force.
func (s *ExtensionSpring) StaticSafetyFactors() ExtensionStatic {
	st := s.Strengths()
	return ExtensionStatic{
		HookShear:  st.ShearYield.Div(s.ShearStress(s.force)),
		HookNormal: st.Yield.Div(s.NormalStress(s.force)),
		Body:       st.ShearYield.Div(s.BodyShearStress(s.force)),
	}
}

type ExtensionFatigue struct {
	HookNormal      fatigue.SafetyFactors `json:"hook_normal"`
	HookShear       fatigue.SafetyFactors `json:"hook_shear"`
	Body            fatigue.SafetyFactors `json:"body"`
	// BodyStatic is the body's first-cycle Langer factor.
	BodyStatic      expr.Value            `json:"body_static"`
	ShearEndurance  expr.Value            `json:"sse_mpa"`
	NormalEndurance expr.Value            `json:"se_mpa"`
}

func (s *ExtensionSpring) ShearEndurance(reliabilityPct float64) expr.Value {
	return ShearEndurance(s.Strengths().ShearUltimate, reliabilityPct, s.peened)
}

// FatigueAnalysis checks the hook in bending and torsion and the body in
// torsion. The hook's normal endurance limit is Sse/0.577.
func (s *ExtensionSpring) FatigueAnalysis(fmax, fmin expr.Value, reliabilityPct float64, c fatigue.Criterion, verbose bool) (ExtensionFatigue, error) {
	load := fatigue.FromRange(fmax, fmin)
	st := s.Strengths()
	sse := s.ShearEndurance(reliabilityPct)
	se := sse.Scale(1 / 0.577)

	var out ExtensionFatigue
	var err error
	out.HookNormal, err = fatigue.Evaluate(
		fatigue.Strengths{Yield: st.Yield, Ultimate: st.Ultimate, Endurance: se},
		s.NormalStress(load.Alternating), s.NormalStress(load.Mean), c, verbose)
	if err != nil {
		return ExtensionFatigue{}, err
	}
	shear := fatigue.Strengths{Yield: st.ShearYield, Ultimate: st.ShearUltimate, Endurance: sse}
	out.HookShear, err = fatigue.Evaluate(shear, s.ShearStress(load.Alternating), s.ShearStress(load.Mean), c, verbose)
	if err != nil {
		return ExtensionFatigue{}, err
	}
	out.Body, err = fatigue.Evaluate(shear, s.BodyShearStress(load.Alternating), s.BodyShearStress(load.Mean), c, verbose)
	if err != nil {
		return ExtensionFatigue{}, err
	}
	out.BodyStatic = out.Body.Static
	out.ShearEndurance = sse
	out.NormalEndurance = se
	return out, nil
}

type WireLimits struct {
	Shear     float64 `json:"shear_mm"`
	Normal    float64 `json:"normal_mm"`
	// Governing is the larger of the two.
	Governing float64 `json:"governing_mm"`
}

// MinimumWireDiameter solves the hook shear and hook normal stress limits
// for static safety factor n at the max force.
func (s *ExtensionSpring) MinimumWireDiameter(n float64) (WireLimits, error) {
	if !(n > 0) {
		return WireLimits{}, calcerr.Invalid("safety factor must be positive, got %g", n)
	}
	F, err := concreteForce("max force", s.force)
	if err != nil {
		return WireLimits{}, err
	}
	if s.mat.SutMPa != 0 {
		return WireLimits{}, calcerr.Invalid("minimum wire diameter needs the Ap/d^m strength model, not a fixed Sut")
	}
	r, ok := expr.Floats(s.r1, s.r2)
	if !ok {
		return WireLimits{}, calcerr.Invalid("minimum wire diameter needs concrete hook radii")
	}
	if _, err := diameterAt(s.geom, 1); err != nil {
		return WireLimits{}, err
	}
	ps, _ := Fraction(s.mat.ShearYieldPct)
	pb, _ := Fraction(s.mat.BendingYieldPct)
	ap, m := s.mat.Ap, s.mat.M

	var out WireLimits
	out.Shear, err = fixedPoint(startDiameter(s.geom), func(d float64) float64 {
		D, _ := diameterAt(s.geom, d)
		c2 := 2 * r[1] / d
		kb := (4*c2 - 1) / (4*c2 - 4)
		return math.Pow(8*kb*F*(D/d)*n/(math.Pi*ps*ap), 1/(2-m))
	})
	if err != nil {
		return WireLimits{}, err
	}
	out.Normal, err = fixedPoint(startDiameter(s.geom), func(d float64) float64 {
		D, _ := diameterAt(s.geom, d)
		c1 := 2 * r[0] / d
		ka := (4*c1*c1 - c1 - 1) / (4 * c1 * (c1 - 1))
		return math.Pow(F*n*(16*ka*D/d+4)/(math.Pi*pb*ap), 1/(2-m))
	})
	if err != nil {
		return WireLimits{}, err
	}
	out.Governing = math.Max(out.Shear, out.Normal)
	return out, nil
}

type CoilLimits struct {
	Shear     expr.Value `json:"shear_mm"`
	Normal    expr.Value `json:"normal_mm"`
	// Governing is the smaller of the two; absent unless both are concrete.
	Governing *float64   `json:"governing_mm,omitempty"`
}

// MinimumSpringDiameter returns the largest coil diameter D that keeps
// static safety factor n in hook shear and hook bending. The hook factors
// depend on r/d only, so no iteration is needed.
func (s *ExtensionSpring) MinimumSpringDiameter(n float64) (CoilLimits, error) {
	if !(n > 0) {
		return CoilLimits{}, calcerr.Invalid("safety factor must be positive, got %g", n)
	}
	st := s.Strengths()
	d := s.geom.WireDiameter()
	d3 := d.Pow(3).Scale(math.Pi)
	out := CoilLimits{
		Shear: st.ShearYield.Mul(d3).Div(s.HookKB().Mul(s.force).Scale(8 * n)),
		Normal: st.Yield.Mul(d3).Div(s.force.Scale(4 * n)).Sub(d).
			Div(s.HookKA().Scale(4)),
	}
	if fs, ok := expr.Floats(out.Shear, out.Normal); ok {
		g := math.Min(fs[0], fs[1])
		out.Governing = &g
	}
	return out, nil
}

func (s *ExtensionSpring) NaturalFrequency(density float64) (expr.Value, error) {
	if !(density > 0) {
		return expr.Value{}, calcerr.Invalid("density must be positive, got %g", density)
	}
	return naturalFrequency(s.geom, s.mat.ShearModulus, s.ActiveCoils(), density), nil
}

func (s *ExtensionSpring) Weight(density float64) (expr.Value, error) {
	if !(density > 0) {
		return expr.Value{}, calcerr.Invalid("density must be positive, got %g", density)
	}
	return weight(s.geom, s.ActiveCoils(), density), nil
}

func (s *ExtensionSpring) Check() diag.List {
	var l diag.List
	checkIndex(&l, s.SpringIndex(), 3, 16)
	checkActiveCoils(&l, s.ActiveCoils())
	if s.density > 0 && s.working > 0 {
		fn, _ := s.NaturalFrequency(s.density)
		checkFrequency(&l, fn, s.working)
	}
	return append(l, s.changes...)
}
