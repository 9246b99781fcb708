package spring

import (
	"Helix/internal/calc/diag"
	"Helix/internal/calc/fatigue"
	"Helix/internal/expr"
)

// PushInput is a push spring design plus the duty it is checked against.
// A zero min force means the spring cycles from zero to the max force; a
// zero safety factor skips the sizing results.
type PushInput struct {
	PushParams     `yaml:",inline"`
	MinForce       expr.Value        `json:"min_force_n" yaml:"min_force_n"`
	ReliabilityPct float64           `json:"reliability_pct" yaml:"reliability_pct"`
	Criterion      fatigue.Criterion `json:"criterion" yaml:"criterion"`
	SafetyFactor   float64           `json:"safety_factor" yaml:"safety_factor"`
	Verbose        bool              `json:"verbose" yaml:"verbose"`
}

type PushResult struct {
	Role         string     `json:"ground_truth"`
	SpringIndex  expr.Value `json:"spring_index"`
	WireDiameter expr.Value `json:"wire_diameter_mm"`
	CoilDiameter expr.Value `json:"coil_diameter_mm"`
	ActiveCoils  expr.Value `json:"active_coils"`
	TotalCoils   expr.Value `json:"total_coils"`
	Rate         expr.Value `json:"rate_n_per_mm"`
	FreeLength   expr.Value `json:"free_length_mm"`
	SolidLength  expr.Value `json:"solid_length_mm"`
	SolidForce   expr.Value `json:"solid_force_n"`
	Ks           expr.Value `json:"ks"`
	Kw           expr.Value `json:"kw"`
	KB           expr.Value `json:"kb"`
	Strengths    Strengths  `json:"strengths"`
	ShearStress  expr.Value `json:"shear_stress_mpa"`
	StaticSafety expr.Value `json:"static_safety"`
	SolidSafety  expr.Value `json:"solid_safety"`
	Deflection   expr.Value `json:"deflection_mm"`

	Fatigue fatigue.SafetyFactors `json:"fatigue"`

	MinWireDiameter      *float64    `json:"min_wire_diameter_mm,omitempty"`
	MinWireDiameterSolid *float64    `json:"min_wire_diameter_solid_mm,omitempty"`
	AllowedForce         *expr.Value `json:"allowed_force_n,omitempty"`
	Buckling             *Buckling   `json:"buckling,omitempty"`
	NaturalFrequency     *expr.Value `json:"natural_frequency_hz,omitempty"`
	Weight               *expr.Value `json:"weight_kg,omitempty"`

	Notices diag.List `json:"notices"`
	Notes   string    `json:"notes"`
}

// CalculatePush builds the design and evaluates it in one pass.
func CalculatePush(in PushInput) (PushResult, error) {
	s, err := NewPushSpring(in.PushParams)
	if err != nil {
		return PushResult{}, err
	}
	res := PushResult{
		Role:         s.Role().String(),
		SpringIndex:  s.SpringIndex(),
		WireDiameter: s.WireDiameter(),
		CoilDiameter: s.CoilDiameter(),
		ActiveCoils:  s.ActiveCoils(),
		TotalCoils:   s.TotalCoils(),
		Rate:         s.Rate(),
		FreeLength:   s.FreeLength(),
		SolidLength:  s.SolidLength(),
		SolidForce:   s.SolidForce(),
		Ks:           s.Ks(),
		Kw:           s.Kw(),
		KB:           s.KB(),
		Strengths:    s.Strengths(),
		ShearStress:  s.ShearStress(s.Force()),
		StaticSafety: s.StaticSafetyFactor(false),
		SolidSafety:  s.StaticSafetyFactor(true),
		Deflection:   s.Deflection(s.Force()),
		Notes:        "Wahl factor for working stress; Ks when set is removed. Zimmerli endurance data.",
	}
	res.Fatigue, err = s.FatigueAnalysis(s.Force(), in.MinForce, in.ReliabilityPct, in.Criterion, in.Verbose)
	if err != nil {
		return PushResult{}, err
	}
	notices := s.Check()

	if in.SafetyFactor > 0 {
		if s.mat.SutMPa != 0 {
			notices.Add(diag.KindSizingSkipped, s.mat.SutMPa, "minimum wire diameter needs the Ap/d^m strength model; skipped for a fixed Sut of %g MPa", s.mat.SutMPa)
		} else {
			d, err := s.MinimumWireDiameter(in.SafetyFactor, false)
			if err != nil {
				return PushResult{}, err
			}
			ds, err := s.MinimumWireDiameter(in.SafetyFactor, true)
			if err != nil {
				return PushResult{}, err
			}
			res.MinWireDiameter, res.MinWireDiameterSolid = &d, &ds
		}
		f, capped, err := s.MaxForce(in.SafetyFactor)
		if err != nil {
			return PushResult{}, err
		}
		if capped {
			v, _ := f.Float()
			notices.Add(diag.KindSolidForce, v, "allowed force for n=%g exceeds the solid force; limited to the design force %.1f N", in.SafetyFactor, v)
		}
		res.AllowedForce = &f
	}
	if s.endCondition != "" && s.mat.ElasticModulus > 0 {
		b, err := s.Buckling(s.endCondition, 0)
		if err != nil {
			return PushResult{}, err
		}
		res.Buckling = &b
	}
	if s.density > 0 {
		fn, _ := s.NaturalFrequency(s.density)
		w, _ := s.Weight(s.density)
		res.NaturalFrequency, res.Weight = &fn, &w
	}
	res.Notices = notices
	return res, nil
}

// ExtensionInput is an extension spring design plus its duty.
type ExtensionInput struct {
	ExtensionParams `yaml:",inline"`
	MinForce        expr.Value        `json:"min_force_n" yaml:"min_force_n"`
	ReliabilityPct  float64           `json:"reliability_pct" yaml:"reliability_pct"`
	Criterion       fatigue.Criterion `json:"criterion" yaml:"criterion"`
	SafetyFactor    float64           `json:"safety_factor" yaml:"safety_factor"`
	Verbose         bool              `json:"verbose" yaml:"verbose"`
}

type ExtensionResult struct {
	Role            string          `json:"ground_truth"`
	SpringIndex     expr.Value      `json:"spring_index"`
	WireDiameter    expr.Value      `json:"wire_diameter_mm"`
	CoilDiameter    expr.Value      `json:"coil_diameter_mm"`
	ActiveCoils     expr.Value      `json:"active_coils"`
	BodyCoils       expr.Value      `json:"body_coils"`
	Rate            expr.Value      `json:"rate_n_per_mm"`
	FreeLength      expr.Value      `json:"free_length_mm"`
	HookKA          expr.Value      `json:"hook_ka"`
	HookKB          expr.Value      `json:"hook_kb"`
	Kw              expr.Value      `json:"kw"`
	Strengths       Strengths       `json:"strengths"`
	NormalStress    expr.Value      `json:"hook_normal_stress_mpa"`
	HookShearStress expr.Value      `json:"hook_shear_stress_mpa"`
	BodyShearStress expr.Value      `json:"body_shear_stress_mpa"`
	Deflection      expr.Value      `json:"deflection_mm"`
	Static          ExtensionStatic `json:"static_safety"`

	Fatigue ExtensionFatigue `json:"fatigue"`

	MinWireDiameter   *WireLimits `json:"min_wire_diameter,omitempty"`
	MinSpringDiameter *CoilLimits `json:"max_coil_diameter,omitempty"`
	NaturalFrequency  *expr.Value `json:"natural_frequency_hz,omitempty"`
	Weight            *expr.Value `json:"weight_kg,omitempty"`

	Notices diag.List `json:"notices"`
	Notes   string    `json:"notes"`
}

func CalculateExtension(in ExtensionInput) (ExtensionResult, error) {
	s, err := NewExtensionSpring(in.ExtensionParams)
	if err != nil {
		return ExtensionResult{}, err
	}
	res := ExtensionResult{
		Role:            s.Role().String(),
		SpringIndex:     s.SpringIndex(),
		WireDiameter:    s.WireDiameter(),
		CoilDiameter:    s.CoilDiameter(),
		ActiveCoils:     s.ActiveCoils(),
		BodyCoils:       s.BodyCoils(),
		Rate:            s.Rate(),
		FreeLength:      s.FreeLength(),
		HookKA:          s.HookKA(),
		HookKB:          s.HookKB(),
		Kw:              s.Kw(),
		Strengths:       s.Strengths(),
		NormalStress:    s.NormalStress(s.Force()),
		HookShearStress: s.ShearStress(s.Force()),
		BodyShearStress: s.BodyShearStress(s.Force()),
		Deflection:      s.Deflection(s.Force()),
		Static:          s.StaticSafetyFactors(),
		Notes:           "Hook normal endurance estimated as Sse/0.577. Zimmerli endurance data.",
	}
	minForce := in.MinForce
	if !supplied(minForce) {
		minForce = s.InitialTension()
	}
	res.Fatigue, err = s.FatigueAnalysis(s.Force(), minForce, in.ReliabilityPct, in.Criterion, in.Verbose)
	if err != nil {
		return ExtensionResult{}, err
	}
	res.Notices = s.Check()
	if in.SafetyFactor > 0 {
		if s.mat.SutMPa != 0 {
			res.Notices.Add(diag.KindSizingSkipped, s.mat.SutMPa, "minimum wire diameter needs the Ap/d^m strength model; skipped for a fixed Sut of %g MPa", s.mat.SutMPa)
		} else {
			w, err := s.MinimumWireDiameter(in.SafetyFactor)
			if err != nil {
				return ExtensionResult{}, err
			}
			res.MinWireDiameter = &w
		}
		c, err := s.MinimumSpringDiameter(in.SafetyFactor)
		if err != nil {
			return ExtensionResult{}, err
		}
		res.MinSpringDiameter = &c
	}
	if s.density > 0 {
		fn, _ := s.NaturalFrequency(s.density)
		w, _ := s.Weight(s.density)
		res.NaturalFrequency, res.Weight = &fn, &w
	}
	return res, nil
}
