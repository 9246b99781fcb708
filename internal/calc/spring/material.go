package spring

import (
	"Helix/internal/calc/calcerr"
	"Helix/internal/expr"
)

// Material is a spring wire strength profile. Sut follows Ap/d^m unless
// SutMPa is given. Yield percentages take either percent (1..100) or
// fraction (0..1) form.
type Material struct {
	Ap              float64 `json:"ap_mpa" yaml:"ap_mpa"`
	M               float64 `json:"m" yaml:"m"`
	ShearYieldPct   float64 `json:"shear_yield_pct" yaml:"shear_yield_pct"`
	BendingYieldPct float64 `json:"bending_yield_pct,omitempty" yaml:"bending_yield_pct"`
	ShearModulus    float64 `json:"shear_modulus_mpa" yaml:"shear_modulus_mpa"`
	ElasticModulus  float64 `json:"elastic_modulus_mpa,omitempty" yaml:"elastic_modulus_mpa"`
	SutMPa          float64 `json:"sut_mpa,omitempty" yaml:"sut_mpa"`
}

// Fraction converts a yield percentage to a fraction of Sut.
func Fraction(pct float64) (float64, error) {
	switch {
	case pct >= 1 && pct <= 100:
		return pct / 100, nil
	case pct > 0 && pct < 1:
		return pct, nil
	}
	return 0, calcerr.Invalid("yield percentage %g is neither a percent (1..100) nor a fraction (0..1)", pct)
}

func (m Material) validate(needBending, needElastic bool) error {
	if m.SutMPa == 0 && !(m.Ap > 0) {
		return calcerr.Invalid("material needs a positive Ap or an explicit Sut")
	}
	if m.SutMPa < 0 {
		return calcerr.Invalid("Sut must be positive, got %g", m.SutMPa)
	}
	if !(m.ShearModulus > 0) {
		return calcerr.Invalid("shear modulus must be positive, got %g", m.ShearModulus)
	}
	if _, err := Fraction(m.ShearYieldPct); err != nil {
		return err
	}
	if needBending {
		if _, err := Fraction(m.BendingYieldPct); err != nil {
			return err
		}
	}
	if needElastic && !(m.ElasticModulus > 0) {
		return calcerr.Invalid("elastic modulus must be positive, got %g", m.ElasticModulus)
	}
	return nil
}

// Strengths of a wire of a given diameter.
type Strengths struct {
	Ultimate      expr.Value `json:"sut_mpa"`
	ShearUltimate expr.Value `json:"ssu_mpa"`
	ShearYield    expr.Value `json:"ssy_mpa"`
	Yield         expr.Value `json:"sy_mpa"`
}

// At returns the strengths for wire diameter d. Yield is zero when no
// bending percentage is set.
func (m Material) At(d expr.Value) Strengths {
	sut := expr.Num(m.SutMPa)
	if m.SutMPa == 0 {
		sut = d.Pow(-m.M).Scale(m.Ap)
	}
	s := Strengths{
		Ultimate:      sut,
		ShearUltimate: sut.Scale(0.67),
	}
	if f, err := Fraction(m.ShearYieldPct); err == nil {
		s.ShearYield = sut.Scale(f)
	}
	if f, err := Fraction(m.BendingYieldPct); err == nil {
		s.Yield = sut.Scale(f)
	}
	return s
}
