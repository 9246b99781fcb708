package autodesign

import (
	"math"

	"Helix/internal/calc/calcerr"
	"Helix/internal/calc/spring"
	"Helix/internal/expr"
)

// PushAutoInput is a push spring design whose wire diameter is left to the
// sizer. StepMM is the stock increment the diameter is rounded up to.
type PushAutoInput struct {
	spring.PushInput `yaml:",inline"`
	StepMM           float64 `json:"step_mm" yaml:"step_mm"`
	AtSolid          bool    `json:"at_solid" yaml:"at_solid"`
}

type PushAutoResult struct {
	MinWireDiameterMM float64           `json:"min_wire_diameter_mm"`
	WireDiameterMM    float64           `json:"wire_diameter_mm"`
	Design            spring.PushResult `json:"design"`
	Notes             string            `json:"notes"`
}

// Push sizes the wire for the requested static safety factor, rounds it up
// to stock and evaluates the resulting design.
func Push(in PushAutoInput) (PushAutoResult, error) {
	if !(in.SafetyFactor > 0) {
		return PushAutoResult{}, calcerr.Invalid("safety factor must be positive, got %g", in.SafetyFactor)
	}
	if in.StepMM == 0 {
		in.StepMM = 0.1
	}
	if in.StepMM < 0 {
		return PushAutoResult{}, calcerr.Invalid("stock step must be positive, got %g", in.StepMM)
	}

	params := in.PushParams
	if f, ok := params.WireDiameter.Float(); ok && f == 0 {
		params.WireDiameter = expr.Sym("d")
	}
	s, err := spring.NewPushSpring(params)
	if err != nil {
		return PushAutoResult{}, err
	}
	dmin, err := s.MinimumWireDiameter(in.SafetyFactor, in.AtSolid)
	if err != nil {
		return PushAutoResult{}, err
	}
	d := math.Ceil(dmin/in.StepMM-1e-9) * in.StepMM

	design := in.PushInput
	design.WireDiameter = expr.Num(d)
	res, err := spring.CalculatePush(design)
	if err != nil {
		return PushAutoResult{}, err
	}
	return PushAutoResult{
		MinWireDiameterMM: dmin,
		WireDiameterMM:    d,
		Design:            res,
		Notes:             "Wire diameter sized for the static safety factor and rounded up to stock.",
	}, nil
}
