package fatigue

import (
	"math"

	"Helix/internal/calc/calcerr"
	"Helix/internal/calc/stress"
	"Helix/internal/expr"
)

// Input describes a solid round shaft under fluctuating bending, torsion and
// axial load. Notch sensitivities of zero mean a fully notch-sensitive
// material (q = 1); zero Kt means no notch.
type Input struct {
	DiameterMM     expr.Value `json:"diameter_mm"`
	SutMPa         expr.Value `json:"sut_mpa"`
	SyMPa          expr.Value `json:"sy_mpa"`
	Material       Material   `json:"material"`
	Finish         Finish     `json:"finish"`
	Rotating       bool       `json:"rotating"`
	TemperatureC   float64    `json:"temperature_c"`
	ReliabilityPct float64    `json:"reliability_pct"`
	MiscFactor     expr.Value `json:"misc_factor"`

	KtBending expr.Value `json:"kt_bending"`
	KtTorsion expr.Value `json:"kt_torsion"`
	QBending  expr.Value `json:"q_bending"`
	QTorsion  expr.Value `json:"q_torsion"`

	MomentAltNmm  expr.Value `json:"moment_alt_nmm"`
	MomentMeanNmm expr.Value `json:"moment_mean_nmm"`
	TorqueAltNmm  expr.Value `json:"torque_alt_nmm"`
	TorqueMeanNmm expr.Value `json:"torque_mean_nmm"`
	AxialAltN     expr.Value `json:"axial_alt_n"`
	AxialMeanN    expr.Value `json:"axial_mean_n"`

	Criterion Criterion    `json:"criterion"`
	// Duty, when present, is run through Miner's rule with the shaft's
	// Sut and corrected Se. Both must be concrete.
	Duty      [][3]float64 `json:"duty,omitempty"`
	AltMean   bool         `json:"alt_mean"`
	Freq      bool         `json:"freq"`
	Verbose   bool         `json:"verbose"`
}

type Result struct {
	Endurance   Endurance     `json:"endurance"`
	Kf          expr.Value    `json:"kf"`
	Kfs         expr.Value    `json:"kfs"`
	Alternating expr.Value    `json:"von_mises_alt_mpa"`
	Mean        expr.Value    `json:"von_mises_mean_mpa"`
	Safety      SafetyFactors `json:"safety"`
	Miner       *MinerResult  `json:"miner,omitempty"`
	Notes       string        `json:"notes"`
}

func orDefault(v expr.Value, def float64) expr.Value {
	if f, ok := v.Float(); ok && f == 0 {
		return expr.Num(def)
	}
	return v
}

// Calculate runs the combined-loading shaft analysis: von Mises alternating
// and mean stresses with Kf and Kfs applied, then the selected criterion.
// Axial alternating stress is divided by the axial load factor 0.85 since Se
// is built for bending.
func Calculate(in Input) (Result, error) {
	if err := positive("diameter", in.DiameterMM); err != nil {
		return Result{}, err
	}
	if err := positive("yield strength", in.SyMPa); err != nil {
		return Result{}, err
	}

	se, err := BuildEndurance(EnduranceInput{
		SutMPa:         in.SutMPa,
		Finish:         in.Finish,
		Rotating:       in.Rotating,
		Stress:         StressBending,
		DiameterMM:     in.DiameterMM,
		TemperatureC:   in.TemperatureC,
		ReliabilityPct: in.ReliabilityPct,
		Material:       in.Material,
		MiscFactor:     in.MiscFactor,
	})
	if err != nil {
		return Result{}, err
	}

	kf := StressConcentration(orDefault(in.QBending, 1), orDefault(in.KtBending, 1))
	kfs := StressConcentration(orDefault(in.QTorsion, 1), orDefault(in.KtTorsion, 1))

	d := in.DiameterMM
	c := d.Scale(0.5)
	area := d.Pow(2).Scale(math.Pi / 4)
	inertia := c.Pow(4).Scale(math.Pi / 4)
	polar := inertia.Scale(2)

	bendA := stress.Bending(in.MomentAltNmm, inertia, c)
	bendM := stress.Bending(in.MomentMeanNmm, inertia, c)
	torA := stress.Torsion(in.TorqueAltNmm, c, polar)
	torM := stress.Torsion(in.TorqueMeanNmm, c, polar)
	axA := stress.Uniform(in.AxialAltN, area).Scale(1 / 0.85)
	axM := stress.Uniform(in.AxialMeanN, area)

	alt := stress.VonMises(kf.Mul(bendA.Add(axA)), kfs.Mul(torA))
	mean := stress.VonMises(kf.Mul(bendM.Add(axM)), kfs.Mul(torM))
	// a purely normal compressive mean keeps its sign so the criterion can clamp it
	if fs, ok := expr.Floats(bendM.Add(axM), torM); ok && fs[0] < 0 && fs[1] == 0 {
		mean = mean.Neg()
	}

	safety, err := Evaluate(Strengths{Yield: in.SyMPa, Ultimate: in.SutMPa, Endurance: se.Limit}, alt, mean, in.Criterion, in.Verbose)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Endurance:   se,
		Kf:          kf,
		Kfs:         kfs,
		Alternating: alt,
		Mean:        mean,
		Safety:      safety,
		Notes:       "Solid round shaft, distortion-energy combination of fluctuating stresses.",
	}

	if len(in.Duty) > 0 {
		sut, ok1 := in.SutMPa.Float()
		seLimit, ok2 := se.Limit.Float()
		if !ok1 || !ok2 {
			return Result{}, calcerr.Invalid("duty cycle needs a concrete Sut and Se, got %s and %s", in.SutMPa, se.Limit)
		}
		m, err := Miner(MinerInput{Groups: in.Duty, SutMPa: sut, SeMPa: seLimit, AltMean: in.AltMean, Freq: in.Freq, Verbose: in.Verbose})
		if err != nil {
			return Result{}, err
		}
		res.Miner = &m
	}
	return res, nil
}
