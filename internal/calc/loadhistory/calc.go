package loadhistory

import (
	"Helix/internal/calc/calcerr"
	"Helix/internal/calc/fatigue"
)

// Input is a sampled history. Scale converts the samples to stress in MPa
// (for a force history, 1/area); zero means the samples already are MPa.
// With Sut and Se set the counted cycles go through Miner's rule.
type Input struct {
	Samples      []float64 `json:"samples"`
	SampleRateHz float64   `json:"sample_rate_hz"`
	Scale        float64   `json:"scale"`
	SutMPa       float64   `json:"sut_mpa"`
	SeMPa        float64   `json:"se_mpa"`
}

type Result struct {
	Reversals   int                  `json:"reversals"`
	Cycles      []Cycle              `json:"cycles"`
	Groups      [][3]float64         `json:"groups"`
	DominantHz  *float64             `json:"dominant_hz,omitempty"`
	DurationS   *float64             `json:"duration_s,omitempty"`
	Miner       *fatigue.MinerResult `json:"miner,omitempty"`
	LifeSeconds *float64             `json:"life_seconds,omitempty"`
	Notes       string               `json:"notes"`
}

func Calculate(in Input) (Result, error) {
	if len(in.Samples) < 2 {
		return Result{}, calcerr.Invalid("history needs at least two samples")
	}
	if in.Scale == 0 {
		in.Scale = 1
	}
	stress := make([]float64, len(in.Samples))
	for i, s := range in.Samples {
		stress[i] = s * in.Scale
	}

	cycles := Rainflow(stress)
	res := Result{
		Reversals: len(Reversals(stress)),
		Cycles:    cycles,
		Groups:    Groups(cycles),
		Notes:     "Rainflow counting per ASTM E1049; the residue counts as half cycles.",
	}
	if in.SampleRateHz > 0 {
		hz, _, err := DominantFrequency(stress, in.SampleRateHz)
		if err != nil {
			return Result{}, err
		}
		dur := float64(len(stress)) / in.SampleRateHz
		res.DominantHz, res.DurationS = &hz, &dur
	}
	if in.SutMPa > 0 || in.SeMPa > 0 {
		m, err := fatigue.Miner(fatigue.MinerInput{Groups: res.Groups, SutMPa: in.SutMPa, SeMPa: in.SeMPa, AltMean: true})
		if err != nil {
			return Result{}, err
		}
		res.Miner = &m
		if res.DurationS != nil && !m.InfiniteLife {
			if passes, ok := m.Life.Float(); ok {
				life := passes * *res.DurationS
				res.LifeSeconds = &life
			}
		}
	}
	return res, nil
}
