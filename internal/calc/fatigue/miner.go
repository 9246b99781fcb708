package fatigue

import (
	"log/slog"
	"math"

	"Helix/internal/calc/calcerr"
	"Helix/internal/expr"
)

// MinerInput describes a duty cycle. Each group is [repetition, a, b] where
// (a, b) is (max, min) or, with AltMean, (alternating, mean). Repetition is a
// cycle count per pass, or a frequency in Hz when Freq is set.
type MinerInput struct {
	Groups      [][3]float64 `json:"groups" yaml:"groups"`
	SutMPa      float64      `json:"sut_mpa" yaml:"sut_mpa"`
	SeMPa       float64      `json:"se_mpa" yaml:"se_mpa"`
	AltMean     bool         `json:"alt_mean" yaml:"alt_mean"`
	Freq        bool         `json:"freq" yaml:"freq"`
	// Coefficient and Exponent override the S-N line σ = a N^b when both
	// are set.
	Coefficient float64      `json:"coefficient,omitempty" yaml:"coefficient"`
	Exponent    float64      `json:"exponent,omitempty" yaml:"exponent"`
	Verbose     bool         `json:"verbose" yaml:"verbose"`
}

type GroupResult struct {
	Repetition  float64    `json:"repetition"`
	Alternating float64    `json:"alternating_mpa"`
	Mean        float64    `json:"mean_mpa"`
	Reversed    expr.Value `json:"reversed_mpa"`
	Cycles      expr.Value `json:"cycles_to_failure"`
	Damage      expr.Value `json:"damage"`
}

type MinerResult struct {
	Groups       []GroupResult `json:"groups"`
	// Damage is per pass for counts and per second for frequencies.
	Damage       expr.Value    `json:"damage"`
	Life         expr.Value    `json:"life"`
	LifeUnit     string        `json:"life_unit"`
	InfiniteLife bool          `json:"infinite_life"`
	Coefficient  float64       `json:"coefficient_mpa"`
	Exponent     float64       `json:"exponent"`
}

// BasquinLine returns a and b of σ = a N^b through (1, Sut) and (1e6, Se).
func BasquinLine(sut, se float64) (a, b float64) {
	return sut, math.Log10(se/sut) / 6
}

// ReversedStress is the Goodman-equivalent completely reversed stress. A
// mean at or above Sut returns +Inf.
func ReversedStress(alt, mean, sut float64) float64 {
	if mean <= 0 {
		return alt
	}
	if mean >= sut {
		return math.Inf(1)
	}
	return alt / (1 - mean/sut)
}

// Miner accumulates damage over a duty cycle with the Palmgren-Miner rule.
func Miner(in MinerInput) (MinerResult, error) {
	if len(in.Groups) == 0 {
		return MinerResult{}, calcerr.Invalid("duty cycle has no groups")
	}
	if !(in.SutMPa > 0) || !(in.SeMPa > 0) {
		return MinerResult{}, calcerr.Invalid("Sut and Se must be positive, got %g and %g", in.SutMPa, in.SeMPa)
	}

	if (in.Coefficient != 0) != (in.Exponent != 0) {
		return MinerResult{}, calcerr.Invalid("S-N coefficient and exponent must be given together, got %g and %g", in.Coefficient, in.Exponent)
	}
	a, b := BasquinLine(in.SutMPa, in.SeMPa)
	if in.Coefficient != 0 {
		a, b = in.Coefficient, in.Exponent
	}
	if !(a > 0) || !(b < 0) {
		return MinerResult{}, calcerr.Invalid("S-N line needs a positive coefficient and a negative exponent, got %g and %g", a, b)
	}

	res := MinerResult{
		Groups:      make([]GroupResult, 0, len(in.Groups)),
		LifeUnit:    "passes",
		Coefficient: a,
		Exponent:    b,
	}
	if in.Freq {
		res.LifeUnit = "seconds"
	}

	total := 0.0
	for i, g := range in.Groups {
		if g[0] < 0 {
			return MinerResult{}, calcerr.Invalid("group %d: repetition must not be negative, got %g", i, g[0])
		}
		load := Load{Alternating: expr.Num(math.Abs(g[1])), Mean: expr.Num(g[2])}
		if !in.AltMean {
			load = FromRange(expr.Num(g[1]), expr.Num(g[2]))
		}
		alt, _ := load.Alternating.Float()
		mean, _ := load.Mean.Float()

		reversed := ReversedStress(alt, mean, in.SutMPa)
		gr := GroupResult{Repetition: g[0], Alternating: alt, Mean: mean, Reversed: expr.Num(reversed)}

		var cycles, damage float64
		switch {
		case math.IsInf(reversed, 1):
			cycles, damage = 0, math.Inf(1)
			if g[0] == 0 {
				damage = 0
			}
		case reversed < in.SeMPa || reversed <= 0:
			cycles, damage = math.Inf(1), 0
		default:
			cycles = math.Pow(reversed/a, 1/b)
			damage = g[0] / cycles
		}
		gr.Cycles = expr.Num(cycles)
		gr.Damage = expr.Num(damage)
		total += damage
		res.Groups = append(res.Groups, gr)

		if in.Verbose {
			slog.Debug("miner group",
				"index", i,
				"repetition", g[0],
				"alternating", alt,
				"mean", mean,
				"reversed", reversed,
				"cycles", cycles,
				"damage", damage,
			)
		}
	}

	res.Damage = expr.Num(total)
	if total == 0 {
		res.Life = expr.Num(math.Inf(1))
		res.InfiniteLife = true
	} else {
		res.Life = expr.Num(1 / total)
	}
	if in.Verbose {
		slog.Debug("miner total", "damage", total, "life", res.Life.String(), "unit", res.LifeUnit)
	}
	return res, nil
}
