package recommend

import (
	"sort"

	"Helix/internal/calc/calcerr"
	"Helix/internal/calc/fatigue"
	"Helix/internal/expr"
)

type CriterionInput struct {
	YieldMPa       expr.Value `json:"yield_mpa"`
	UltimateMPa    expr.Value `json:"ultimate_mpa"`
	EnduranceMPa   expr.Value `json:"endurance_mpa"`
	AlternatingMPa expr.Value `json:"alternating_mpa"`
	MeanMPa        expr.Value `json:"mean_mpa"`
}

type CriterionResult struct {
	// Ranking lists the fatigue criteria from the most to the least
	// conservative.
	Ranking     []fatigue.SafetyFactors `json:"ranking"`
	Governing   fatigue.Criterion       `json:"governing"`
	YieldFirst  bool                    `json:"yield_first"`
	Recommended fatigue.Criterion       `json:"recommended"`
	Notes       string                  `json:"notes"`
}

var fatigueCriteria = []fatigue.Criterion{
	fatigue.ModifiedGoodman,
	fatigue.Gerber,
	fatigue.ASMEElliptic,
	fatigue.Soderberg,
}

// Criterion evaluates one stress state against every fatigue line and
// reports the most conservative one. The recommendation pairs Gerber with
// the Langer first-cycle yield check: YieldFirst is set when yield comes
// before Gerber fatigue failure.
func Criterion(in CriterionInput) (CriterionResult, error) {
	s := fatigue.Strengths{Yield: in.YieldMPa, Ultimate: in.UltimateMPa, Endurance: in.EnduranceMPa}
	ranking := make([]fatigue.SafetyFactors, 0, len(fatigueCriteria))
	nf := make(map[fatigue.Criterion]float64, len(fatigueCriteria))
	var static float64
	for _, c := range fatigueCriteria {
		sf, err := fatigue.Evaluate(s, in.AlternatingMPa, in.MeanMPa, c, false)
		if err != nil {
			return CriterionResult{}, err
		}
		fs, ok := expr.Floats(sf.Fatigue, sf.Static)
		if !ok {
			return CriterionResult{}, calcerr.Invalid("ranking criteria needs concrete strengths and stresses")
		}
		nf[c], static = fs[0], fs[1]
		ranking = append(ranking, sf)
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return nf[ranking[i].Criterion] < nf[ranking[j].Criterion]
	})

	governing := ranking[0].Criterion
	res := CriterionResult{
		Ranking:     ranking,
		Governing:   governing,
		YieldFirst:  static < nf[fatigue.Gerber],
		Recommended: fatigue.Gerber,
		Notes:       "Gerber fits ductile test data best; Modified Goodman is the usual conservative design line.",
	}
	if res.YieldFirst {
		res.Recommended = fatigue.Langer
		res.Notes = "First-cycle yield comes before Gerber fatigue failure; check the Langer factor."
	}
	return res, nil
}
