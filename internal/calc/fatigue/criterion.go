// Package fatigue evaluates safety against yield and fatigue: mean-stress
// failure criteria, the Marin endurance limit and Miner's cumulative damage.
package fatigue

import (
	"log/slog"
	"math"
	"strings"

	"Helix/internal/calc/calcerr"
	"Helix/internal/expr"
)

// Criterion selects the mean-stress fatigue failure line.
type Criterion int

const (
	ModifiedGoodman Criterion = iota
	Gerber
	ASMEElliptic
	Soderberg
	Langer
)

var criterionNames = [...]string{
	ModifiedGoodman: "modified goodman",
	Gerber:          "gerber",
	ASMEElliptic:    "asme elliptic",
	Soderberg:       "soderberg",
	Langer:          "langer",
}

var criterionAliases = map[string]Criterion{
	"":                 ModifiedGoodman,
	"goodman":          ModifiedGoodman,
	"modified goodman": ModifiedGoodman,
	"gerber":           Gerber,
	"asme":             ASMEElliptic,
	"asme elliptic":    ASMEElliptic,
	"elliptic":         ASMEElliptic,
	"soderberg":        Soderberg,
	"langer":           Langer,
	"yield":            Langer,
}

func (c Criterion) String() string {
	if c < 0 || int(c) >= len(criterionNames) {
		return "unknown"
	}
	return criterionNames[c]
}

// ParseCriterion reads a criterion name. Case, dashes and underscores are
// ignored; the empty string selects Modified Goodman.
func ParseCriterion(s string) (Criterion, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", " ", "_", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")
	c, ok := criterionAliases[key]
	if !ok {
		return 0, calcerr.Invalid("unknown failure criterion %q", s)
	}
	return c, nil
}

func (c Criterion) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Criterion) UnmarshalText(b []byte) error {
	parsed, err := ParseCriterion(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Strengths are the material strengths a criterion is evaluated against.
type Strengths struct {
	Yield     expr.Value `json:"yield_mpa"`
	Ultimate  expr.Value `json:"ultimate_mpa"`
	Endurance expr.Value `json:"endurance_mpa"`
}

// SafetyFactors is the outcome of one criterion evaluation together with the
// intermediates it used.
type SafetyFactors struct {
	Criterion    Criterion  `json:"criterion"`
	Fatigue      expr.Value `json:"fatigue"`
	Static       expr.Value `json:"static"`
	InfiniteLife bool       `json:"infinite_life"`
	Alternating  expr.Value `json:"alternating_mpa"`
	Mean         expr.Value `json:"mean_mpa"`
	MeanUsed     expr.Value `json:"mean_used_mpa"`
	Endurance    expr.Value `json:"endurance_mpa"`
}

func positive(name string, v expr.Value) error {
	if f, ok := v.Float(); ok && !(f > 0) {
		return calcerr.Invalid("%s must be positive, got %g", name, f)
	}
	return nil
}

// clampMean drops a compressive mean stress to zero. Deferred values pass
// through unchanged.
func clampMean(mean expr.Value) expr.Value {
	if f, ok := mean.Float(); ok && f < 0 {
		return expr.Num(0)
	}
	return mean
}

// Evaluate returns the fatigue and static safety factors for an alternating
// and mean stress pair. Compressive means are clamped to zero for the fatigue
// line; the static factor uses the peak magnitude Sy/(σa+|σm|). A zero stress
// state yields infinite factors with InfiniteLife set.
func Evaluate(s Strengths, alt, mean expr.Value, c Criterion, verbose bool) (SafetyFactors, error) {
	for _, p := range []struct {
		name string
		v    expr.Value
	}{{"yield strength", s.Yield}, {"ultimate strength", s.Ultimate}, {"endurance limit", s.Endurance}} {
		if err := positive(p.name, p.v); err != nil {
			return SafetyFactors{}, err
		}
	}
	if c < ModifiedGoodman || c > Langer {
		return SafetyFactors{}, calcerr.Invalid("unknown failure criterion %d", int(c))
	}

	alt = alt.Abs()
	used := clampMean(mean)
	out := SafetyFactors{
		Criterion:   c,
		Alternating: alt,
		Mean:        mean,
		MeanUsed:    used,
		Endurance:   s.Endurance,
	}

	if fs, ok := expr.Floats(alt, mean); ok && fs[0] == 0 && fs[1] == 0 {
		out.Fatigue = expr.Num(math.Inf(1))
		out.Static = expr.Num(math.Inf(1))
		out.InfiniteLife = true
		logEvaluation(out, verbose)
		return out, nil
	}

	out.Static = s.Yield.Div(alt.Add(mean.Abs()))

	one := expr.Num(1)
	ra := alt.Div(s.Endurance)
	switch c {
	case ModifiedGoodman:
		out.Fatigue = one.Div(ra.Add(used.Div(s.Ultimate)))
	case Gerber:
		// positive root of a n² + b n - 1 = 0 written as 2/(b + sqrt(b² + 4a))
		a := used.Div(s.Ultimate).Pow(2)
		out.Fatigue = expr.Num(2).Div(ra.Add(ra.Pow(2).Add(a.Scale(4)).Sqrt()))
	case ASMEElliptic:
		out.Fatigue = one.Div(ra.Pow(2).Add(used.Div(s.Yield).Pow(2)).Sqrt())
	case Soderberg:
		out.Fatigue = one.Div(ra.Add(used.Div(s.Yield)))
	case Langer:
		out.Fatigue = out.Static
	}
	logEvaluation(out, verbose)
	return out, nil
}

func logEvaluation(f SafetyFactors, verbose bool) {
	if !verbose {
		return
	}
	slog.Debug("criterion evaluation",
		"criterion", f.Criterion.String(),
		"alternating", f.Alternating.String(),
		"mean", f.Mean.String(),
		"mean_used", f.MeanUsed.String(),
		"endurance", f.Endurance.String(),
		"fatigue", f.Fatigue.String(),
		"static", f.Static.String(),
	)
}

// StressConcentration returns the fatigue stress-concentration factor
// Kf = 1 + q (Kt - 1) for notch sensitivity q.
func StressConcentration(q, kt expr.Value) expr.Value {
	return expr.Num(1).Add(q.Mul(kt.Sub(expr.Num(1))))
}
