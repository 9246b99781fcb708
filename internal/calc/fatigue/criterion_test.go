package fatigue

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"Helix/internal/calc/calcerr"
	"Helix/internal/expr"
)

var strengths = Strengths{Yield: expr.Num(800), Ultimate: expr.Num(1200), Endurance: expr.Num(400)}

func float(t *testing.T, v expr.Value) float64 {
	t.Helper()
	f, ok := v.Float()
	if !ok {
		t.Fatalf("%s is not concrete", v)
	}
	return f
}

func TestCriteria(t *testing.T) {
	cases := []struct {
		c    Criterion
		want float64
	}{
		{ModifiedGoodman, 2.4},
		{Gerber, 3},
		{ASMEElliptic, 1 / math.Sqrt(0.125)},
		{Soderberg, 2},
		{Langer, 800.0 / 300.0},
	}
	for _, tc := range cases {
		sf, err := Evaluate(strengths, expr.Num(100), expr.Num(200), tc.c, true)
		if err != nil {
			t.Fatalf("%s: %v", tc.c, err)
		}
		chk.Float64(t, tc.c.String(), 1e-12, float(t, sf.Fatigue), tc.want)
	}
}

func TestStaticFactorIndependentOfCriterion(t *testing.T) {
	for _, c := range []Criterion{ModifiedGoodman, Gerber, ASMEElliptic, Soderberg, Langer} {
		for _, p := range [][2]float64{{100, 200}, {50, 0}, {10, 500}, {300, 1}} {
			sf, err := Evaluate(strengths, expr.Num(p[0]), expr.Num(p[1]), c, false)
			if err != nil {
				t.Fatal(err)
			}
			chk.Float64(t, c.String()+" ns", 1e-12, float(t, sf.Static), 800/(p[0]+p[1]))
		}
	}
}

func TestGerberSolvesQuadratic(t *testing.T) {
	sf, err := Evaluate(strengths, expr.Num(150), expr.Num(450), Gerber, false)
	if err != nil {
		t.Fatal(err)
	}
	n := float(t, sf.Fatigue)
	residual := math.Pow(450.0/1200, 2)*n*n + 150.0/400*n - 1
	chk.Float64(t, "residual", 1e-12, residual, 0)

	sf, _ = Evaluate(strengths, expr.Num(0), expr.Num(600), Gerber, false)
	chk.Float64(t, "pure mean", 1e-12, float(t, sf.Fatigue), 2)
}

func TestCompressiveMean(t *testing.T) {
	for _, c := range []Criterion{ModifiedGoodman, Gerber} {
		sf, err := Evaluate(strengths, expr.Num(100), expr.Num(-200), c, false)
		if err != nil {
			t.Fatal(err)
		}
		if got := float(t, sf.MeanUsed); got != 0 {
			t.Errorf("%s: mean used = %v, expected clamp to 0", c, got)
		}
		if got := float(t, sf.Mean); got != -200 {
			t.Errorf("%s: mean = %v, expected the value as given", c, got)
		}
		chk.Float64(t, c.String()+" nf", 1e-12, float(t, sf.Fatigue), 4)
		chk.Float64(t, c.String()+" ns", 1e-12, float(t, sf.Static), 800.0/300.0)
	}
}

func TestZeroStressIsInfiniteLife(t *testing.T) {
	sf, err := Evaluate(strengths, expr.Num(0), expr.Num(0), Gerber, false)
	if err != nil {
		t.Fatal(err)
	}
	if !sf.InfiniteLife || !math.IsInf(float(t, sf.Fatigue), 1) || !math.IsInf(float(t, sf.Static), 1) {
		t.Errorf("got %+v", sf)
	}
	if _, err := json.Marshal(sf); err != nil {
		t.Errorf("infinite factors must encode: %v", err)
	}
}

func TestEvaluateRejects(t *testing.T) {
	bad := Strengths{Yield: expr.Num(0), Ultimate: expr.Num(1), Endurance: expr.Num(1)}
	if _, err := Evaluate(bad, expr.Num(1), expr.Num(1), ModifiedGoodman, false); !errors.Is(err, calcerr.ErrInvalidArgument) {
		t.Errorf("zero yield: %v", err)
	}
	if _, err := Evaluate(strengths, expr.Num(1), expr.Num(1), Criterion(42), false); !errors.Is(err, calcerr.ErrInvalidArgument) {
		t.Errorf("bad criterion: %v", err)
	}
}

func TestDeferredStress(t *testing.T) {
	sf, err := Evaluate(strengths, expr.Sym("sa"), expr.Num(200), ModifiedGoodman, false)
	if err != nil {
		t.Fatal(err)
	}
	if sf.Fatigue.IsConcrete() {
		t.Fatal("fatigue factor over a symbolic stress should be deferred")
	}
	n, err := sf.Fatigue.Eval(map[string]float64{"sa": 100})
	if err != nil {
		t.Fatal(err)
	}
	chk.Float64(t, "bound", 1e-12, n, 2.4)
}

func TestParseCriterion(t *testing.T) {
	cases := map[string]Criterion{
		"":                 ModifiedGoodman,
		"Goodman":          ModifiedGoodman,
		"modified-goodman": ModifiedGoodman,
		"GERBER":           Gerber,
		"asme":             ASMEElliptic,
		"ASME_Elliptic":    ASMEElliptic,
		"soderberg":        Soderberg,
		" Langer ":         Langer,
	}
	for in, want := range cases {
		got, err := ParseCriterion(in)
		if err != nil || got != want {
			t.Errorf("ParseCriterion(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseCriterion("morrow"); !errors.Is(err, calcerr.ErrInvalidArgument) {
		t.Errorf("unknown criterion: %v", err)
	}

	var in struct {
		C Criterion `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"c":"asme-elliptic"}`), &in); err != nil || in.C != ASMEElliptic {
		t.Errorf("json: %v %v", in.C, err)
	}
}

func TestStressConcentration(t *testing.T) {
	kf := StressConcentration(expr.Num(0.8), expr.Num(2.5))
	chk.Float64(t, "Kf", 1e-12, float(t, kf), 2.2)
}

func TestFromRange(t *testing.T) {
	l := FromRange(expr.Num(500), expr.Num(-100))
	chk.Float64(t, "alt", 1e-12, float(t, l.Alternating), 300)
	chk.Float64(t, "mean", 1e-12, float(t, l.Mean), 200)
	chk.Float64(t, "max", 1e-12, float(t, l.Max()), 500)
	chk.Float64(t, "min", 1e-12, float(t, l.Min()), -100)
}
