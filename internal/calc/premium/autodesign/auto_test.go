package autodesign

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"

	"Helix/internal/calc/calcerr"
	"Helix/internal/calc/spring"
	"Helix/internal/expr"
)

func autoInput() PushAutoInput {
	zeta := 0.25
	var in PushAutoInput
	in.PushParams = spring.PushParams{
		MaxForce:    expr.Num(575),
		SpringIndex: expr.Num(8),
		Material:    spring.Material{Ap: 2211, M: 0.145, ShearYieldPct: 45, ShearModulus: 81.7e3},
		EndType:     spring.EndSquaredGround,
		Zeta:        &zeta,
		Rate:        expr.Num(6.189),
	}
	in.SafetyFactor = 1.5
	in.AtSolid = true
	return in
}

func TestPushSizesAndRounds(t *testing.T) {
	res, err := Push(autoInput())
	if err != nil {
		t.Fatal(err)
	}
	kw := 31.0/28 + 0.615/8
	want := math.Pow(8*kw*1.25*575*8*1.5/(math.Pi*0.45*2211), 1/(2-0.145))
	chk.Float64(t, "d min", 1e-6, res.MinWireDiameterMM, want)
	chk.Float64(t, "stock", 1e-9, res.WireDiameterMM, math.Ceil(want*10)/10)

	n, _ := res.Design.SolidSafety.Float()
	if n < 1.5 {
		t.Errorf("rounded design safety %v is below the target", n)
	}
	chk.Float64(t, "D", 1e-9, mustFloat(t, res.Design.CoilDiameter), 8*res.WireDiameterMM)
}

func mustFloat(t *testing.T, v expr.Value) float64 {
	t.Helper()
	f, ok := v.Float()
	if !ok {
		t.Fatalf("%s is not concrete", v)
	}
	return f
}

func TestPushRejects(t *testing.T) {
	in := autoInput()
	in.SafetyFactor = 0
	if _, err := Push(in); !errors.Is(err, calcerr.ErrInvalidArgument) {
		t.Errorf("no safety factor: %v", err)
	}
	in = autoInput()
	in.StepMM = -1
	if _, err := Push(in); !errors.Is(err, calcerr.ErrInvalidArgument) {
		t.Errorf("negative step: %v", err)
	}
}

func TestHandler(t *testing.T) {
	h := &Handler{}
	body := `{"max_force_n": 575, "spring_index": 8, "zeta": 0.25, "rate_n_per_mm": 6.189,
		"material": {"ap_mpa": 2211, "m": 0.145, "shear_yield_pct": 45, "shear_modulus_mpa": 81700},
		"end_type": "squared and ground", "safety_factor": 1.5, "step_mm": 0.5}`
	rec := httptest.NewRecorder()
	h.Push(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"wire_diameter_mm":5.5`) {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
}
