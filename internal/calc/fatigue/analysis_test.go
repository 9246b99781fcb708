package fatigue

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"

	"Helix/internal/calc/calcerr"
	"Helix/internal/expr"
)

func TestShaftReversedBending(t *testing.T) {
	res, err := Calculate(Input{
		DiameterMM:   expr.Num(30),
		SutMPa:       expr.Num(600),
		SyMPa:        expr.Num(450),
		Rotating:     true,
		MomentAltNmm: expr.Num(200000),
	})
	if err != nil {
		t.Fatal(err)
	}
	sa := 32 * 200000 / (math.Pi * 27000)
	chk.Float64(t, "alternating", 1e-9, float(t, res.Alternating), sa)
	chk.Float64(t, "mean", 1e-12, float(t, res.Mean), 0)

	se := float(t, res.Endurance.Limit)
	chk.Float64(t, "goodman", 1e-9, float(t, res.Safety.Fatigue), se/sa)
	chk.Float64(t, "yield", 1e-9, float(t, res.Safety.Static), 450/sa)
	chk.Float64(t, "Kf", 0, float(t, res.Kf), 1)
}

func TestShaftNotchAndTorque(t *testing.T) {
	res, err := Calculate(Input{
		DiameterMM:    expr.Num(30),
		SutMPa:        expr.Num(600),
		SyMPa:         expr.Num(450),
		Rotating:      true,
		KtBending:     expr.Num(2),
		QBending:      expr.Num(0.8),
		KtTorsion:     expr.Num(1.5),
		QTorsion:      expr.Num(0.9),
		MomentAltNmm:  expr.Num(100000),
		TorqueMeanNmm: expr.Num(150000),
		Criterion:     ASMEElliptic,
	})
	if err != nil {
		t.Fatal(err)
	}
	chk.Float64(t, "Kf", 1e-12, float(t, res.Kf), 1.8)
	chk.Float64(t, "Kfs", 1e-12, float(t, res.Kfs), 1.45)

	sa := 1.8 * 32 * 100000 / (math.Pi * 27000)
	tm := 1.45 * 16 * 150000 / (math.Pi * 27000)
	chk.Float64(t, "alternating", 1e-9, float(t, res.Alternating), sa)
	chk.Float64(t, "mean", 1e-9, float(t, res.Mean), math.Sqrt(3)*tm)
	if res.Safety.Criterion != ASMEElliptic {
		t.Errorf("criterion = %s", res.Safety.Criterion)
	}
}

func TestShaftCompressiveMean(t *testing.T) {
	res, err := Calculate(Input{
		DiameterMM:   expr.Num(30),
		SutMPa:       expr.Num(600),
		SyMPa:        expr.Num(450),
		Rotating:     true,
		MomentAltNmm: expr.Num(200000),
		AxialMeanN:   expr.Num(-50000),
	})
	if err != nil {
		t.Fatal(err)
	}
	if float(t, res.Mean) >= 0 {
		t.Errorf("compressive mean should stay negative, got %v", res.Mean)
	}
	if float(t, res.Safety.MeanUsed) != 0 {
		t.Errorf("mean used = %v", res.Safety.MeanUsed)
	}
}

func TestShaftWithDutyCycle(t *testing.T) {
	res, err := Calculate(Input{
		DiameterMM:   expr.Num(30),
		SutMPa:       expr.Num(600),
		SyMPa:        expr.Num(450),
		Rotating:     true,
		MomentAltNmm: expr.Num(200000),
		Duty:         [][3]float64{{1000, 400, 0}},
		AltMean:      true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Miner == nil || res.Miner.InfiniteLife {
		t.Fatalf("expected a finite Miner life, got %+v", res.Miner)
	}
}

func TestShaftDutyCycleNeedsConcreteStrengths(t *testing.T) {
	in := Input{
		DiameterMM:   expr.Num(30),
		SutMPa:       expr.Sym("Sut"),
		SyMPa:        expr.Num(450),
		Rotating:     true,
		MomentAltNmm: expr.Num(200000),
		Duty:         [][3]float64{{1000, 400, 0}},
		AltMean:      true,
	}
	if _, err := Calculate(in); !errors.Is(err, calcerr.ErrInvalidArgument) || !strings.Contains(err.Error(), "duty cycle") {
		t.Errorf("symbolic Sut with a duty cycle: %v", err)
	}

	in.Duty = nil
	res, err := Calculate(in)
	if err != nil {
		t.Fatal(err)
	}
	if res.Miner != nil {
		t.Errorf("miner ran without a duty cycle: %+v", res.Miner)
	}
}

func TestFatigueHandler(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	body := `{"diameter_mm":30,"sut_mpa":600,"sy_mpa":450,"rotating":true,"moment_alt_nmm":200000,"criterion":"gerber"}`
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"criterion":"gerber"`) {
		t.Errorf("body %s", rec.Body)
	}

	rec = httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"criterion":"morrow"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown criterion: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Endurance(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sut_mpa":600,"diameter_mm":30,"rotating":true}`)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"factors"`) {
		t.Errorf("endurance: %d %s", rec.Code, rec.Body)
	}
}
