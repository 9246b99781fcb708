package loadhistory

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"

	"Helix/internal/calc/calcerr"
)

func TestReversals(t *testing.T) {
	got := Reversals([]float64{0, 1, 2, 2, 1, 0, 0, 3})
	want := []float64{0, 2, 0, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, expected %v", got, want)
	}
}

// ASTM E1049 worked example.
func TestRainflowASTM(t *testing.T) {
	cycles := Rainflow([]float64{-2, 1, -3, 5, -1, 3, -4, 4, -2})
	byRange := map[float64]float64{}
	total := 0.0
	for _, c := range cycles {
		byRange[c.Range] += c.Count
		total += c.Count
	}
	want := map[float64]float64{3: 0.5, 4: 1.5, 6: 0.5, 8: 1, 9: 0.5}
	if !reflect.DeepEqual(byRange, want) {
		t.Errorf("counts by range = %v, expected %v", byRange, want)
	}
	chk.Float64(t, "total", 0, total, 4)
}

func TestGroupsMerge(t *testing.T) {
	got := Groups([]Cycle{
		{Range: 2, Mean: 0, Count: 1},
		{Range: 4, Mean: 1, Count: 0.5},
		{Range: 2, Mean: 0, Count: 0.5},
	})
	want := [][3]float64{{1.5, 1, 0}, {0.5, 2, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, expected %v", got, want)
	}
}

func sine(n int, rate, hz, amp, offset float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = offset + amp*math.Sin(2*math.Pi*hz*float64(i)/rate)
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	samples := sine(256, 128, 5, 20, 50)
	hz, amp, err := DominantFrequency(samples, 128)
	if err != nil {
		t.Fatal(err)
	}
	chk.Float64(t, "hz", 1e-12, hz, 5)
	chk.Float64(t, "amplitude", 1e-6, amp, 20)

	_, amps, _ := Spectrum(samples, 128)
	chk.Float64(t, "dc", 1e-6, amps[0], 50)

	if _, _, err := DominantFrequency(samples, 0); !errors.Is(err, calcerr.ErrInvalidArgument) {
		t.Errorf("zero rate: %v", err)
	}
	if _, _, err := Spectrum([]float64{1}, 10); !errors.Is(err, calcerr.ErrInvalidArgument) {
		t.Errorf("one sample: %v", err)
	}
}

func TestCalculateWithMiner(t *testing.T) {
	res, err := Calculate(Input{
		Samples:      sine(256, 128, 4, 300, 100),
		SampleRateHz: 128,
		SutMPa:       1000,
		SeMPa:        200,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Miner == nil || res.LifeSeconds == nil || res.DominantHz == nil {
		t.Fatalf("missing results: %+v", res)
	}
	chk.Float64(t, "duration", 0, *res.DurationS, 2)
	chk.Float64(t, "hz", 1e-12, *res.DominantHz, 4)
	if len(res.Miner.Groups) != len(res.Groups) {
		t.Errorf("miner groups %d, counted %d", len(res.Miner.Groups), len(res.Groups))
	}
	life, _ := res.Miner.Life.Float()
	chk.Float64(t, "life seconds", 1e-9*life, *res.LifeSeconds, life*2)
}

func TestCalculateScale(t *testing.T) {
	res, err := Calculate(Input{Samples: []float64{0, 1000, 0, 1000, 0}, Scale: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range res.Groups {
		chk.Float64(t, "alternating", 1e-12, g[1], 50)
	}
	if res.Miner != nil || res.DominantHz != nil {
		t.Error("no strengths or rate given")
	}
}

func TestHandler(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"samples": [0, 5, -5, 5, 0]}`)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"cycles"`) {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	rec = httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"samples": [1]}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d", rec.Code)
	}
}
