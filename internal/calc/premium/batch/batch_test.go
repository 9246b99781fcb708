package batch

import (
	"errors"
	"strings"
	"testing"

	"Helix/internal/calc/calcerr"
	"Helix/internal/calc/spring"
	"Helix/internal/expr"
)

func item(active float64) spring.PushInput {
	return spring.PushInput{PushParams: spring.PushParams{
		MaxForce:     expr.Num(100),
		WireDiameter: expr.Num(2),
		CoilDiameter: expr.Num(16),
		Material:     spring.Material{Ap: 2211, M: 0.145, ShearYieldPct: 45, ShearModulus: 81.7e3},
		EndType:      spring.EndSquared,
		ActiveCoils:  expr.Num(active),
	}}
}

func TestCalculatePush(t *testing.T) {
	res, err := CalculatePush(PushBatchInput{Items: []spring.PushInput{item(8), item(12)}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 2 {
		t.Fatalf("results = %d", len(res.Results))
	}
	k8, _ := res.Results[0].Rate.Float()
	k12, _ := res.Results[1].Rate.Float()
	if !(k8 > k12) {
		t.Errorf("fewer coils should be stiffer: %v, %v", k8, k12)
	}
}

func TestCalculatePushReportsItem(t *testing.T) {
	bad := item(8)
	bad.TotalCoils = expr.Num(10)
	_, err := CalculatePush(PushBatchInput{Items: []spring.PushInput{item(8), bad}})
	if !errors.Is(err, calcerr.ErrInvalidArgument) || !strings.HasPrefix(err.Error(), "item 2:") {
		t.Errorf("got %v", err)
	}
	if _, err := CalculatePush(PushBatchInput{}); !errors.Is(err, calcerr.ErrInvalidArgument) {
		t.Errorf("empty batch: %v", err)
	}
}
