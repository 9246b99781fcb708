package batch

import (
	"fmt"

	"Helix/internal/calc/calcerr"
	"Helix/internal/calc/spring"
)

type PushBatchInput struct {
	Items []spring.PushInput `json:"items" yaml:"items"`
}

type PushBatchResult struct {
	Results []spring.PushResult `json:"results"`
}

// CalculatePush evaluates every design; the first failing item aborts the
// batch.
func CalculatePush(in PushBatchInput) (PushBatchResult, error) {
	if len(in.Items) == 0 {
		return PushBatchResult{}, calcerr.Invalid("no items")
	}
	out := PushBatchResult{Results: make([]spring.PushResult, 0, len(in.Items))}
	for i, item := range in.Items {
		res, err := spring.CalculatePush(item)
		if err != nil {
			return PushBatchResult{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}
