package fatigue

import "Helix/internal/expr"

// Load is a cyclic load or stress given as alternating and mean components.
type Load struct {
	Alternating expr.Value `json:"alternating"`
	Mean        expr.Value `json:"mean"`
}

// FromRange converts a max/min pair.
func FromRange(max, min expr.Value) Load {
	return Load{
		Alternating: max.Sub(min).Abs().Scale(0.5),
		Mean:        max.Add(min).Scale(0.5),
	}
}

func (l Load) Max() expr.Value { return l.Mean.Add(l.Alternating) }

func (l Load) Min() expr.Value { return l.Mean.Sub(l.Alternating) }
