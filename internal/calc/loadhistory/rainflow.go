// Package loadhistory reduces a sampled force or stress history to counted
// cycles for Miner's rule and finds its dominant frequency.
package loadhistory

import "math"

// Cycle is one counted rainflow cycle. Count is 1 for a full cycle and 0.5
// for a half cycle left in the residue.
type Cycle struct {
	Range float64 `json:"range"`
	Mean  float64 `json:"mean"`
	Count float64 `json:"count"`
}

func cycle(a, b, count float64) Cycle {
	return Cycle{Range: math.Abs(b - a), Mean: (a + b) / 2, Count: count}
}

// Reversals keeps the turning points of samples. Plateaus collapse to one
// point and monotone runs to their end point.
func Reversals(samples []float64) []float64 {
	var out []float64
	for _, x := range samples {
		n := len(out)
		switch {
		case n == 0:
			out = append(out, x)
		case x == out[n-1]:
		case n == 1:
			out = append(out, x)
		case (out[n-1]-out[n-2])*(x-out[n-1]) > 0:
			out[n-1] = x
		default:
			out = append(out, x)
		}
	}
	return out
}

// Rainflow counts cycles with the three-point method of ASTM E1049. A range
// that includes the starting point counts as a half cycle; the residue left
// at the end counts as half cycles.
func Rainflow(samples []float64) []Cycle {
	var stack []float64
	var out []Cycle
	for _, p := range Reversals(samples) {
		stack = append(stack, p)
		for len(stack) >= 3 {
			n := len(stack)
			x := math.Abs(stack[n-1] - stack[n-2])
			y := math.Abs(stack[n-2] - stack[n-3])
			if x < y {
				break
			}
			if n == 3 {
				out = append(out, cycle(stack[0], stack[1], 0.5))
				stack = stack[1:]
				continue
			}
			out = append(out, cycle(stack[n-3], stack[n-2], 1))
			stack = append(stack[:n-3], stack[n-1])
		}
	}
	for i := 0; i+1 < len(stack); i++ {
		out = append(out, cycle(stack[i], stack[i+1], 0.5))
	}
	return out
}

// Groups merges cycles with the same amplitude and mean into Miner groups
// [count, alternating, mean], in order of first appearance.
func Groups(cycles []Cycle) [][3]float64 {
	type key struct{ alt, mean float64 }
	index := map[key]int{}
	var out [][3]float64
	for _, c := range cycles {
		k := key{c.Range / 2, c.Mean}
		if i, ok := index[k]; ok {
			out[i][0] += c.Count
			continue
		}
		index[k] = len(out)
		out = append(out, [3]float64{c.Count, k.alt, k.mean})
	}
	return out
}
