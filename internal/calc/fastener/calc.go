// Package fastener computes the stiffness and load sharing of a preloaded
// bolted joint.
package fastener

import (
	"math"

	"Helix/internal/calc/calcerr"
)

const steelE = 207e3

// Layer is one clamped plate of the grip.
type Layer struct {
	ThicknessMM float64 `json:"thickness_mm" yaml:"thickness_mm"`
	ElasticMPa  float64 `json:"elastic_mpa" yaml:"elastic_mpa"`
}

type Input struct {
	DiameterMM float64 `json:"diameter_mm"`
	PitchMM    float64 `json:"pitch_mm"`
	// LengthMM is the bolt length under the head; zero assumes grip plus d.
	LengthMM   float64 `json:"length_mm"`
	ElasticMPa float64 `json:"elastic_mpa"`
	ProofMPa   float64 `json:"proof_mpa"`
	WasherMM   float64 `json:"washer_mm"`
	Layers     []Layer `json:"layers"`
	PreloadN   float64 `json:"preload_n"`
	Permanent  bool    `json:"permanent"`
	LoadN      float64 `json:"load_n"`
}

// Segment is one frustum slice of the member stiffness model.
type Segment struct {
	ThicknessMM float64 `json:"thickness_mm"`
	DiameterMM  float64 `json:"diameter_mm"`
	ElasticMPa  float64 `json:"elastic_mpa"`
	Stiffness   float64 `json:"stiffness_n_per_mm"`
}

type Result struct {
	GripMM             float64   `json:"grip_mm"`
	StressAreaMM2      float64   `json:"stress_area_mm2"`
	MajorAreaMM2       float64   `json:"major_area_mm2"`
	ThreadLengthMM     float64   `json:"thread_length_mm"`
	UnthreadedInGripMM float64   `json:"unthreaded_in_grip_mm"`
	ThreadedInGripMM   float64   `json:"threaded_in_grip_mm"`
	BoltStiffness      float64   `json:"bolt_stiffness_n_per_mm"`
	MemberStiffness    float64   `json:"member_stiffness_n_per_mm"`
	JointConstant      float64   `json:"joint_constant"`
	Segments           []Segment `json:"segments"`

	PreloadN         float64  `json:"preload_n"`
	BoltLoadN        float64  `json:"bolt_load_n"`
	MemberLoadN      float64  `json:"member_load_n"`
	YieldFactor      *float64 `json:"yield_factor,omitempty"`
	LoadFactor       *float64 `json:"load_factor,omitempty"`
	SeparationFactor *float64 `json:"separation_factor,omitempty"`
	Notes            string   `json:"notes"`
}

// StressArea is the metric tensile stress area π/4 (d - 0.9382 p)².
func StressArea(d, pitch float64) float64 {
	dm := d - 0.9382*pitch
	return math.Pi / 4 * dm * dm
}

// ThreadLength is the standard metric thread length for a bolt of length l.
func ThreadLength(d, l float64) float64 {
	switch {
	case l <= 125:
		return 2*d + 6
	case l <= 200:
		return 2*d + 12
	}
	return 2*d + 25
}

// BoltStiffness combines the shank and the threaded portion in series:
// Ad At E / (Ad lt + At ld).
func BoltStiffness(ad, at, e, lt, ld float64) float64 {
	return ad * at * e / (ad*lt + at*ld)
}

// frustum is the stiffness of one 30° cone slice of thickness t whose small
// diameter is D, around a hole of diameter d.
func frustum(e, d, D, t float64) float64 {
	num := (1.155*t + D - d) * (D + d)
	den := (1.155*t + D + d) * (D - d)
	return 0.5774 * math.Pi * e * d / math.Log(num/den)
}

// MemberStiffness models the grip as two 30° frusta growing from the washer
// faces and meeting at mid-grip. Every layer portion inside a frustum is one
// segment; the segments act in series.
func MemberStiffness(layers []Layer, d, washer float64) (float64, []Segment) {
	grip := 0.0
	for _, l := range layers {
		grip += l.ThicknessMM
	}
	half := grip / 2
	tan30 := math.Tan(math.Pi / 6)

	var segs []Segment
	top := 0.0
	for _, l := range layers {
		bottom := top + l.ThicknessMM
		// upper frustum, depth measured from the head
		if top < half {
			z1 := math.Min(bottom, half)
			segs = append(segs, segment(l.ElasticMPa, d, washer+2*top*tan30, z1-top))
		}
		// lower frustum, depth measured from the nut
		if bottom > half {
			z0 := math.Max(top, half)
			segs = append(segs, segment(l.ElasticMPa, d, washer+2*(grip-bottom)*tan30, bottom-z0))
		}
		top = bottom
	}

	compliance := 0.0
	for _, s := range segs {
		compliance += 1 / s.Stiffness
	}
	return 1 / compliance, segs
}

func segment(e, d, D, t float64) Segment {
	return Segment{ThicknessMM: t, DiameterMM: D, ElasticMPa: e, Stiffness: frustum(e, d, D, t)}
}

// JointConstant is the share of an external load carried by the bolt.
func JointConstant(kb, km float64) float64 { return kb / (kb + km) }

func Calculate(in Input) (Result, error) {
	if in.DiameterMM <= 0 || in.PitchMM <= 0 {
		return Result{}, calcerr.Invalid("diameter and pitch must be positive")
	}
	if in.PitchMM >= in.DiameterMM/0.9382 {
		return Result{}, calcerr.Invalid("pitch %g is too coarse for diameter %g", in.PitchMM, in.DiameterMM)
	}
	if len(in.Layers) == 0 {
		return Result{}, calcerr.Invalid("at least one clamped layer is required")
	}
	if in.PreloadN < 0 || in.LoadN < 0 {
		return Result{}, calcerr.Invalid("preload and external load must not be negative")
	}
	if in.ElasticMPa == 0 {
		in.ElasticMPa = steelE
	}
	d := in.DiameterMM
	if in.WasherMM == 0 {
		in.WasherMM = 1.5 * d
	}
	if in.WasherMM <= d {
		return Result{}, calcerr.Invalid("washer face %g must exceed the bolt diameter %g", in.WasherMM, d)
	}

	grip := 0.0
	for i, l := range in.Layers {
		if l.ThicknessMM <= 0 {
			return Result{}, calcerr.Invalid("layer %d: thickness must be positive", i+1)
		}
		if l.ElasticMPa <= 0 {
			return Result{}, calcerr.Invalid("layer %d: elastic modulus must be positive", i+1)
		}
		grip += l.ThicknessMM
	}
	length := in.LengthMM
	if length == 0 {
		length = grip + d
	}
	if length < grip {
		return Result{}, calcerr.Invalid("bolt length %g is shorter than the grip %g", length, grip)
	}

	at := StressArea(d, in.PitchMM)
	ad := math.Pi / 4 * d * d
	lt := ThreadLength(d, length)
	ld := math.Min(math.Max(length-lt, 0), grip)
	kb := BoltStiffness(ad, at, in.ElasticMPa, grip-ld, ld)
	km, segs := MemberStiffness(in.Layers, d, in.WasherMM)
	c := JointConstant(kb, km)

	res := Result{
		GripMM:             grip,
		StressAreaMM2:      at,
		MajorAreaMM2:       ad,
		ThreadLengthMM:     lt,
		UnthreadedInGripMM: ld,
		ThreadedInGripMM:   grip - ld,
		BoltStiffness:      kb,
		MemberStiffness:    km,
		JointConstant:      c,
		Segments:           segs,
		Notes:              "Member stiffness from 30 degree frusta meeting at mid-grip.",
	}
	if in.ProofMPa <= 0 {
		return res, nil
	}

	proof := in.ProofMPa * at
	fi := in.PreloadN
	if fi == 0 {
		fi = 0.75 * proof
		if in.Permanent {
			fi = 0.9 * proof
		}
	}
	res.PreloadN = fi
	res.BoltLoadN = c*in.LoadN + fi
	res.MemberLoadN = (1-c)*in.LoadN - fi
	yield := proof / res.BoltLoadN
	res.YieldFactor = &yield
	if in.LoadN > 0 {
		load := (proof - fi) / (c * in.LoadN)
		sep := fi / (in.LoadN * (1 - c))
		res.LoadFactor, res.SeparationFactor = &load, &sep
	}
	return res, nil
}
