package fatigue

import (
	"math"
	"sort"
	"strings"

	"Helix/internal/calc/calcerr"
	"Helix/internal/expr"
)

type Finish string

const (
	FinishGround    Finish = "ground"
	FinishMachined  Finish = "machined"
	FinishColdDrawn Finish = "cold-drawn"
	FinishHotRolled Finish = "hot-rolled"
	FinishAsForged  Finish = "as-forged"
)

// surfaceFactor holds a and b of ka = a Sut^b with Sut in MPa.
var surfaceFactor = map[Finish][2]float64{
	FinishGround:    {1.58, -0.085},
	FinishMachined:  {4.51, -0.265},
	FinishColdDrawn: {4.51, -0.265},
	FinishHotRolled: {57.7, -0.718},
	FinishAsForged:  {272, -0.995},
}

type StressType string

const (
	StressBending  StressType = "bending"
	StressAxial    StressType = "axial"
	StressTorsion  StressType = "torsion"
	StressMultiple StressType = "multiple"
)

var loadFactor = map[StressType]float64{
	StressBending:  1,
	StressAxial:    0.85,
	StressTorsion:  0.59,
	StressMultiple: 1,
}

type Material string

const (
	MaterialSteel    Material = "steel"
	MaterialCastIron Material = "cast iron"
	MaterialAluminum Material = "aluminum"
	MaterialCopper   Material = "copper"
)

// baseEndurance holds the Se'/Sut ratio and the cap in MPa.
var baseEndurance = map[Material][2]float64{
	MaterialSteel:    {0.5, 700},
	MaterialCastIron: {0.4, 160},
	MaterialAluminum: {0.4, 130},
	MaterialCopper:   {0.4, 100},
}

// reliabilityTable maps reliability in percent to ke.
var reliabilityTable = [][2]float64{
	{50, 1},
	{90, 0.897},
	{95, 0.868},
	{99, 0.814},
	{99.9, 0.753},
	{99.99, 0.702},
	{99.999, 0.659},
	{99.9999, 0.620},
}

// ReliabilityFactor interpolates ke linearly, clamped at the table ends.
func ReliabilityFactor(percent float64) float64 {
	t := reliabilityTable
	if percent <= t[0][0] {
		return t[0][1]
	}
	last := t[len(t)-1]
	if percent >= last[0] {
		return last[1]
	}
	i := sort.Search(len(t), func(i int) bool { return t[i][0] >= percent })
	lo, hi := t[i-1], t[i]
	return lo[1] + (percent-lo[0])*(hi[1]-lo[1])/(hi[0]-lo[0])
}

type EnduranceInput struct {
	SutMPa         expr.Value `json:"sut_mpa"`
	Finish         Finish     `json:"finish"`
	Rotating       bool       `json:"rotating"`
	Stress         StressType `json:"stress_type"`
	DiameterMM     expr.Value `json:"diameter_mm"`
	TemperatureC   float64    `json:"temperature_c"`
	ReliabilityPct float64    `json:"reliability_pct"`
	Material       Material   `json:"material"`
	MiscFactor     expr.Value `json:"misc_factor"`
}

// Endurance is a corrected endurance limit with every Marin factor kept.
type Endurance struct {
	Base        expr.Value `json:"base_mpa"`
	Surface     expr.Value `json:"ka"`
	Size        expr.Value `json:"kb"`
	Load        expr.Value `json:"kc"`
	Temperature expr.Value `json:"kd"`
	Reliability expr.Value `json:"ke"`
	Misc        expr.Value `json:"kf"`
	Limit       expr.Value `json:"se_mpa"`
}

type Factor struct {
	Name  string     `json:"name"`
	Value expr.Value `json:"value"`
}

// Factors lists the base limit and the Marin factors in application order.
func (e Endurance) Factors() []Factor {
	return []Factor{
		{"Se'", e.Base},
		{"ka", e.Surface},
		{"kb", e.Size},
		{"kc", e.Load},
		{"kd", e.Temperature},
		{"ke", e.Reliability},
		{"kf", e.Misc},
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BuildEndurance computes Se = Se' ka kb kc kd ke kf. Empty enums default to
// steel, machined and bending; zero reliability means 50 %.
func BuildEndurance(in EnduranceInput) (Endurance, error) {
	if err := positive("ultimate strength", in.SutMPa); err != nil {
		return Endurance{}, err
	}
	if in.Material == "" {
		in.Material = MaterialSteel
	}
	if in.Finish == "" {
		in.Finish = FinishMachined
	}
	if in.Stress == "" {
		in.Stress = StressBending
	}
	if in.ReliabilityPct == 0 {
		in.ReliabilityPct = 50
	}
	if f, ok := in.MiscFactor.Float(); ok && f == 0 {
		in.MiscFactor = expr.Num(1)
	}

	base, ok := baseEndurance[Material(normalize(string(in.Material)))]
	if !ok {
		return Endurance{}, calcerr.Invalid("unknown material family %q", in.Material)
	}
	ab, ok := surfaceFactor[Finish(normalize(string(in.Finish)))]
	if !ok {
		return Endurance{}, calcerr.Invalid("unknown surface finish %q", in.Finish)
	}
	stress := StressType(normalize(string(in.Stress)))
	kc, ok := loadFactor[stress]
	if !ok {
		return Endurance{}, calcerr.Invalid("unknown stress type %q", in.Stress)
	}
	kb, err := sizeFactor(in.DiameterMM, in.Rotating, stress)
	if err != nil {
		return Endurance{}, err
	}
	kd, err := TemperatureFactor(in.TemperatureC)
	if err != nil {
		return Endurance{}, err
	}

	e := Endurance{
		Base:        in.SutMPa.Scale(base[0]),
		Surface:     in.SutMPa.Pow(ab[1]).Scale(ab[0]),
		Size:        kb,
		Load:        expr.Num(kc),
		Temperature: expr.Num(kd),
		Reliability: expr.Num(ReliabilityFactor(in.ReliabilityPct)),
		Misc:        in.MiscFactor,
	}
	if f, ok := e.Base.Float(); ok && f > base[1] {
		e.Base = expr.Num(base[1])
	}
	e.Limit = expr.Product(e.Base, e.Surface, e.Size, e.Load, e.Temperature, e.Reliability, e.Misc)
	return e, nil
}

// sizeFactor returns kb. A deferred diameter is assumed to fall in the
// 2.79..51 mm band.
func sizeFactor(d expr.Value, rotating bool, stress StressType) (expr.Value, error) {
	if stress == StressAxial {
		return expr.Num(1), nil
	}
	de := d
	if !rotating {
		de = d.Scale(0.370)
	}
	f, ok := de.Float()
	if !ok {
		return de.Pow(-0.107).Scale(1.24), nil
	}
	switch {
	case f <= 0:
		return expr.Value{}, calcerr.Invalid("diameter must be positive for the size factor, got %g", f)
	case f <= 2.79:
		return expr.Num(1), nil
	case f <= 51:
		return expr.Num(1.24 * math.Pow(f, -0.107)), nil
	case f <= 254:
		return expr.Num(1.51 * math.Pow(f, -0.157)), nil
	}
	return expr.Value{}, calcerr.Invalid("effective diameter %g mm is beyond the size factor range", f)
}

// TemperatureFactor returns kd for a temperature in °C.
func TemperatureFactor(celsius float64) (float64, error) {
	tf := celsius*1.8 + 32
	switch {
	case tf < 70:
		return 1, nil
	case tf > 1000:
		return 0, calcerr.Invalid("temperature %g °C is above the 1000 °F limit of the temperature factor", celsius)
	}
	return 0.975 + 0.432e-3*tf - 0.115e-5*tf*tf + 0.104e-8*math.Pow(tf, 3) - 0.595e-12*math.Pow(tf, 4), nil
}
