package stress

import (
	"math"

	"Helix/internal/calc/calcerr"
	"Helix/internal/expr"
)

type Input struct {
	DiameterMM expr.Value `json:"diameter_mm"`
	NormalN    expr.Value `json:"normal_n"`
	ShearN     expr.Value `json:"shear_n"`
	TorqueNmm  expr.Value `json:"torque_nmm"`
	MomentYNmm expr.Value `json:"moment_y_nmm"`
	MomentZNmm expr.Value `json:"moment_z_nmm"`
	Shape      Shape      `json:"shape"`
}

type Result struct {
	AreaMM2             expr.Value `json:"area_mm2"`
	InertiaMM4          expr.Value `json:"inertia_mm4"`
	PolarInertiaMM4     expr.Value `json:"polar_inertia_mm4"`
	EquivalentMomentNmm expr.Value `json:"equivalent_moment_nmm"`
	NormalMPa           expr.Value `json:"normal_mpa"`
	BendingMPa          expr.Value `json:"bending_mpa"`
	TorsionMPa          expr.Value `json:"torsion_mpa"`
	ShearMPa            expr.Value `json:"shear_mpa"`
	VonMisesMPa         expr.Value `json:"von_mises_mpa"`
	Notes               string     `json:"notes"`
}

// Calculate evaluates a solid round shaft section. The von Mises value is
// taken at the outer fibre, where transverse shear vanishes.
func Calculate(in Input) (Result, error) {
	if d, ok := in.DiameterMM.Float(); ok && d <= 0 {
		return Result{}, calcerr.Invalid("diameter must be positive, got %g", d)
	}
	if in.Shape == "" {
		in.Shape = ShapeCircle
	}

	d := in.DiameterMM
	c := d.Scale(0.5)
	area := d.Pow(2).Scale(math.Pi / 4)
	inertia := c.Pow(4).Scale(math.Pi / 4)
	polar := inertia.Scale(2)
	me := EquivalentMoment(in.MomentYNmm, in.MomentZNmm)

	shear, err := MaxShear(in.ShearN, area, in.Shape)
	if err != nil {
		return Result{}, err
	}
	normal := Uniform(in.NormalN, area)
	bending := Bending(me, inertia, c)
	torsion := Torsion(in.TorqueNmm, c, polar)

	return Result{
		AreaMM2:             area,
		InertiaMM4:          inertia,
		PolarInertiaMM4:     polar,
		EquivalentMomentNmm: me,
		NormalMPa:           normal,
		BendingMPa:          bending,
		TorsionMPa:          torsion,
		ShearMPa:            shear,
		VonMisesMPa:         VonMises(normal.Add(bending), torsion),
		Notes:               "Solid round section; bending about the resultant axis.",
	}, nil
}
