package spring

import (
	"Helix/internal/calc/calcerr"
	"Helix/internal/expr"
)

// supplied treats a concrete zero as absent.
func supplied(v expr.Value) bool {
	f, ok := v.Float()
	return !ok || f != 0
}

func positive(name string, v expr.Value) error {
	if f, ok := v.Float(); ok && !(f > 0) {
		return calcerr.Invalid("%s must be positive, got %g", name, f)
	}
	return nil
}

// Geometry is a wire diameter with either the coil diameter or the spring
// index held fixed. The other one is derived.
type Geometry struct {
	wire       expr.Value
	fixed      expr.Value
	indexFixed bool
}

// NewGeometry takes d plus exactly one of D or C.
func NewGeometry(d, coilDiameter, index expr.Value) (Geometry, error) {
	if !supplied(d) {
		return Geometry{}, calcerr.Invalid("wire diameter is required")
	}
	if err := positive("wire diameter", d); err != nil {
		return Geometry{}, err
	}
	hasD, hasC := supplied(coilDiameter), supplied(index)
	switch {
	case hasD && hasC:
		return Geometry{}, calcerr.Invalid("give either the coil diameter or the spring index, not both")
	case hasD:
		if err := positive("coil diameter", coilDiameter); err != nil {
			return Geometry{}, err
		}
		return Geometry{wire: d, fixed: coilDiameter}, nil
	case hasC:
		if err := positive("spring index", index); err != nil {
			return Geometry{}, err
		}
		return Geometry{wire: d, fixed: index, indexFixed: true}, nil
	}
	return Geometry{}, calcerr.Invalid("coil diameter or spring index is required")
}

func (g Geometry) WireDiameter() expr.Value { return g.wire }

func (g Geometry) CoilDiameter() expr.Value {
	if g.indexFixed {
		return g.fixed.Mul(g.wire)
	}
	return g.fixed
}

func (g Geometry) Index() expr.Value {
	if g.indexFixed {
		return g.fixed
	}
	return g.fixed.Div(g.wire)
}

// IndexFixed reports whether the caller supplied C rather than D.
func (g Geometry) IndexFixed() bool { return g.indexFixed }

func (g *Geometry) setWire(d expr.Value) error {
	if err := positive("wire diameter", d); err != nil {
		return err
	}
	g.wire = d
	return nil
}

// setCoilDiameter fixes D from now on.
func (g *Geometry) setCoilDiameter(D expr.Value) error {
	if err := positive("coil diameter", D); err != nil {
		return err
	}
	g.fixed = D
	g.indexFixed = false
	return nil
}

// rate is Castigliano's k for n active coils; swapping k and n gives the
// inverse relation.
func rate(g Geometry, shearModulus float64, n expr.Value) expr.Value {
	c := g.Index()
	c2 := c.Pow(2)
	return g.wire.Scale(shearModulus).
		Div(c.Pow(3).Scale(8).Mul(n)).
		Mul(c2.Scale(2).Div(c2.Scale(2).Add(expr.Num(1))))
}
