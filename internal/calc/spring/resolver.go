package spring

import (
	"log/slog"

	"Helix/internal/calc/calcerr"
	"Helix/internal/expr"
)

// Role names the quantity of the coupled set {Na, Nb, k} that was supplied
// and from which the other two are derived.
type Role int

const (
	RoleActiveCoils Role = iota + 1
	RoleBodyCoils
	RoleRate
)

func (r Role) String() string {
	switch r {
	case RoleActiveCoils:
		return "active coils"
	case RoleBodyCoils:
		return "body coils"
	case RoleRate:
		return "rate"
	}
	return "unknown"
}

// coupling holds the variant-specific relations between the coupled
// quantities under the current geometry.
type coupling interface {
	rateFor(active expr.Value) expr.Value
	activeForRate(k expr.Value) expr.Value
	bodyFor(active expr.Value) expr.Value
	activeForBody(body expr.Value) expr.Value
	freeLengthFor(active, body, k expr.Value) expr.Value
}

// Resolver keeps {Na, Nb, k} consistent with exactly one ground truth.
// Dependents are recomputed eagerly on every change; the free length is
// derived lazily unless overridden.
type Resolver struct {
	c    coupling
	role Role

	active, body, k expr.Value

	freeLength expr.Value
	fresh      bool
	override   bool
}

// newResolver takes exactly one of active, body and k; the others must be
// absent (concrete zero).
func newResolver(c coupling, active, body, k expr.Value) (*Resolver, error) {
	r := &Resolver{c: c}
	n := 0
	for _, v := range []struct {
		role Role
		v    expr.Value
	}{{RoleActiveCoils, active}, {RoleBodyCoils, body}, {RoleRate, k}} {
		if supplied(v.v) {
			n++
			r.role = v.role
		}
	}
	if n != 1 {
		return nil, calcerr.Invalid("ambiguous or unsolvable system: give exactly one of active coils, body coils and rate, got %d", n)
	}
	var err error
	switch r.role {
	case RoleActiveCoils:
		err = r.SetActiveCoils(active)
	case RoleBodyCoils:
		err = r.SetBodyCoils(body)
	case RoleRate:
		err = r.SetRate(k)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Resolver) Role() Role { return r.role }

func (r *Resolver) ActiveCoils() expr.Value { return r.active }

func (r *Resolver) BodyCoils() expr.Value { return r.body }

func (r *Resolver) Rate() expr.Value { return r.k }

// GroundTruth returns the value of the current role.
func (r *Resolver) GroundTruth() expr.Value {
	switch r.role {
	case RoleBodyCoils:
		return r.body
	case RoleRate:
		return r.k
	}
	return r.active
}

func (r *Resolver) SetActiveCoils(v expr.Value) error {
	if err := positive("active coils", v); err != nil {
		return err
	}
	r.role = RoleActiveCoils
	r.active = v
	r.derive()
	return nil
}

// SetBodyCoils sets Nb; for push springs this is the total coil count.
func (r *Resolver) SetBodyCoils(v expr.Value) error {
	if err := positive("body coils", v); err != nil {
		return err
	}
	r.role = RoleBodyCoils
	r.body = v
	r.derive()
	return nil
}

func (r *Resolver) SetRate(v expr.Value) error {
	if err := positive("rate", v); err != nil {
		return err
	}
	r.role = RoleRate
	r.k = v
	r.derive()
	return nil
}

// derive recomputes both dependents from the ground truth and marks the free
// length stale.
func (r *Resolver) derive() {
	switch r.role {
	case RoleActiveCoils:
		r.k = r.c.rateFor(r.active)
		r.body = r.c.bodyFor(r.active)
	case RoleBodyCoils:
		r.active = r.c.activeForBody(r.body)
		r.k = r.c.rateFor(r.active)
	case RoleRate:
		r.active = r.c.activeForRate(r.k)
		r.body = r.c.bodyFor(r.active)
	}
	r.fresh = false
	slog.Debug("resolved coil set",
		"role", r.role.String(),
		"active", r.active.String(),
		"body", r.body.String(),
		"rate", r.k.String(),
	)
}

// Invalidate re-derives the dependents after a geometry change and drops a
// free-length override.
func (r *Resolver) Invalidate() {
	r.override = false
	r.derive()
}

func (r *Resolver) FreeLength() expr.Value {
	if r.override || r.fresh {
		return r.freeLength
	}
	r.freeLength = r.c.freeLengthFor(r.active, r.body, r.k)
	r.fresh = true
	return r.freeLength
}

// SetFreeLength overrides the derived free length until the next geometry
// change. A concrete zero restores the derived value.
func (r *Resolver) SetFreeLength(v expr.Value) error {
	if !supplied(v) {
		r.override = false
		r.fresh = false
		return nil
	}
	if err := positive("free length", v); err != nil {
		return err
	}
	r.freeLength = v
	r.override = true
	return nil
}

// FreeLengthOverridden reports whether the free length was set explicitly.
func (r *Resolver) FreeLengthOverridden() bool { return r.override }
