// Package expr provides the numeric type used by every calculator formula.
//
// A Value is either concrete (a float64) or deferred: an expression tree built
// from named symbols. Arithmetic on two concrete operands folds immediately;
// any deferred operand makes the result deferred, so formulas can be written
// once and evaluated later by binding the symbols.
//
//	d := expr.Sym("d")
//	area := expr.Num(math.Pi / 4).Mul(d.Pow(2))
//	v, _ := area.Eval(map[string]float64{"d": 16}) // 201.06...
package expr

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrUnbound is returned by Eval when the expression references a symbol
// that has no value in the environment.
var ErrUnbound = errors.New("unbound symbol")

type op uint8

const (
	opSym op = iota
	opAdd
	opSub
	opMul
	opDiv
	opNeg
	opPow
	opSqrt
	opAbs
)

type node struct {
	op   op
	name string  // opSym
	exp  float64 // opPow
	args []Value
}

// Value is a concrete number or a deferred expression. The zero Value is the
// concrete number 0.
type Value struct {
	f    float64
	tree *node
}

// Num returns a concrete value.
func Num(f float64) Value { return Value{f: f} }

// Sym returns a deferred value standing for the named symbol.
func Sym(name string) Value {
	return Value{tree: &node{op: opSym, name: name}}
}

// Float returns the concrete number and true, or 0 and false when deferred.
func (v Value) Float() (float64, bool) {
	if v.tree != nil {
		return 0, false
	}
	return v.f, true
}

// IsConcrete reports whether v holds a plain number.
func (v Value) IsConcrete() bool { return v.tree == nil }

func unary(o op, a Value, exp float64) Value {
	return Value{tree: &node{op: o, exp: exp, args: []Value{a}}}
}

func binary(o op, a, b Value) Value {
	return Value{tree: &node{op: o, args: []Value{a, b}}}
}

// Add returns v + w.
func (v Value) Add(w Value) Value {
	if v.tree == nil && w.tree == nil {
		return Num(v.f + w.f)
	}
	if v.tree == nil && v.f == 0 {
		return w
	}
	if w.tree == nil && w.f == 0 {
		return v
	}
	return binary(opAdd, v, w)
}

// Sub returns v - w.
func (v Value) Sub(w Value) Value {
	if v.tree == nil && w.tree == nil {
		return Num(v.f - w.f)
	}
	if w.tree == nil && w.f == 0 {
		return v
	}
	return binary(opSub, v, w)
}

// Mul returns v * w.
func (v Value) Mul(w Value) Value {
	if v.tree == nil && w.tree == nil {
		return Num(v.f * w.f)
	}
	if v.tree == nil && v.f == 1 {
		return w
	}
	if w.tree == nil && w.f == 1 {
		return v
	}
	return binary(opMul, v, w)
}

// Div returns v / w. Concrete division by zero follows IEEE 754.
func (v Value) Div(w Value) Value {
	if v.tree == nil && w.tree == nil {
		return Num(v.f / w.f)
	}
	if w.tree == nil && w.f == 1 {
		return v
	}
	return binary(opDiv, v, w)
}

// Neg returns -v.
func (v Value) Neg() Value {
	if v.tree == nil {
		return Num(-v.f)
	}
	return unary(opNeg, v, 0)
}

// Pow returns v raised to p.
func (v Value) Pow(p float64) Value {
	if v.tree == nil {
		return Num(math.Pow(v.f, p))
	}
	if p == 1 {
		return v
	}
	return unary(opPow, v, p)
}

// Sqrt returns the square root of v.
func (v Value) Sqrt() Value {
	if v.tree == nil {
		return Num(math.Sqrt(v.f))
	}
	return unary(opSqrt, v, 0)
}

// Abs returns |v|.
func (v Value) Abs() Value {
	if v.tree == nil {
		return Num(math.Abs(v.f))
	}
	return unary(opAbs, v, 0)
}

// Scale returns k * v.
func (v Value) Scale(k float64) Value { return Num(k).Mul(v) }

// Symbols returns the sorted, de-duplicated symbol names referenced by v.
func (v Value) Symbols() []string {
	seen := map[string]bool{}
	v.collect(seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (v Value) collect(seen map[string]bool) {
	if v.tree == nil {
		return
	}
	if v.tree.op == opSym {
		seen[v.tree.name] = true
		return
	}
	for _, a := range v.tree.args {
		a.collect(seen)
	}
}

// Bind substitutes the symbols present in env and folds every subtree that
// becomes concrete. Symbols missing from env stay deferred.
func (v Value) Bind(env map[string]float64) Value {
	if v.tree == nil {
		return v
	}
	n := v.tree
	if n.op == opSym {
		if f, ok := env[n.name]; ok {
			return Num(f)
		}
		return v
	}
	args := make([]Value, len(n.args))
	for i, a := range n.args {
		args[i] = a.Bind(env)
	}
	switch n.op {
	case opAdd:
		return args[0].Add(args[1])
	case opSub:
		return args[0].Sub(args[1])
	case opMul:
		return args[0].Mul(args[1])
	case opDiv:
		return args[0].Div(args[1])
	case opNeg:
		return args[0].Neg()
	case opPow:
		return args[0].Pow(n.exp)
	case opSqrt:
		return args[0].Sqrt()
	case opAbs:
		return args[0].Abs()
	}
	return v
}

// Eval returns the number v evaluates to under env.
func (v Value) Eval(env map[string]float64) (float64, error) {
	b := v.Bind(env)
	if f, ok := b.Float(); ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnbound, strings.Join(b.Symbols(), ", "))
}

// String renders v as an infix expression.
func (v Value) String() string {
	if v.tree == nil {
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	n := v.tree
	switch n.op {
	case opSym:
		return n.name
	case opAdd:
		return "(" + n.args[0].String() + " + " + n.args[1].String() + ")"
	case opSub:
		return "(" + n.args[0].String() + " - " + n.args[1].String() + ")"
	case opMul:
		return n.args[0].String() + "*" + n.args[1].String()
	case opDiv:
		return n.args[0].String() + "/" + wrap(n.args[1])
	case opNeg:
		return "-" + wrap(n.args[0])
	case opPow:
		return wrap(n.args[0]) + "^" + strconv.FormatFloat(n.exp, 'g', -1, 64)
	case opSqrt:
		return "sqrt(" + n.args[0].String() + ")"
	case opAbs:
		return "|" + n.args[0].String() + "|"
	}
	return "?"
}

func wrap(v Value) string {
	if v.tree == nil || v.tree.op == opSym {
		return v.String()
	}
	s := v.String()
	if strings.HasPrefix(s, "(") {
		return s
	}
	return "(" + s + ")"
}

// Sum adds all values.
func Sum(vs ...Value) Value {
	var out Value
	for _, v := range vs {
		out = out.Add(v)
	}
	return out
}

// Product multiplies all values.
func Product(vs ...Value) Value {
	out := Num(1)
	for _, v := range vs {
		out = out.Mul(v)
	}
	return out
}

// Floats returns the concrete numbers of vs, or false if any is deferred.
func Floats(vs ...Value) ([]float64, bool) {
	out := make([]float64, len(vs))
	for i, v := range vs {
		f, ok := v.Float()
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
