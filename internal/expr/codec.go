package expr

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes concrete values as numbers and deferred ones as their
// expression string. Infinities have no JSON number form and encode as
// "+Inf" / "-Inf".
func (v Value) MarshalJSON() ([]byte, error) {
	if f, ok := v.Float(); ok {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return json.Marshal(strconv.FormatFloat(f, 'g', -1, 64))
		}
		return json.Marshal(f)
	}
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts a number or a symbol name.
func (v *Value) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*v = Num(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("value must be a number or a symbol name: %s", string(b))
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// UnmarshalYAML accepts a number or a symbol name.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: value must be a scalar", n.Line)
	}
	parsed, err := Parse(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*v = parsed
	return nil
}

// Parse reads a number or an identifier (letters, digits and underscores,
// starting with a letter).
func Parse(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Num(f), nil
	}
	if !isIdent(s) {
		return Value{}, fmt.Errorf("value %q is neither a number nor a symbol name", s)
	}
	return Sym(s), nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
