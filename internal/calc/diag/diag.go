// Package diag carries advisory design-quality notices. A notice never
// aborts a calculation; it is attached to a valid numeric result.
package diag

import (
	"fmt"
	"log/slog"
)

type Kind string

const (
	KindSpringIndex      Kind = "spring-index"
	KindActiveCoils      Kind = "active-coils"
	KindOverrun          Kind = "overrun"
	KindBuckling         Kind = "buckling"
	KindNaturalFrequency Kind = "natural-frequency"
	KindSetRemoved       Kind = "set-removed"
	KindGeometryChanged  Kind = "geometry-changed"
	KindSolidForce       Kind = "solid-force"
	KindSizingSkipped    Kind = "sizing-skipped"
)

// Notice is one advisory message and the value that triggered it.
type Notice struct {
	Kind    Kind    `json:"kind"`
	Message string  `json:"message"`
	Value   float64 `json:"value"`
}

// List is an ordered set of notices.
type List []Notice

// Add appends a notice and logs it at debug level.
func (l *List) Add(kind Kind, value float64, format string, args ...any) {
	n := Notice{Kind: kind, Message: fmt.Sprintf(format, args...), Value: value}
	*l = append(*l, n)
	slog.Debug("design notice", "kind", string(kind), "value", value, "message", n.Message)
}

// Has reports whether a notice of the given kind is present.
func (l List) Has(kind Kind) bool {
	for _, n := range l {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

// OK reports whether the list is empty.
func (l List) OK() bool { return len(l) == 0 }
