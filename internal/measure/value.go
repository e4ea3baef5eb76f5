// Package measure implements the metrics computed from a model.System.
//
// Every measure is a pure function of its subject and the System. A result
// is a number, a category label, or n/a when the measure does not apply
// (no qualifying entities, an empty population). Empty inputs never panic
// and never produce NaN or Inf. The only errors are dangling references in
// a malformed graph.
package measure

import (
	"math"
	"strconv"

	"archq/internal/model"
)

// NA is the textual form of an inapplicable result.
const NA = "n/a"

type valueKind uint8

const (
	kindNA valueKind = iota
	kindNumber
	kindCategory
)

// Value is the result of a measure. The zero Value is n/a.
type Value struct {
	kind  valueKind
	num   float64
	label string
}

// Number returns a numeric Value. NaN and infinities become n/a.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: kindNumber, num: f}
}

// NotApplicable returns the n/a Value.
func NotApplicable() Value { return Value{} }

// Category returns a categorical Value. An empty or "n/a" label is n/a.
func Category(label string) Value {
	if label == "" || label == NA {
		return Value{}
	}
	return Value{kind: kindCategory, label: label}
}

func (v Value) IsNA() bool       { return v.kind == kindNA }
func (v Value) IsNumber() bool   { return v.kind == kindNumber }
func (v Value) IsCategory() bool { return v.kind == kindCategory }

// Float returns the number and whether v is numeric.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == kindNumber
}

// Label returns the category label and whether v is categorical.
func (v Value) Label() (string, bool) {
	return v.label, v.kind == kindCategory
}

func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'g', 6, 64)
	case kindCategory:
		return v.label
	}
	return NA
}

// MarshalYAML writes numbers as YAML numbers and everything else as
// strings.
func (v Value) MarshalYAML() (any, error) {
	if v.kind == kindNumber {
		return v.num, nil
	}
	return v.String(), nil
}

// ratio divides and maps an empty denominator to n/a.
func ratio(num, den int) Value {
	if den == 0 {
		return NotApplicable()
	}
	return Number(float64(num) / float64(den))
}

// ratioOrZero divides and maps an empty denominator to 0.
func ratioOrZero(num, den int) Value {
	if den == 0 {
		return Number(0)
	}
	return Number(float64(num) / float64(den))
}

func mean(xs []float64) Value {
	if len(xs) == 0 {
		return NotApplicable()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return Number(sum / float64(len(xs)))
}

// ---------------------------------------------------------------------------
// Function shapes
// ---------------------------------------------------------------------------

// SystemFunc computes a system-wide measure.
type SystemFunc func(sys *model.System) (Value, error)

// ComponentFunc computes a measure of one component.
type ComponentFunc func(sys *model.System, c *model.Component) (Value, error)

// PairFunc computes a measure of an ordered component pair.
type PairFunc func(sys *model.System, a, b *model.Component) (Value, error)

// TraceFunc computes a measure of one request trace.
type TraceFunc func(sys *model.System, t *model.RequestTrace) (Value, error)
