package evaluation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"archq/internal/measure"
)

// Assessments of a quality aspect. Consumers receive these hyphenated
// labels, matching the impact weight names.
const (
	AssessmentPositive         = "positive"
	AssessmentSlightlyPositive = "slightly-positive"
	AssessmentNeutral          = "neutral"
	AssessmentSlightlyNegative = "slightly-negative"
	AssessmentNegative         = "negative"
	AssessmentMixed            = "mixed"
)

var (
	// ErrNoImplementation marks a catalog measure without a registered
	// function.
	ErrNoImplementation = errors.New("no implementation registered")
	// ErrPanicked marks a measure or factor whose computation panicked.
	ErrPanicked = errors.New("computation panicked")
)

// Entry is one evaluated measure, factor or aspect. Result is a number,
// a category label or n/a.
type Entry struct {
	ID     string        `yaml:"id"`
	Name   string        `yaml:"name"`
	Result measure.Value `yaml:"result"`
}

// ImpactEdge is an impact of the catalog as reported to consumers.
type ImpactEdge struct {
	SourceID string `yaml:"sourceId"`
	Weight   string `yaml:"weight"`
	Type     string `yaml:"type"`
	TargetID string `yaml:"targetId"`
}

// MeasureError records a measure or factor that failed and was reported
// as n/a.
type MeasureError struct {
	ID  string
	Err error
}

func (e *MeasureError) Error() string {
	return fmt.Sprintf("%s: %v", e.ID, e.Err)
}

func (e *MeasureError) Unwrap() error { return e.Err }

// Result is the outcome of one Evaluate call. Entries keep catalog order.
// Factor results are the factors' own evaluations; a factor without one
// reports what the impacts of other factors give it. Aspect results are
// the Assessment labels or n/a.
type Result struct {
	RunID    uuid.UUID       `yaml:"runId"`
	System   string          `yaml:"system"`
	Measures []Entry         `yaml:"measures"`
	Factors  []Entry         `yaml:"factors"`
	Aspects  []Entry         `yaml:"aspects"`
	Impacts  []ImpactEdge    `yaml:"impacts"`
	Errors   []*MeasureError `yaml:"-"`
}

func find(entries []Entry, id string) (measure.Value, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e.Result, true
		}
	}
	return measure.Value{}, false
}

func (r *Result) Measure(id string) (measure.Value, bool) { return find(r.Measures, id) }
func (r *Result) Factor(id string) (measure.Value, bool)  { return find(r.Factors, id) }
func (r *Result) Aspect(id string) (measure.Value, bool)  { return find(r.Aspects, id) }

// Err joins all recorded failures, or returns nil.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}
