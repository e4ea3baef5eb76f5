// Package evaluation computes measures over a model.System, evaluates the
// product factors of a quality model from them and propagates factor
// results to quality aspects along weighted impacts.
//
// Every call to Evaluate is a fresh computation. A measure or factor that
// fails is reported as n/a and recorded in Result.Errors; it never stops
// its siblings from being evaluated.
package evaluation

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"archq/internal/logging"
	"archq/internal/measure"
	"archq/internal/model"
	"archq/internal/qualitymodel"
)

// Observer is notified of every measure and factor result.
type Observer interface {
	MeasureComputed(id string, v measure.Value, err error, elapsed time.Duration)
	FactorEvaluated(id string, v measure.Value)
}

// Engine evaluates systems against one quality model. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	qm        *qualitymodel.QualityModel
	logger    *log.Logger
	observers []Observer
	exclude   func(factorID string) bool
	lookup    func(id string) (measure.SystemFunc, bool)
}

type Option func(*Engine)

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObserver adds an observer. Observers must be safe for concurrent use
// when the engine is.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithExclude reports excluded factors as n/a without evaluating them.
func WithExclude(fn func(factorID string) bool) Option {
	return func(e *Engine) { e.exclude = fn }
}

// WithMeasures replaces the measure registry.
func WithMeasures(lookup func(id string) (measure.SystemFunc, bool)) Option {
	return func(e *Engine) { e.lookup = lookup }
}

func New(qm *qualitymodel.QualityModel, opts ...Option) *Engine {
	e := &Engine{
		qm:      qm,
		logger:  logging.Discard(),
		exclude: func(string) bool { return false },
		lookup:  measure.Lookup,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate computes all catalog measures, factors and aspects for sys.
func (e *Engine) Evaluate(sys *model.System) *Result {
	res := &Result{RunID: uuid.New(), System: sys.Name}
	logger := e.logger.With("run", res.RunID.String(), "system", sys.Name)

	measures := make(map[string]measure.Value, len(e.qm.Measures))
	for _, m := range e.qm.Measures {
		v, elapsed, err := e.computeMeasure(m.ID, sys)
		if err != nil {
			logger.Warn("measure failed", "measure", m.ID, "err", err)
			res.Errors = append(res.Errors, &MeasureError{ID: m.ID, Err: err})
			v = measure.NotApplicable()
		}
		measures[m.ID] = v
		res.Measures = append(res.Measures, Entry{ID: m.ID, Name: m.Name, Result: v})
		for _, o := range e.observers {
			o.MeasureComputed(m.ID, v, err, elapsed)
		}
	}

	// ranks holds what aspects see of each factor: its own result with the
	// impacts of other factors folded in.
	factors := make(map[string]measure.Value, len(e.qm.Factors))
	ranks := make(map[string]measure.Value, len(e.qm.Factors))
	for _, f := range e.qm.EvaluationOrder() {
		var v measure.Value
		if !e.exclude(f.ID) {
			var err error
			v, err = e.safeFactor(f, measures, factors)
			if err != nil {
				logger.Warn("factor failed", "factor", f.ID, "err", err)
				res.Errors = append(res.Errors, &MeasureError{ID: f.ID, Err: err})
				v = measure.NotApplicable()
			}
			ranks[f.ID] = v
			if !v.IsNumber() {
				ranks[f.ID] = impactedRank(v, e.qm.ImpactsInto(f.ID), ranks)
			}
			if f.Evaluation == nil {
				v = ranks[f.ID]
			}
		}
		factors[f.ID] = v
		for _, o := range e.observers {
			o.FactorEvaluated(f.ID, v)
		}
	}
	for _, f := range e.qm.Factors {
		res.Factors = append(res.Factors, Entry{ID: f.ID, Name: f.Name, Result: factors[f.ID]})
	}

	for _, a := range e.qm.Aspects {
		res.Aspects = append(res.Aspects, Entry{ID: a.ID, Name: a.Name, Result: assess(e.qm.ImpactsInto(a.ID), ranks)})
	}

	for _, imp := range e.qm.Impacts() {
		w := string(imp.Weight)
		if w == "" {
			w = string(qualitymodel.WeightNA)
		}
		res.Impacts = append(res.Impacts, ImpactEdge{SourceID: imp.Source, Weight: w, Type: string(imp.Type), TargetID: imp.Target})
	}

	logger.Debug("evaluation finished",
		"measures", len(res.Measures), "factors", len(res.Factors),
		"aspects", len(res.Aspects), "errors", len(res.Errors))
	return res
}

func (e *Engine) computeMeasure(id string, sys *model.System) (v measure.Value, elapsed time.Duration, err error) {
	fn, ok := e.lookup(id)
	if !ok {
		return measure.NotApplicable(), 0, ErrNoImplementation
	}
	start := time.Now()
	defer func() {
		elapsed = time.Since(start)
		if r := recover(); r != nil {
			v, err = measure.NotApplicable(), fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	v, err = fn(sys)
	return v, 0, err
}

func (e *Engine) safeFactor(f *qualitymodel.ProductFactor, measures, factors map[string]measure.Value) (v measure.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = measure.NotApplicable(), fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	return evaluateFactor(f, measures, factors), nil
}
