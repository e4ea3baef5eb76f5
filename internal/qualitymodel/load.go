package qualitymodel

// load.go: catalog decoding, validation and factor ordering.
//
// A catalog is rejected when it fails struct validation, when ids collide,
// when an impact, measure or sub-factor reference does not resolve, when an
// evaluation spec is incomplete for its kind, or when factors depend on
// each other in a cycle. A factor depends on the factors it combines and
// on the factors that impact it.

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalidCatalog wraps every catalog consistency failure.
var ErrInvalidCatalog = errors.New("invalid quality model catalog")

// Load parses and validates the built-in catalog.
func Load() (*QualityModel, error) {
	return LoadFrom(bytes.NewReader(catalogYAML))
}

// LoadFrom parses and validates a catalog from r. Unknown YAML fields are
// rejected.
func LoadFrom(r io.Reader) (*QualityModel, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var qm QualityModel
	if err := dec.Decode(&qm); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validate.Struct(&qm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := qm.index(); err != nil {
		return nil, err
	}
	if err := qm.check(); err != nil {
		return nil, err
	}
	if cycles := findCycles(qm.Factors); len(cycles) > 0 {
		return nil, fmt.Errorf("%w: factor cycle %s", ErrInvalidCatalog, strings.Join(cycles, "; "))
	}
	qm.order = evaluationOrder(qm.Factors)
	return &qm, nil
}

// index builds the id lookups. Aspect and factor ids share one namespace
// because impacts may target either.
func (qm *QualityModel) index() error {
	qm.aspectByID = make(map[string]*QualityAspect, len(qm.Aspects))
	qm.factorByID = make(map[string]*ProductFactor, len(qm.Factors))
	qm.measureByID = make(map[string]*Measure, len(qm.Measures))

	for _, a := range qm.Aspects {
		if _, dup := qm.aspectByID[a.ID]; dup {
			return fmt.Errorf("%w: duplicate aspect %q", ErrInvalidCatalog, a.ID)
		}
		qm.aspectByID[a.ID] = a
	}
	for _, f := range qm.Factors {
		if _, dup := qm.factorByID[f.ID]; dup {
			return fmt.Errorf("%w: duplicate factor %q", ErrInvalidCatalog, f.ID)
		}
		if _, clash := qm.aspectByID[f.ID]; clash {
			return fmt.Errorf("%w: factor %q reuses an aspect id", ErrInvalidCatalog, f.ID)
		}
		qm.factorByID[f.ID] = f
	}
	for _, m := range qm.Measures {
		if _, dup := qm.measureByID[m.ID]; dup {
			return fmt.Errorf("%w: duplicate measure %q", ErrInvalidCatalog, m.ID)
		}
		qm.measureByID[m.ID] = m
	}

	qm.impacts = nil
	for _, f := range qm.Factors {
		for i := range f.Impacts {
			f.Impacts[i].Source = f.ID
			qm.impacts = append(qm.impacts, f.Impacts[i])
		}
	}
	return nil
}

// check verifies references and evaluation specs.
func (qm *QualityModel) check() error {
	var errs []error
	for _, f := range qm.Factors {
		for _, imp := range f.Impacts {
			_, isAspect := qm.aspectByID[imp.Target]
			_, isFactor := qm.factorByID[imp.Target]
			if !isAspect && !isFactor {
				errs = append(errs, fmt.Errorf("factor %q impacts unknown target %q", f.ID, imp.Target))
			}
			if imp.Target == f.ID {
				errs = append(errs, fmt.Errorf("factor %q impacts itself", f.ID))
			}
		}
		for _, m := range f.Measures {
			if _, ok := qm.measureByID[m]; !ok {
				errs = append(errs, fmt.Errorf("factor %q lists unknown measure %q", f.ID, m))
			}
		}
		if f.Evaluation != nil {
			if err := qm.checkEvaluation(f); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return nil
}

func (qm *QualityModel) checkEvaluation(f *ProductFactor) error {
	ev := f.Evaluation
	if ev.Kind != EvalCombination {
		if ev.Measure == "" {
			return fmt.Errorf("factor %q: %s evaluation needs a measure", f.ID, ev.Kind)
		}
		if _, ok := qm.measureByID[ev.Measure]; !ok {
			return fmt.Errorf("factor %q evaluates unknown measure %q", f.ID, ev.Measure)
		}
	}

	switch ev.Kind {
	case EvalThreshold:
		if ev.Bounds == nil {
			return fmt.Errorf("factor %q: threshold evaluation needs bounds", f.ID)
		}
		b := *ev.Bounds
		ordered := b.High >= b.Moderate && b.Moderate >= b.Low
		if !ev.HigherIsBetter {
			ordered = b.High <= b.Moderate && b.Moderate <= b.Low
		}
		if !ordered {
			return fmt.Errorf("factor %q: bounds %v/%v/%v are not ordered", f.ID, b.High, b.Moderate, b.Low)
		}
	case EvalMapping:
		if len(ev.Mapping) == 0 {
			return fmt.Errorf("factor %q: mapping evaluation needs a mapping", f.ID)
		}
	case EvalCombination:
		if ev.Operator == "" || len(ev.Factors) == 0 {
			return fmt.Errorf("factor %q: combination needs an operator and factors", f.ID)
		}
		for _, sub := range ev.Factors {
			if _, ok := qm.factorByID[sub]; !ok {
				return fmt.Errorf("factor %q combines unknown factor %q", f.ID, sub)
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Factor dependency graph
// ---------------------------------------------------------------------------

// dependencies maps each factor id to the factors it combines followed by
// the factors impacting it, in catalog order.
func dependencies(factors []*ProductFactor) map[string][]string {
	known := make(map[string]bool, len(factors))
	for _, f := range factors {
		known[f.ID] = true
	}
	graph := make(map[string][]string)
	for _, f := range factors {
		if f.Evaluation != nil && f.Evaluation.Kind == EvalCombination {
			graph[f.ID] = append(graph[f.ID], f.Evaluation.Factors...)
		}
	}
	for _, f := range factors {
		for _, imp := range f.Impacts {
			if known[imp.Target] {
				graph[imp.Target] = append(graph[imp.Target], f.ID)
			}
		}
	}
	return graph
}

// findCycles returns each dependency cycle as "a → b → a", visiting
// factors and their dependencies in sorted order.
func findCycles(factors []*ProductFactor) []string {
	graph := dependencies(factors)
	known := make(map[string]bool)
	for _, f := range factors {
		known[f.ID] = true
	}

	nodes := make([]string, 0, len(known))
	for n := range known {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	// 0 unvisited, 1 on the stack, 2 done.
	color := make(map[string]int)
	var cycles []string
	var path []string

	var dfs func(node string)
	dfs = func(node string) {
		switch color[node] {
		case 2:
			return
		case 1:
			for i, n := range path {
				if n == node {
					cycle := append(append([]string{}, path[i:]...), node)
					cycles = append(cycles, strings.Join(cycle, " → "))
					return
				}
			}
			return
		}
		color[node] = 1
		path = append(path, node)
		next := append([]string{}, graph[node]...)
		sort.Strings(next)
		for _, n := range next {
			if known[n] {
				dfs(n)
			}
		}
		path = path[:len(path)-1]
		color[node] = 2
	}

	for _, n := range nodes {
		if color[n] == 0 {
			dfs(n)
		}
	}
	return cycles
}

// evaluationOrder is a post-order walk in catalog order. The graph is
// known to be acyclic.
func evaluationOrder(factors []*ProductFactor) []*ProductFactor {
	byID := make(map[string]*ProductFactor, len(factors))
	for _, f := range factors {
		byID[f.ID] = f
	}
	graph := dependencies(factors)
	seen := make(map[string]bool, len(factors))
	order := make([]*ProductFactor, 0, len(factors))

	var visit func(f *ProductFactor)
	visit = func(f *ProductFactor) {
		if seen[f.ID] {
			return
		}
		seen[f.ID] = true
		for _, dep := range graph[f.ID] {
			if d, ok := byID[dep]; ok {
				visit(d)
			}
		}
		order = append(order, f)
	}
	for _, f := range factors {
		visit(f)
	}
	return order
}
