package plugin

import (
	"fmt"
	"sort"
	"strings"

	"archq/internal/evaluation"
	"archq/internal/qualitymodel"
)

// ConfigQuestion describes a single configuration prompt for an exporter.
type ConfigQuestion struct {
	Key     string
	Prompt  string
	Type    string // "text"
	Default string
}

// Exporter is the interface every archq result exporter must implement.
type Exporter interface {
	// Name returns the exporter's canonical short identifier (e.g. "markdown").
	Name() string

	// Configure returns the questions the exporter needs answered before it can run.
	Configure() ([]ConfigQuestion, error)

	// Export writes res using the provided config key/value pairs into
	// outputDir.
	Export(res *evaluation.Result, qm *qualitymodel.QualityModel, config map[string]string, outputDir string) error
}

// Registry maps exporter names to exporters.
type Registry map[string]Exporter

// NewRegistry registers exps under their names. A later exporter with the
// same name replaces an earlier one.
func NewRegistry(exps ...Exporter) Registry {
	r := make(Registry, len(exps))
	for _, e := range exps {
		r[e.Name()] = e
	}
	return r
}

// Names returns the registered names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the named exporter.
func (r Registry) Get(name string) (Exporter, error) {
	e, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("unknown exporter %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return e, nil
}

// Answer returns config[key], falling back to the question's default when
// the answer is blank.
func Answer(questions []ConfigQuestion, config map[string]string, key string) string {
	if v := strings.TrimSpace(config[key]); v != "" {
		return v
	}
	for _, q := range questions {
		if q.Key == key {
			return q.Default
		}
	}
	return ""
}
