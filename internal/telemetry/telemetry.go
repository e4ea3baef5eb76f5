// Package telemetry exports evaluation counters in Prometheus format. A
// Collector is an evaluation.Observer; the CLI writes its registry to a
// node-exporter textfile after a run.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"archq/internal/measure"
)

// Measure statuses.
const (
	StatusOK    = "ok"
	StatusNA    = "n/a"
	StatusError = "error"
)

// Collector counts measure and factor results on its own registry.
type Collector struct {
	registry *prometheus.Registry

	measuresComputed *prometheus.CounterVec
	factorResults    *prometheus.CounterVec
	measureDuration  prometheus.Histogram
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		measuresComputed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "archq_measures_computed_total",
			Help: "Measures computed, by outcome",
		}, []string{"status"}),
		factorResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "archq_factor_results_total",
			Help: "Product factor results, by category",
		}, []string{"result"}),
		measureDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "archq_measure_duration_seconds",
			Help:    "Time to compute one measure",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
	}
}

func (c *Collector) MeasureComputed(_ string, v measure.Value, err error, elapsed time.Duration) {
	status := StatusOK
	switch {
	case err != nil:
		status = StatusError
	case v.IsNA():
		status = StatusNA
	}
	c.measuresComputed.WithLabelValues(status).Inc()
	c.measureDuration.Observe(elapsed.Seconds())
}

// FactorEvaluated counts categorical results by label and every numeric
// result as "numeric".
func (c *Collector) FactorEvaluated(_ string, v measure.Value) {
	result := v.String()
	if v.IsNumber() {
		result = "numeric"
	}
	c.factorResults.WithLabelValues(result).Inc()
}

// Registry exposes the collector's registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
