package flow

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "opentraceflow"

// Metrics are the run counters of a DB. They live on their own registry so
// several runs in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	StageDuration     *prometheus.HistogramVec
	NetsClassified    *prometheus.CounterVec
	CircuitsTraced    prometheus.Counter
	PathsFound        prometheus.Counter
	TruncatedSearches prometheus.Counter
	SpacingRules      prometheus.Gauge
}

// NewMetrics registers the flow metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each pipeline stage in seconds",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"stage"},
		),
		NetsClassified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "nets_classified_total",
				Help:      "Nets flagged by the classifier, by class",
			},
			[]string{"class"},
		),
		CircuitsTraced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "circuits_traced_total",
			Help:      "Circuits searched for current paths",
		}),
		PathsFound: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "current_paths_total",
			Help:      "Current paths found across all circuits",
		}),
		TruncatedSearches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "truncated_searches_total",
			Help:      "Circuits whose path search hit the traversal budget",
		}),
		SpacingRules: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "same_layer_spacing_rules",
			Help:      "Same-layer spacing rules registered on the technology",
		}),
	}
}

// Registry exposes the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the metrics in the Prometheus text format.
func (m *Metrics) WriteTextfile(filename string) error {
	if err := prometheus.WriteToTextfile(filename, m.registry); err != nil {
		return fmt.Errorf("flow: write metrics: %w", err)
	}
	return nil
}
