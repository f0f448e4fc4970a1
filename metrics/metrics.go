// Package metrics records smoke-test results as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Criss1210/tarea-4/framework"
	"github.com/Criss1210/tarea-4/report"
)

const (
	MetricsNamespace = "smoke"

	resultCompleted = "completed"
	resultFailed    = "failed"
	resultSkipped   = "skipped"
)

// Recorder collects metrics for one run on its own registry. It implements framework.Observer.
type Recorder struct {
	registry *prometheus.Registry

	stepsTotal       *prometheus.CounterVec
	stepDuration     *prometheus.GaugeVec
	suiteErrorsTotal prometheus.Counter
	runDuration      prometheus.Gauge
	runSuccess       prometheus.Gauge
	runTimestamp     prometheus.Gauge
}

// NewRecorder creates a Recorder. runID is attached to every metric as a constant label.
func NewRecorder(runID string) *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	labels := prometheus.Labels{"run_id": runID}

	return &Recorder{
		registry: registry,
		stepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Name:        "steps_total",
			Help:        "Number of steps by result",
			ConstLabels: labels,
		}, []string{"result"}),
		stepDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   MetricsNamespace,
			Name:        "step_duration_seconds",
			Help:        "Duration of each step that ran",
			ConstLabels: labels,
		}, []string{"step", "result"}),
		suiteErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Name:        "suite_errors_total",
			Help:        "Number of failures outside any step",
			ConstLabels: labels,
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   MetricsNamespace,
			Name:        "run_duration_seconds",
			Help:        "Duration of the run",
			ConstLabels: labels,
		}),
		runSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   MetricsNamespace,
			Name:        "run_success",
			Help:        "1 if every step completed, 0 otherwise",
			ConstLabels: labels,
		}),
		runTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   MetricsNamespace,
			Name:        "run_finished_timestamp_seconds",
			Help:        "Unix time at which the run finished",
			ConstLabels: labels,
		}),
	}
}

// Registry returns the registry holding the run's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) StepRecorded(result framework.StepResult) {
	outcome := resultCompleted
	switch {
	case result.Skipped:
		r.stepsTotal.WithLabelValues(resultSkipped).Inc()
		return
	case result.Status != report.StatusCompleted:
		outcome = resultFailed
	}
	r.stepsTotal.WithLabelValues(outcome).Inc()
	r.stepDuration.WithLabelValues(result.ID.Name, outcome).Set(result.Duration.Seconds())
}

func (r *Recorder) RunFinished(results framework.Results, elapsed time.Duration) {
	r.suiteErrorsTotal.Add(float64(len(results.SuiteErrors)))
	r.runDuration.Set(elapsed.Seconds())
	if results.OK() {
		r.runSuccess.Set(1)
	} else {
		r.runSuccess.Set(0)
	}
	r.runTimestamp.SetToCurrentTime()
}

// WriteTextfile writes the metrics in the text exposition format, for collection by a node
// exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
