package snapcheck

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver implements Observer using Prometheus metrics.
// This is useful if you're already using Prometheus for monitoring.
//
// Example:
//
//	observer := snapcheck.NewPrometheusObserver("my_service", prometheus.DefaultRegisterer)
//	wf := snapcheck.New(snapcheck.WithObserver(observer))
type PrometheusObserver struct {
	runDuration          *prometheus.HistogramVec
	stageDuration        *prometheus.HistogramVec
	rowsRead             *prometheus.CounterVec
	stageErrors          *prometheus.CounterVec
	verificationFailures *prometheus.CounterVec
}

// NewPrometheusObserver creates a Prometheus observer with the given
// namespace. All metrics will be prefixed with "{namespace}_snapcheck_".
func NewPrometheusObserver(namespace string, registerer prometheus.Registerer) *PrometheusObserver {
	if namespace == "" {
		namespace = "snapcheck"
	}

	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapcheck",
			Name:      "run_duration_seconds",
			Help:      "Duration of workflow runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode", "status"},
	)

	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapcheck",
			Name:      "stage_duration_seconds",
			Help:      "Duration of workflow stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage", "status"},
	)

	rowsRead := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapcheck",
			Name:      "rows_read_total",
			Help:      "Total number of rows read during verification stages",
		},
		[]string{"stage"},
	)

	stageErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapcheck",
			Name:      "stage_errors_total",
			Help:      "Total number of stage failures",
		},
		[]string{"stage"},
	)

	verificationFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapcheck",
			Name:      "verification_failures_total",
			Help:      "Total number of row verification failures",
		},
		[]string{"stage"},
	)

	registerer.MustRegister(
		runDuration,
		stageDuration,
		rowsRead,
		stageErrors,
		verificationFailures,
	)

	return &PrometheusObserver{
		runDuration:          runDuration,
		stageDuration:        stageDuration,
		rowsRead:             rowsRead,
		stageErrors:          stageErrors,
		verificationFailures: verificationFailures,
	}
}

func (o *PrometheusObserver) OnRunStart(ctx context.Context, event *RunStartEvent) {
	// Nothing to do on start for Prometheus
}

func (o *PrometheusObserver) OnRunEnd(ctx context.Context, event *RunEndEvent) {
	status := "success"
	if event.Error != nil {
		status = "error"
	}

	o.runDuration.WithLabelValues(string(event.Mode), status).Observe(event.Duration.Seconds())
}

func (o *PrometheusObserver) OnStageStart(ctx context.Context, event *StageStartEvent) {
	// Nothing to do on start for Prometheus
}

func (o *PrometheusObserver) OnStageEnd(ctx context.Context, event *StageEndEvent) {
	status := "success"
	if event.Error != nil {
		status = "error"
	}

	o.stageDuration.WithLabelValues(string(event.Stage), status).Observe(event.Duration.Seconds())

	if event.Rows > 0 {
		o.rowsRead.WithLabelValues(string(event.Stage)).Add(float64(event.Rows))
	}

	if event.Error != nil {
		o.stageErrors.WithLabelValues(string(event.Stage)).Inc()

		var mismatch *MismatchError
		if errors.As(event.Error, &mismatch) {
			o.verificationFailures.WithLabelValues(string(event.Stage)).Inc()
		}
	}
}
