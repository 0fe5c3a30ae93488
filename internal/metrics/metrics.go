// Package metrics records reap progress as Prometheus metrics and
// exports them once the invocation ends.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/altinukshini/gha-reaper/internal/model"
	"github.com/altinukshini/gha-reaper/internal/reaper"
)

const namespace = "gha_reaper"

var _ reaper.Observer = (*Recorder)(nil)

// Recorder is a reaper.Observer backed by its own registry.
type Recorder struct {
	registry *prometheus.Registry

	repositories    prometheus.Counter
	runsFetched     prometheus.Counter
	fetchFailures   prometheus.Counter
	candidates      prometheus.Counter
	timestampErrors prometheus.Counter
	rows            *prometheus.CounterVec
	duration        prometheus.Gauge
	lastSuccess     prometheus.Gauge
	info            *prometheus.GaugeVec
}

func New(version string) *Recorder {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	r := &Recorder{
		registry:        prometheus.NewRegistry(),
		repositories:    counter("repositories_total", "Repositories processed."),
		runsFetched:     counter("runs_fetched_total", "Workflow runs returned by the listing endpoint."),
		fetchFailures:   counter("fetch_failures_total", "Repositories whose run listing stopped early."),
		candidates:      counter("stop_candidates_total", "Runs selected for cancellation."),
		timestampErrors: counter("timestamp_errors_total", "Runs skipped because their start time could not be parsed."),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellations_total",
			Help:      "Audit rows by outcome.",
		}, []string{"outcome"}),
		duration:    gauge("last_duration_seconds", "Wall time of the last invocation."),
		lastSuccess: gauge("last_success_timestamp_seconds", "Unix time the last invocation finished without a fatal error."),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information.",
		}, []string{"version"}),
	}
	r.registry.MustRegister(
		r.repositories, r.runsFetched, r.fetchFailures, r.candidates, r.timestampErrors,
		r.rows, r.duration, r.lastSuccess, r.info,
	)
	r.info.WithLabelValues(version).Set(1)
	return r
}

func (r *Recorder) RepositoryStarted(string) {
	r.repositories.Inc()
}

func (r *Recorder) RunsFetched(_ string, count int, err error) {
	r.runsFetched.Add(float64(count))
	if err != nil {
		r.fetchFailures.Inc()
	}
}

func (r *Recorder) CandidatesSelected(_ string, count int, errs []error) {
	r.candidates.Add(float64(count))
	r.timestampErrors.Add(float64(len(errs)))
}

func (r *Recorder) RowAppended(row model.AuditRow) {
	switch {
	case row.DryRun:
		r.rows.WithLabelValues("dry_run").Inc()
	case row.WasStopped:
		r.rows.WithLabelValues("stopped").Inc()
	default:
		r.rows.WithLabelValues("failed").Inc()
	}
}

// Finish records the invocation's duration and, when err is nil, its
// completion time.
func (r *Recorder) Finish(started, finished time.Time, err error) {
	r.duration.Set(finished.Sub(started).Seconds())
	if err == nil {
		r.lastSuccess.Set(float64(finished.Unix()))
	}
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// Push replaces the metrics of job (and grouping) on a Pushgateway.
func (r *Recorder) Push(ctx context.Context, url, job string, grouping map[string]string) error {
	p := push.New(url, job).Gatherer(r.registry)
	for name, value := range grouping {
		p = p.Grouping(name, value)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
