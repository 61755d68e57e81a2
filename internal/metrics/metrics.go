// Package metrics records the outcome of the most recent run of each mode
// and writes it to a node_exporter textfile so scheduled runs can be
// monitored.
//
// Every value describes a single run. Each mode gets its own textfile so a
// sort run never erases what the last dedupe run reported.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"tidy/internal/report"
)

const namespace = "tidy"

// Recorder holds one registry per observed mode.
type Recorder struct {
	mu    sync.Mutex
	modes map[string]*modeMetrics
}

type modeMetrics struct {
	registry *prometheus.Registry

	files         *prometheus.GaugeVec
	reclaimed     prometheus.Gauge
	runDuration   prometheus.Gauge
	lastRun       prometheus.Gauge
	lastSuccess   *prometheus.GaugeVec
	lastRunFailed prometheus.Gauge
}

func New() *Recorder {
	return &Recorder{modes: make(map[string]*modeMetrics)}
}

// ModePath derives the textfile for mode from the configured base path:
// /var/lib/node_exporter/tidy.prom becomes tidy_sort.prom next to it.
func ModePath(base, mode string) string {
	dir, file := filepath.Split(base)
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	return filepath.Join(dir, stem+"_"+mode+".prom")
}

func newModeMetrics(mode string) *modeMetrics {
	labels := prometheus.Labels{"mode": mode}
	m := &modeMetrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "last_run_files",
				Help:        "Files handled by the most recent run, by outcome.",
				ConstLabels: labels,
			},
			[]string{"status"},
		),
		reclaimed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_reclaimed_bytes",
			Help:        "Bytes freed by the most recent run.",
			ConstLabels: labels,
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "run_duration_seconds",
			Help:        "Wall time of the most recent run.",
			ConstLabels: labels,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the most recent run finished.",
			ConstLabels: labels,
		}),
		// Only present once a run has finished without failures.
		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "last_success_timestamp_seconds",
				Help:        "Unix time the most recent run without failures finished.",
				ConstLabels: labels,
			},
			nil,
		),
		lastRunFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_failed",
			Help:        "1 when the most recent run had failures or aborted.",
			ConstLabels: labels,
		}),
	}
	m.registry.MustRegister(m.files, m.reclaimed, m.runDuration, m.lastRun, m.lastSuccess, m.lastRunFailed)
	return m
}

func (r *Recorder) mode(mode string) *modeMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modes[mode]
	if !ok {
		m = newModeMetrics(mode)
		r.modes[mode] = m
	}
	return m
}

// Observe replaces the values for rep.Mode with those of rep.
func (r *Recorder) Observe(rep *report.Report) {
	if rep == nil {
		return
	}
	m := r.mode(rep.Mode)

	m.files.Reset()
	counts := make(map[report.Status]int)
	for _, e := range rep.Entries {
		counts[e.Status]++
	}
	for status, n := range counts {
		m.files.WithLabelValues(string(status)).Set(float64(n))
	}
	m.reclaimed.Set(float64(rep.Summary().Reclaimed))
	if !rep.Finished.IsZero() {
		m.runDuration.Set(rep.Finished.Sub(rep.Started).Seconds())
		m.lastRun.Set(float64(rep.Finished.Unix()))
	}
	if rep.HasFailures() {
		m.lastRunFailed.Set(1)
		return
	}
	m.lastRunFailed.Set(0)
	if !rep.Finished.IsZero() {
		m.lastSuccess.WithLabelValues().Set(float64(rep.Finished.Unix()))
	}
}

// WriteTextfile atomically replaces the textfile for mode with its current
// values and returns the path written.
func (r *Recorder) WriteTextfile(base, mode string) (string, error) {
	path := ModePath(base, mode)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.mode(mode).registry); err != nil {
		return path, fmt.Errorf("write metrics textfile: %w", err)
	}
	return path, nil
}
