// Package reactiveprom exports reactive.Runtime statistics to Prometheus.
package reactiveprom

import (
	"github.com/delaneyj/reactivestate/reactive"
	"github.com/prometheus/client_golang/prometheus"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "reactive").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are added to every metric, useful to tell runtimes apart.
	ConstLabels prometheus.Labels
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// Collector reads a runtime's Stats on every scrape. Stats is safe to call
// from the scraping goroutine, so nothing else needs to be synchronized.
type Collector struct {
	rt *reactive.Runtime

	targets    *prometheus.Desc
	effects    *prometheus.Desc
	pauseDepth *prometheus.Desc
	pending    *prometheus.Desc

	triggers      *prometheus.Desc
	runs          *prometheus.Desc
	skippedWrites *prometheus.Desc
	flushes       *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for rt. Register it with a prometheus.Registerer.
//
// Metrics exported, with the default namespace:
//   - reactive_targets: Gauge of wrapped objects and arrays
//   - reactive_effects: Gauge of live effects
//   - reactive_pause_depth: Gauge of unmatched pauses
//   - reactive_pending_effects: Gauge of effects waiting for a flush
//   - reactive_triggers_total: Counter of writes that reached the registry
//   - reactive_effect_runs_total: Counter of effect body executions
//   - reactive_skipped_writes_total: Counter of writes dropped as unchanged
//   - reactive_flushes_total: Counter of non-empty flushes
func NewCollector(rt *reactive.Runtime, opts ...Option) *Collector {
	cfg := Config{Namespace: "reactive"}
	for _, opt := range opts {
		opt(&cfg)
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(cfg.Namespace, cfg.Subsystem, name),
			help, nil, cfg.ConstLabels,
		)
	}

	return &Collector{
		rt:            rt,
		targets:       desc("targets", "Number of wrapped objects and arrays"),
		effects:       desc("effects", "Number of live effects"),
		pauseDepth:    desc("pause_depth", "Number of unmatched pauses"),
		pending:       desc("pending_effects", "Number of effects waiting for a flush"),
		triggers:      desc("triggers_total", "Total number of writes that reached the dependency registry"),
		runs:          desc("effect_runs_total", "Total number of effect body executions"),
		skippedWrites: desc("skipped_writes_total", "Total number of writes dropped because the value did not change"),
		flushes:       desc("flushes_total", "Total number of flushes that ran queued effects"),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.targets
	ch <- c.effects
	ch <- c.pauseDepth
	ch <- c.pending
	ch <- c.triggers
	ch <- c.runs
	ch <- c.skippedWrites
	ch <- c.flushes
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.rt.Stats()

	gauge := func(d *prometheus.Desc, v int) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}
	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}

	gauge(c.targets, st.Targets)
	gauge(c.effects, st.Effects)
	gauge(c.pauseDepth, st.PauseDepth)
	gauge(c.pending, st.Pending)
	counter(c.triggers, st.Triggers)
	counter(c.runs, st.Runs)
	counter(c.skippedWrites, st.SkippedWrites)
	counter(c.flushes, st.Flushes)
}
