// Package metrics exposes pipeline run metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"cooling_demand/internal/pipeline"
	"cooling_demand/internal/stats"
)

// Metrics observes pipeline runs. It implements pipeline.Observer.
type Metrics struct {
	scenariosTotal   *prometheus.CounterVec
	scenarioDuration *prometheus.HistogramVec
	runsTotal        prometheus.Counter
	lastRun          prometheus.Gauge
	peakMW           *prometheus.GaugeVec
	energyMWh        *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scenariosTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cooling_scenarios_total",
			Help: "Scenarios processed by outcome.",
		}, []string{"status"}),
		scenarioDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cooling_scenario_duration_seconds",
			Help:    "Time to shift, filter and project one scenario.",
			Buckets: prometheus.DefBuckets,
		}, []string{"scenario"}),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cooling_runs_total",
			Help: "Completed pipeline runs.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cooling_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run.",
		}),
		peakMW: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cooling_peak_demand_mw",
			Help: "Peak projected grid cooling demand of the last run.",
		}, []string{"scenario"}),
		energyMWh: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cooling_energy_mwh",
			Help: "Projected cooling energy over the last run.",
		}, []string{"scenario"}),
	}

	reg.MustRegister(
		m.scenariosTotal,
		m.scenarioDuration,
		m.runsTotal,
		m.lastRun,
		m.peakMW,
		m.energyMWh,
	)
	return m
}

var _ pipeline.Observer = (*Metrics)(nil)

func (m *Metrics) ScenarioDone(label string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.scenariosTotal.WithLabelValues(status).Inc()
	m.scenarioDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// RunDone records a completed run and its per-scenario summaries.
func (m *Metrics) RunDone(at time.Time, summaries []stats.Summary) {
	m.runsTotal.Inc()
	m.lastRun.Set(float64(at.Unix()))

	m.peakMW.Reset()
	m.energyMWh.Reset()
	for _, s := range summaries {
		m.peakMW.WithLabelValues(s.Label).Set(s.PeakMW)
		m.energyMWh.WithLabelValues(s.Label).Set(s.EnergyMWh)
	}
}
