package reporting

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports the live-run Prometheus gauges/counters SPEC_FULL.md §4
// names, generalizing the teacher's criterion-evaluation Prometheus client
// from consuming metrics to producing them.
type Metrics struct {
	Iterations   prometheus.Counter
	Temperature  prometheus.Gauge
	Cost         prometheus.Gauge
	BestCost     prometheus.Gauge
	PeakTemp     prometheus.Gauge
	registry     *prometheus.Registry
}

// NewMetrics registers a fresh set of run gauges/counters on a private
// registry (never the global default, so multiple runs in one process
// don't collide).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "floorplanner_sa_iteration_total",
			Help: "Total simulated-annealing iterations run.",
		}),
		Temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "floorplanner_sa_temperature",
			Help: "Current simulated-annealing temperature.",
		}),
		Cost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "floorplanner_sa_cost",
			Help: "Current candidate layout cost.",
		}),
		BestCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "floorplanner_sa_best_cost",
			Help: "Best accepted layout cost so far.",
		}),
		PeakTemp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "floorplanner_thermal_peak_temperature",
			Help: "Peak thermal-map temperature of the current best layout.",
		}),
		registry: reg,
	}
	reg.MustRegister(m.Iterations, m.Temperature, m.Cost, m.BestCost, m.PeakTemp)
	return m
}

// Handler returns the HTTP handler serving this Metrics' registry at
// /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on addr. It runs until the
// server errors or the process exits; callers typically launch it in a
// goroutine from the CLI's run command.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
