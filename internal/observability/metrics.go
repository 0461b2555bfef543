package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/sosgridgo/internal/sos"
)

// Collector bundles Prometheus metrics for composite model execution.
type Collector struct {
	gatherer prometheus.Gatherer

	Simulations       *prometheus.CounterVec
	SimulationSeconds *prometheus.HistogramVec
	GroupIterations   *prometheus.HistogramVec
	GroupRuns         *prometheus.CounterVec
	Timesteps         *prometheus.CounterVec
	TimestepSeconds   *prometheus.HistogramVec
	LastTimestep      *prometheus.GaugeVec
}

var _ sos.Observer = (*Collector)(nil)

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil. Registering twice against the same registry
// returns collectors bound to the existing metrics.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	simulations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sos_model_simulations_total",
		Help: "Model simulate calls, labeled by composite, model and outcome.",
	}, []string{"composite", "model", "outcome"}), "sos_model_simulations_total")
	if err != nil {
		return nil, err
	}

	simulationSeconds, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sos_model_simulation_duration_seconds",
		Help:    "Duration of one model simulate call in seconds.",
		Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"composite", "model"}), "sos_model_simulation_duration_seconds")
	if err != nil {
		return nil, err
	}

	iterations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sos_group_iterations",
		Help:    "Gauss-Seidel passes a convergence group needed.",
		Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100, 200},
	}, []string{"composite", "group"}), "sos_group_iterations")
	if err != nil {
		return nil, err
	}

	groupRuns, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sos_group_runs_total",
		Help: "Convergence group runs, labeled by whether they converged.",
	}, []string{"composite", "group", "converged"}), "sos_group_runs_total")
	if err != nil {
		return nil, err
	}

	timesteps, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sos_timesteps_total",
		Help: "Composite timesteps simulated, labeled by outcome.",
	}, []string{"composite", "outcome"}), "sos_timesteps_total")
	if err != nil {
		return nil, err
	}

	timestepSeconds, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sos_timestep_duration_seconds",
		Help:    "Duration of one composite timestep in seconds.",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
	}, []string{"composite"}), "sos_timestep_duration_seconds")
	if err != nil {
		return nil, err
	}

	last, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sos_last_timestep",
		Help: "Most recent timestep a composite completed successfully.",
	}, []string{"composite"}), "sos_last_timestep")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:          gatherer,
		Simulations:       simulations,
		SimulationSeconds: simulationSeconds,
		GroupIterations:   iterations,
		GroupRuns:         groupRuns,
		Timesteps:         timesteps,
		TimestepSeconds:   timestepSeconds,
		LastTimestep:      last,
	}, nil
}

// ModelSimulated implements sos.Observer.
func (c *Collector) ModelSimulated(composite, model string, _ int, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	c.Simulations.WithLabelValues(composite, model, outcome(err)).Inc()
	c.SimulationSeconds.WithLabelValues(composite, model).Observe(elapsed.Seconds())
}

// GroupFinished implements sos.Observer. The group label joins the member
// names with "+".
func (c *Collector) GroupFinished(composite string, models []string, _ int, iterations int, converged bool) {
	if c == nil {
		return
	}
	group := groupLabel(models)
	c.GroupIterations.WithLabelValues(composite, group).Observe(float64(iterations))
	c.GroupRuns.WithLabelValues(composite, group, strconv.FormatBool(converged)).Inc()
}

// TimestepFinished implements sos.Observer.
func (c *Collector) TimestepFinished(composite string, timestep int, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	c.Timesteps.WithLabelValues(composite, outcome(err)).Inc()
	c.TimestepSeconds.WithLabelValues(composite).Observe(elapsed.Seconds())
	if err == nil {
		c.LastTimestep.WithLabelValues(composite).Set(float64(timestep))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func groupLabel(models []string) string {
	return strings.Join(models, "+")
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
