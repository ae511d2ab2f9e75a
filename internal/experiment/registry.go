package experiment

import (
	"sort"

	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/integrators"
	"github.com/san-kum/brownsim/internal/metrics"
	"github.com/san-kum/brownsim/internal/rng"
	"github.com/san-kum/brownsim/internal/sim"
)

// MetricFactory builds a fresh metric for one run. burnIn is in time units.
type MetricFactory func(params dynamo.Params, burnIn float64) dynamo.Metric

type Registry struct {
	integrators map[string]sim.IntegratorFactory
	metrics     map[string]MetricFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]sim.IntegratorFactory),
		metrics:     make(map[string]MetricFactory),
	}

	r.integrators["langevin"] = sim.LangevinFactory
	r.integrators["euler"] = func(params dynamo.Params, src rng.Source) dynamo.Integrator {
		return integrators.NewEuler(params, src)
	}

	r.metrics["temperature"] = func(_ dynamo.Params, burnIn float64) dynamo.Metric {
		return metrics.NewTemperature(burnIn)
	}
	r.metrics["equipartition_error"] = func(params dynamo.Params, burnIn float64) dynamo.Metric {
		return metrics.NewEquipartitionError(params.Temperature, burnIn)
	}
	r.metrics["containment"] = func(params dynamo.Params, _ float64) dynamo.Metric {
		return metrics.NewContainment(params)
	}
	r.metrics["momentum_decay"] = func(dynamo.Params, float64) dynamo.Metric {
		return metrics.NewMomentumDecay()
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (sim.IntegratorFactory, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, &dynamo.ParamError{Name: "integrator", Value: name, Reason: "is not registered"}
	}
	return fn, nil
}

func (r *Registry) GetMetric(name string, params dynamo.Params, burnIn float64) (dynamo.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, &dynamo.ParamError{Name: "metric", Value: name, Reason: "is not registered"}
	}
	return fn(params, burnIn), nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListMetrics() []string     { return sortedKeys(r.metrics) }

// DefaultMetrics returns one instance of every registered metric.
func (r *Registry) DefaultMetrics(params dynamo.Params, burnIn float64) []dynamo.Metric {
	out := make([]dynamo.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name](params, burnIn))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
