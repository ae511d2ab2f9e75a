package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/integrators"
	"github.com/san-kum/brownsim/internal/rng"
)

type Config struct {
	Steps int
	// ValidateState aborts the run when a snapshot contains NaN or Inf.
	ValidateState bool
}

type Result struct {
	Trajectory *dynamo.Trajectory
	Metrics    map[string]float64
	StepsTaken int
}

// StepError reports the step at which a run became invalid.
type StepError struct {
	Step    int
	Time    float64
	Message string
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

// IntegratorFactory builds an integrator bound to one run's parameters and
// random source.
type IntegratorFactory func(params dynamo.Params, src rng.Source) dynamo.Integrator

func LangevinFactory(params dynamo.Params, src rng.Source) dynamo.Integrator {
	return integrators.NewLangevin(params, src)
}

// validator is implemented by integrators that can detect a bad setup, such
// as a missing random source, before the first step.
type validator interface {
	Validate() error
}

type Simulator struct {
	params     dynamo.Params
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(params dynamo.Params, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		params:     params,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() dynamo.Params { return s.params }

// Run advances x0 by cfg.Steps steps and returns one snapshot per step.
// Parameter errors are reported before any stepping; no partial trajectory
// is ever returned.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.ParticleState, cfg Config) (*Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Trajectory: dynamo.NewTrajectory(cfg.Steps),
		Metrics:    make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	dt := s.params.Dt

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		s.integrator.Step(&x)
		t := float64(i+1) * dt

		if cfg.ValidateState && !x.IsValid() {
			return nil, StepError{Step: i, Time: t, Message: "invalid state (NaN/Inf)"}
		}

		result.Trajectory.Append(x, t)
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, i, t)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validate(x0 dynamo.ParticleState, cfg Config) error {
	if err := s.params.Validate(); err != nil {
		return err
	}
	if cfg.Steps < 0 {
		return &dynamo.ParamError{Name: "steps", Value: cfg.Steps, Reason: "must be non-negative"}
	}
	if v, ok := s.integrator.(validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return x0.Check(s.params.Particles)
}

// Simulate runs the splitting integrator for steps steps from x0.
func Simulate(ctx context.Context, params dynamo.Params, x0 dynamo.ParticleState, steps int, src rng.Source) (*dynamo.Trajectory, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	result, err := New(params, LangevinFactory(params, src)).Run(ctx, x0, Config{Steps: steps})
	if err != nil {
		return nil, err
	}
	return result.Trajectory, nil
}
