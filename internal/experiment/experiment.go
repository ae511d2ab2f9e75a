package experiment

import (
	"context"

	"github.com/san-kum/brownsim/internal/config"
	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/rng"
	"github.com/san-kum/brownsim/internal/sim"
)

// BurnInFraction of the run is excluded from averaged metrics.
const BurnInFraction = 0.2

type Experiment struct {
	cfg        *config.Config
	params     dynamo.Params
	simulator  *sim.Simulator
	randSource *rng.Stream
}

// New resolves cfg against the registry: parameters are validated, the
// integrator is bound to stream (cfg.Seed, cfg.Stream) and the default
// metrics are attached.
func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	build, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	src := rng.New(cfg.Seed, cfg.Stream)
	s := sim.New(params, build(params, src))
	burnIn := BurnInFraction * float64(cfg.Steps) * params.Dt
	for _, m := range reg.DefaultMetrics(params, burnIn) {
		s.AddMetric(m)
	}

	return &Experiment{
		cfg:        cfg,
		params:     params,
		simulator:  s,
		randSource: src,
	}, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.cfg.GetInitState(), sim.Config{
		Steps:         e.cfg.Steps,
		ValidateState: true,
	})
}

func (e *Experiment) Params() dynamo.Params  { return e.params }
func (e *Experiment) Config() *config.Config { return e.cfg }

// Source exposes the run's random stream, mostly for draw accounting.
func (e *Experiment) Source() *rng.Stream { return e.randSource }
