package sim

import (
	"context"
	"sync"

	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/rng"
)

// Ensemble runs independent replicas of one parameter set. Replica i draws
// from stream (seed, i), so results do not depend on scheduling.
type Ensemble struct {
	params  dynamo.Params
	build   IntegratorFactory
	metrics func() []dynamo.Metric
	numRuns int
	seed    uint64
}

func NewEnsemble(params dynamo.Params, build IntegratorFactory, numRuns int, seed uint64) *Ensemble {
	if build == nil {
		build = LangevinFactory
	}
	return &Ensemble{params: params, build: build, numRuns: numRuns, seed: seed}
}

// WithMetrics installs a constructor called once per replica so metric
// state is never shared between goroutines.
func (e *Ensemble) WithMetrics(fn func() []dynamo.Metric) *Ensemble {
	e.metrics = fn
	return e
}

func (e *Ensemble) Run(ctx context.Context, x0 dynamo.ParticleState, cfg Config) ([]*Result, error) {
	if err := e.params.Validate(); err != nil {
		return nil, err
	}
	if e.numRuns < 1 {
		return nil, &dynamo.ParamError{Name: "runs", Value: e.numRuns, Reason: "must be at least 1"}
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			src := rng.New(e.seed, uint64(idx))
			s := New(e.params, e.build(e.params, src))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, x0, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
