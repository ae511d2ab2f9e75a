package integrators

import (
	"math"

	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/rng"
)

// Euler is the first-order Euler-Maruyama update, kept as a baseline for
// comparing against the splitting scheme:
//
//	p ← p + dt*(f - gamma*p) + sqrt(2*gamma*T*dt)*η
//	r ← wrap(r + dt*p/box)
type Euler struct {
	params dynamo.Params
	src    rng.Source
}

func NewEuler(params dynamo.Params, src rng.Source) *Euler {
	return &Euler{params: params, src: src}
}

func (e *Euler) Validate() error {
	if e.params.Noise && e.src == nil {
		return dynamo.ErrNoRandomSource
	}
	return nil
}

func (e *Euler) Step(s *dynamo.ParticleState) {
	p := e.params
	sigma := 0.0
	if p.Noise {
		sigma = math.Sqrt(2 * p.Gamma * p.Temperature * p.Dt)
	}
	wrap := p.EffectiveWrap()

	for i := range s.Momentum {
		for k := 0; k < 3; k++ {
			mom := s.Momentum[i][k] + p.Dt*(p.Force-p.Gamma*s.Momentum[i][k])
			if p.Noise {
				mom += sigma * e.src.NormFloat64()
			}
			s.Momentum[i][k] = mom
			s.Position[i][k] = Wrap(s.Position[i][k]+p.Dt*(mom/p.Box), p.Box, wrap)
		}
	}
}

func (e *Euler) Name() string { return "euler" }
