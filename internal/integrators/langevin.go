package integrators

import (
	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/rng"
)

// Langevin advances a state by one symmetric splitting step:
//
//	kick(dt/2) → drift(dt/2) → thermostat(dt) → drift(dt/2) → kick(dt/2)
//
// The palindromic order makes the scheme time-reversal symmetric; it is
// not interchangeable with any other ordering.
type Langevin struct {
	params   dynamo.Params
	src      rng.Source
	noise    []float64
	minChunk int
}

func NewLangevin(params dynamo.Params, src rng.Source) *Langevin {
	return &Langevin{
		params:   params,
		src:      src,
		minChunk: DefaultMinChunk,
	}
}

// Validate reports a missing random source when noise is enabled.
func (l *Langevin) Validate() error {
	if l.params.Noise && l.src == nil {
		return dynamo.ErrNoRandomSource
	}
	return nil
}

// SetMinChunk sets the particle count below which a step stays serial.
func (l *Langevin) SetMinChunk(n int) {
	if n < 1 {
		n = 1
	}
	l.minChunk = n
}

func (l *Langevin) ensureScratch(n int) {
	if l.params.Noise && len(l.noise) != 3*n {
		l.noise = make([]float64, 3*n)
	}
}

// Step mutates s in place.
func (l *Langevin) Step(s *dynamo.ParticleState) {
	p := l.params
	l.ensureScratch(len(s.Momentum))

	half := p.Dt * 0.5
	wrap := p.EffectiveWrap()

	kick(s.Momentum, s.Momentum, half, p.Force, l.minChunk)
	drift(s.Position, s.Position, s.Momentum, half, p.Box, wrap, l.minChunk)
	thermostat(s.Momentum, s.Momentum, p.Dt, p.Gamma, p.Temperature, p.Noise, l.src, l.noise, l.minChunk)
	drift(s.Position, s.Position, s.Momentum, half, p.Box, wrap, l.minChunk)
	kick(s.Momentum, s.Momentum, half, p.Force, l.minChunk)
}

func (l *Langevin) Name() string { return "langevin" }
