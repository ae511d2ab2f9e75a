package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/brownsim/internal/dynamo"
)

// KineticTemperature returns the mean squared momentum component of s. With
// unit mass this is the instantaneous temperature by equipartition.
func KineticTemperature(s dynamo.ParticleState) float64 {
	if s.Len() == 0 {
		return 0
	}
	comps := make([]float64, 0, 3*s.Len())
	for _, p := range s.Momentum {
		comps = append(comps, p[0]*p[0], p[1]*p[1], p[2]*p[2])
	}
	return stat.Mean(comps, nil)
}

// KineticEnergy returns the total kinetic energy, sum of |p|²/2.
func KineticEnergy(s dynamo.ParticleState) float64 {
	var ke float64
	for _, p := range s.Momentum {
		ke += 0.5 * p.Dot(p)
	}
	return ke
}

// Temperature averages the kinetic temperature over the snapshots after a
// burn-in period.
type Temperature struct {
	name    string
	burnIn  float64
	samples []float64
}

func NewTemperature(burnIn float64) *Temperature {
	return &Temperature{name: "temperature", burnIn: burnIn}
}

func (m *Temperature) Name() string { return m.name }

func (m *Temperature) Observe(s dynamo.ParticleState, t float64) {
	if t < m.burnIn {
		return
	}
	m.samples = append(m.samples, KineticTemperature(s))
}

func (m *Temperature) Value() float64 {
	if len(m.samples) == 0 {
		return 0
	}
	return stat.Mean(m.samples, nil)
}

// StdDev is the standard deviation of the per-snapshot temperatures.
func (m *Temperature) StdDev() float64 {
	if len(m.samples) < 2 {
		return 0
	}
	return stat.StdDev(m.samples, nil)
}

func (m *Temperature) Reset() { m.samples = m.samples[:0] }

// EquipartitionError is |<p²> - T| / T over the observed run, or the
// absolute deviation when T is zero.
type EquipartitionError struct {
	name   string
	target float64
	temp   *Temperature
}

func NewEquipartitionError(target, burnIn float64) *EquipartitionError {
	return &EquipartitionError{
		name:   "equipartition_error",
		target: target,
		temp:   NewTemperature(burnIn),
	}
}

func (m *EquipartitionError) Name() string { return m.name }

func (m *EquipartitionError) Observe(s dynamo.ParticleState, t float64) { m.temp.Observe(s, t) }

func (m *EquipartitionError) Value() float64 {
	got := m.temp.Value()
	diff := got - m.target
	if diff < 0 {
		diff = -diff
	}
	if m.target == 0 {
		return diff
	}
	return diff / m.target
}

func (m *EquipartitionError) Reset() { m.temp.Reset() }
