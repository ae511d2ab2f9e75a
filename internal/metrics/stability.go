package metrics

import (
	"github.com/san-kum/brownsim/internal/dynamo"
)

// Containment is the fraction of snapshots in which every position lies in
// the canonical interval of the wrap convention. Unwrapped runs always score 1.
type Containment struct {
	name       string
	box        float64
	wrap       dynamo.WrapConvention
	violations int
	samples    int
}

func NewContainment(params dynamo.Params) *Containment {
	return &Containment{
		name: "containment",
		box:  params.Box,
		wrap: params.EffectiveWrap(),
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(s dynamo.ParticleState, t float64) {
	c.samples++
	if c.wrap == dynamo.WrapNone {
		return
	}
	lo, hi := c.wrap.Bounds(c.box)
	for _, r := range s.Position {
		for _, v := range r {
			if v < lo || v >= hi {
				c.violations++
				return
			}
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}

// MomentumDecay tracks the ratio of the final to the initial mean |p|.
type MomentumDecay struct {
	name    string
	initial float64
	current float64
	samples int
}

func NewMomentumDecay() *MomentumDecay {
	return &MomentumDecay{name: "momentum_decay"}
}

func (m *MomentumDecay) Name() string { return m.name }

func (m *MomentumDecay) Observe(s dynamo.ParticleState, t float64) {
	var sum float64
	for _, p := range s.Momentum {
		sum += p.Norm()
	}
	if s.Len() > 0 {
		sum /= float64(s.Len())
	}
	if m.samples == 0 {
		m.initial = sum
	}
	m.current = sum
	m.samples++
}

func (m *MomentumDecay) Value() float64 {
	if m.samples == 0 || m.initial == 0 {
		return 0
	}
	return m.current / m.initial
}

func (m *MomentumDecay) Reset() {
	m.initial = 0
	m.current = 0
	m.samples = 0
}
