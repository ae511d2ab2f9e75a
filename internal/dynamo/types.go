package dynamo

import (
	"fmt"
	"math"
	"strings"
)

type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }
func (v Vec3) Dot(o Vec3) float64   { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }
func (v Vec3) Norm() float64        { return math.Sqrt(v.Dot(v)) }

func (v Vec3) IsValid() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// CloneVecs returns an independent copy of vs.
func CloneVecs(vs []Vec3) []Vec3 {
	c := make([]Vec3, len(vs))
	copy(c, vs)
	return c
}

// ParticleState holds the evolving positions and momenta of N particles.
type ParticleState struct {
	Position []Vec3
	Momentum []Vec3
}

// NewState allocates a zeroed state for n particles.
func NewState(n int) ParticleState {
	return ParticleState{
		Position: make([]Vec3, n),
		Momentum: make([]Vec3, n),
	}
}

// UniformState broadcasts scalar initial conditions to every component of
// every particle.
func UniformState(n int, r, p float64) ParticleState {
	s := NewState(n)
	for i := 0; i < n; i++ {
		s.Position[i] = Vec3{r, r, r}
		s.Momentum[i] = Vec3{p, p, p}
	}
	return s
}

func (s ParticleState) Len() int { return len(s.Position) }

func (s ParticleState) Clone() ParticleState {
	return ParticleState{
		Position: CloneVecs(s.Position),
		Momentum: CloneVecs(s.Momentum),
	}
}

func (s ParticleState) IsValid() bool {
	for i := range s.Position {
		if !s.Position[i].IsValid() {
			return false
		}
	}
	for i := range s.Momentum {
		if !s.Momentum[i].IsValid() {
			return false
		}
	}
	return true
}

// Check verifies that s describes exactly n particles.
func (s ParticleState) Check(n int) error {
	if len(s.Position) != n {
		return &DimensionError{Field: "position", Got: len(s.Position), Want: n}
	}
	if len(s.Momentum) != n {
		return &DimensionError{Field: "momentum", Got: len(s.Momentum), Want: n}
	}
	return nil
}

// WrapConvention selects how positions fold back into the periodic box.
type WrapConvention int

const (
	// WrapModulo folds into [0, box). It is the canonical convention.
	WrapModulo WrapConvention = iota
	// WrapNearest folds to the nearest image in [-box/2, box/2).
	WrapNearest
	// WrapNone leaves positions unconfined.
	WrapNone
)

var wrapNames = map[WrapConvention]string{
	WrapModulo:  "mod",
	WrapNearest: "nearest",
	WrapNone:    "none",
}

func (w WrapConvention) String() string {
	if name, ok := wrapNames[w]; ok {
		return name
	}
	return fmt.Sprintf("wrap(%d)", int(w))
}

// ParseWrap maps a convention name to its value.
func ParseWrap(name string) (WrapConvention, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mod", "modulo":
		return WrapModulo, nil
	case "nearest", "nearest-image", "centered":
		return WrapNearest, nil
	case "none", "free":
		return WrapNone, nil
	}
	return 0, &ParamError{Name: "wrap", Value: name, Reason: "is not a known wrap convention"}
}

// Bounds returns the canonical interval [lo, hi) for a box of edge box.
func (w WrapConvention) Bounds(box float64) (lo, hi float64) {
	switch w {
	case WrapNearest:
		return -box / 2, box / 2
	case WrapNone:
		return math.Inf(-1), math.Inf(1)
	default:
		return 0, box
	}
}

// Params are fixed for the lifetime of a run.
type Params struct {
	Dt          float64
	Gamma       float64
	Temperature float64
	Box         float64
	Particles   int
	// Force is applied to every component of every particle; 0 means no force.
	Force    float64
	Noise    bool
	Periodic bool
	Wrap     WrapConvention
}

func DefaultParams() Params {
	return Params{
		Dt:          0.005,
		Gamma:       0.5,
		Temperature: 1.0,
		Box:         1.0,
		Particles:   1,
		Noise:       true,
		Periodic:    true,
		Wrap:        WrapModulo,
	}
}

// EffectiveWrap is the convention drift actually applies.
func (p Params) EffectiveWrap() WrapConvention {
	if !p.Periodic {
		return WrapNone
	}
	return p.Wrap
}

func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
		ok    bool
		why   string
	}{
		{"dt", p.Dt, p.Dt > 0, "must be positive"},
		{"gamma", p.Gamma, p.Gamma >= 0, "must be non-negative"},
		{"temperature", p.Temperature, p.Temperature >= 0, "must be non-negative"},
		{"box", p.Box, p.Box > 0, "must be positive"},
		{"force", p.Force, true, ""},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ParamError{Name: c.name, Value: c.value, Reason: "must be finite"}
		}
		if !c.ok {
			return &ParamError{Name: c.name, Value: c.value, Reason: c.why}
		}
	}
	if p.Particles < 1 {
		return &ParamError{Name: "particles", Value: p.Particles, Reason: "must be at least 1"}
	}
	if _, ok := wrapNames[p.Wrap]; !ok {
		return &ParamError{Name: "wrap", Value: int(p.Wrap), Reason: "is not a known wrap convention"}
	}
	return nil
}

// Trajectory is the ordered history of a run, one entry per completed step.
type Trajectory struct {
	Positions [][]Vec3
	Momenta   [][]Vec3
	Times     []float64
}

func NewTrajectory(steps int) *Trajectory {
	return &Trajectory{
		Positions: make([][]Vec3, 0, steps),
		Momenta:   make([][]Vec3, 0, steps),
		Times:     make([]float64, 0, steps),
	}
}

// Append records copies of the state so later mutation does not leak in.
func (t *Trajectory) Append(s ParticleState, time float64) {
	t.Positions = append(t.Positions, CloneVecs(s.Position))
	t.Momenta = append(t.Momenta, CloneVecs(s.Momentum))
	t.Times = append(t.Times, time)
}

func (t *Trajectory) Len() int { return len(t.Positions) }

// Particles returns N, or 0 for an empty trajectory.
func (t *Trajectory) Particles() int {
	if len(t.Positions) == 0 {
		return 0
	}
	return len(t.Positions[0])
}

// State returns the snapshot at step i.
func (t *Trajectory) State(i int) ParticleState {
	return ParticleState{Position: t.Positions[i], Momentum: t.Momenta[i]}
}

// Final returns the last snapshot. It panics on an empty trajectory.
func (t *Trajectory) Final() ParticleState {
	return t.State(t.Len() - 1)
}

// ByParticle reshapes positions to particles × steps, the layout renderers
// consume.
func (t *Trajectory) ByParticle() [][]Vec3 {
	n := t.Particles()
	walks := make([][]Vec3, n)
	for i := range walks {
		walks[i] = make([]Vec3, t.Len())
		for step := range t.Positions {
			walks[i][step] = t.Positions[step][i]
		}
	}
	return walks
}

// MomentumSeries extracts axis k of particle i from every momentum snapshot.
func (t *Trajectory) MomentumSeries(i, k int) []float64 {
	series := make([]float64, t.Len())
	for step := range t.Momenta {
		series[step] = t.Momenta[step][i][k]
	}
	return series
}

// Integrator advances a state by one timestep in place.
type Integrator interface {
	Step(s *ParticleState)
	Name() string
}

// Metric accumulates a scalar summary over the snapshots of a run.
type Metric interface {
	Name() string
	Observe(s ParticleState, t float64)
	Value() float64
	Reset()
}

// Observer is notified of every completed step.
type Observer interface {
	OnStep(s ParticleState, step int, t float64)
}
