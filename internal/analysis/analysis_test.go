package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/integrators"
	"github.com/san-kum/brownsim/internal/rng"
)

func thermalTrajectory(t *testing.T, params dynamo.Params, steps int, seed uint64) *dynamo.Trajectory {
	t.Helper()
	s := dynamo.NewState(params.Particles)
	init := rng.New(seed, 1000)
	for i := range s.Momentum {
		for k := 0; k < 3; k++ {
			s.Momentum[i][k] = math.Sqrt(params.Temperature) * init.NormFloat64()
		}
	}
	integ := integrators.NewLangevin(params, rng.New(seed, 0))
	traj := dynamo.NewTrajectory(steps)
	for step := 1; step <= steps; step++ {
		integ.Step(&s)
		traj.Append(s, float64(step)*params.Dt)
	}
	return traj
}

func TestEquipartition(t *testing.T) {
	params := dynamo.Params{
		Dt: 0.01, Gamma: 1, Temperature: 1.5, Box: 1, Particles: 1000,
		Noise: true, Periodic: true,
	}
	traj := thermalTrajectory(t, params, 400, 5)

	rep := Equipartition(traj, params.Temperature, 0.995)
	if rep.Samples != 301 {
		t.Errorf("expected 301 snapshots after burn-in, got %d", rep.Samples)
	}
	if rep.MaxRelError > 0.1 {
		t.Errorf("axis variances %v too far from T=%.1f", rep.AxisVariance, params.Temperature)
	}
	if math.Abs(rep.Temperature-params.Temperature) > 0.1 {
		t.Errorf("pooled temperature %.3f", rep.Temperature)
	}
}

func TestEquipartitionEmpty(t *testing.T) {
	rep := Equipartition(dynamo.NewTrajectory(0), 1, 0)
	if rep.Samples != 0 || rep.MaxRelError != 0 {
		t.Errorf("empty trajectory should give an empty report, got %+v", rep)
	}
}

func TestAutocorrelationDecay(t *testing.T) {
	params := dynamo.Params{
		Dt: 0.01, Gamma: 2, Temperature: 1, Box: 1, Particles: 300,
		Noise: true, Periodic: true,
	}
	traj := thermalTrajectory(t, params, 300, 11)

	acf := Autocorrelation(traj, 50)
	if acf[0] != 1 {
		t.Fatalf("C(0) should normalize to 1, got %f", acf[0])
	}
	for _, lag := range []int{10, 25, 50} {
		want := math.Exp(-params.Gamma * float64(lag) * params.Dt)
		if math.Abs(acf[lag]-want) > 0.06 {
			t.Errorf("lag %d: C=%.3f, want ~%.3f", lag, acf[lag], want)
		}
	}
}

func TestUnwrapCrossesBoundary(t *testing.T) {
	traj := dynamo.NewTrajectory(3)
	for step, x := range []float64{0.9, 0.95, 0.02} {
		s := dynamo.UniformState(1, 0, 0)
		s.Position[0][0] = x
		traj.Append(s, float64(step))
	}

	walks := Unwrap(traj, 1, true)
	if got := walks[0][2][0]; math.Abs(got-1.02) > 1e-12 {
		t.Errorf("expected unwrapped x=1.02, got %f", got)
	}

	raw := Unwrap(traj, 1, false)
	if raw[0][2][0] != 0.02 {
		t.Error("unconfined trajectories pass through unchanged")
	}
}

func TestMeanSquaredDisplacementBallistic(t *testing.T) {
	traj := dynamo.NewTrajectory(10)
	for step := 0; step < 10; step++ {
		s := dynamo.NewState(1)
		s.Position[0] = dynamo.Vec3{0.1 * float64(step), 0, 0}
		traj.Append(s, float64(step))
	}
	msd := MeanSquaredDisplacement(traj, 100, false, 5)
	for lag, got := range msd {
		want := 0.01 * float64(lag*lag)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("lag %d: msd %f, want %f", lag, got, want)
		}
	}
}

func TestDiffusionCoefficientFit(t *testing.T) {
	msd := make([]float64, 20)
	for lag := range msd {
		msd[lag] = 0.3 + 6*0.25*float64(lag)*0.1
	}
	if d := DiffusionCoefficient(msd, 0.1, 2); math.Abs(d-0.25) > 1e-9 {
		t.Errorf("expected D=0.25, got %f", d)
	}
	if DiffusionCoefficient(msd[:1], 0.1, 0) != 0 {
		t.Error("a single point has no slope")
	}
}

func TestExpectedDiffusion(t *testing.T) {
	params := dynamo.Params{Gamma: 0.5, Temperature: 1, Box: 2}
	if d := ExpectedDiffusion(params); math.Abs(d-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", d)
	}
	params.Gamma = 0
	if !math.IsInf(ExpectedDiffusion(params), 1) {
		t.Error("frictionless motion is ballistic")
	}
}

func TestPowerSpectrum(t *testing.T) {
	n := 64
	data := make([]float64, n)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*4*float64(i)/float64(n))
	}

	ps := PowerSpectrum(data)
	if len(ps) != n/2+1 {
		t.Fatalf("expected %d bins, got %d", n/2+1, len(ps))
	}
	if ps[0] > 1e-9 {
		t.Errorf("mean should be removed, DC bin = %g", ps[0])
	}
	peak := 0
	for i := range ps {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if peak != 4 {
		t.Errorf("expected peak at bin 4, got %d", peak)
	}

	f := Frequencies(n, 0.5)
	if math.Abs(f[4]-4/(64*0.5)) > 1e-12 {
		t.Errorf("bin 4 frequency %f", f[4])
	}
}

func TestPhasePortrait(t *testing.T) {
	traj := dynamo.NewTrajectory(5)
	for step := 0; step < 5; step++ {
		traj.Append(dynamo.UniformState(2, 0.1*float64(step), -0.2*float64(step)), float64(step))
	}

	portrait := GeneratePhasePortrait(traj, 1, 2)
	if portrait == nil || len(portrait.Points) != 5 {
		t.Fatal("expected five phase points")
	}
	if p := portrait.Points[3]; math.Abs(p.X-0.3) > 1e-12 || math.Abs(p.Y+0.6) > 1e-12 {
		t.Errorf("unexpected point %+v", p)
	}
	if GeneratePhasePortrait(traj, 2, 0) != nil {
		t.Error("out of range particle should give nil")
	}

	art := PhasePortraitToASCII(portrait, 20, 8)
	if strings.Count(art, "\n") != 8 || strings.Count(art, "@") != 5 {
		t.Errorf("unexpected ascii portrait:\n%s", art)
	}
}
