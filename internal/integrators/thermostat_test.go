package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/rng"
)

func TestNoiseVariance_BranchesAgree(t *testing.T) {
	for _, x := range []float64{1e-4, 1e-3} {
		direct := noiseVarianceDirect(x)
		series := noiseVarianceSeries(x)
		if d := math.Abs(direct - series); d > 1e-10 {
			t.Errorf("x=%g: c² branches differ by %g", x, d)
		}
		if d := math.Abs(math.Sqrt(direct) - math.Sqrt(series)); d > 1e-10 {
			t.Errorf("x=%g: c branches differ by %g", x, d)
		}
	}
}

func TestNoiseVariance_Threshold(t *testing.T) {
	at := SeriesThreshold
	if NoiseVariance(at) != noiseVarianceSeries(at) {
		t.Error("threshold itself must use the series")
	}
	above := math.Nextafter(at, 1)
	if NoiseVariance(above) != noiseVarianceDirect(above) {
		t.Error("values above the threshold must use the direct form")
	}
}

func TestNoiseVariance_SmallX(t *testing.T) {
	if NoiseVariance(0) != 0 || NoiseCoefficient(0) != 0 {
		t.Error("zero friction must give zero noise")
	}

	for _, x := range []float64{1e-16, 1e-12, 1e-8, 5e-5} {
		exact := -math.Expm1(-2 * x)
		got := NoiseVariance(x)
		if rel := math.Abs(got-exact) / exact; rel > 1e-12 {
			t.Errorf("x=%g: relative error %g", x, rel)
		}
	}
}

func TestNoiseVariance_LargeX(t *testing.T) {
	if c := NoiseCoefficient(50); math.Abs(c-1) > 1e-15 {
		t.Errorf("strong friction should give c=1, got %v", c)
	}
}

func TestThermostat_NoNoiseDecays(t *testing.T) {
	p := []dynamo.Vec3{{1, -2, 3}}
	got, err := Thermostat(0.1, p, 2.0, 5.0, 1, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	decay := math.Exp(-0.2)
	for k := 0; k < 3; k++ {
		if got[0][k] != p[0][k]*decay {
			t.Errorf("axis %d: got %v, want %v", k, got[0][k], p[0][k]*decay)
		}
	}
}

func TestThermostat_NoNoiseLeavesSourceUntouched(t *testing.T) {
	src := rng.New(1, 0)
	p := []dynamo.Vec3{{1, 1, 1}, {2, 2, 2}}
	if _, err := Thermostat(0.1, p, 1, 1, 2, false, src); err != nil {
		t.Fatal(err)
	}
	if src.Draws() != 0 {
		t.Errorf("noise-free step consumed %d draws", src.Draws())
	}
}

func TestThermostat_DrawOrder(t *testing.T) {
	const n = 4
	p := make([]dynamo.Vec3, n)
	for i := range p {
		p[i] = dynamo.Vec3{float64(i), 1, -1}
	}
	dt, gamma, temp := 0.01, 0.5, 2.0

	src := rng.New(9, 0)
	got, err := Thermostat(dt, p, gamma, temp, n, true, src)
	if err != nil {
		t.Fatal(err)
	}
	if src.Draws() != 3*n {
		t.Errorf("consumed %d draws, want %d", src.Draws(), 3*n)
	}

	ref := rng.New(9, 0)
	x := gamma * dt
	c := math.Sqrt(1 - math.Exp(-2*x))
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			want := p[i][k]*math.Exp(-x) + c*math.Sqrt(temp)*ref.NormFloat64()
			if math.Abs(got[i][k]-want) > 1e-14 {
				t.Errorf("particle %d axis %d: got %v, want %v", i, k, got[i][k], want)
			}
		}
	}
}

func TestThermostat_ZeroTemperatureIsDeterministic(t *testing.T) {
	p := []dynamo.Vec3{{1, 2, 3}}
	got, err := Thermostat(0.1, p, 1, 0, 1, true, rng.New(3, 0))
	if err != nil {
		t.Fatal(err)
	}
	want := p[0].Scale(math.Exp(-0.1))
	if got[0] != want {
		t.Errorf("T=0 step = %v, want %v", got[0], want)
	}
}

func TestThermostat_Errors(t *testing.T) {
	p := make([]dynamo.Vec3, 2)
	if _, err := Thermostat(0.1, p, 1, 1, 3, false, nil); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}
	if _, err := Thermostat(0.1, p, 1, 1, 2, true, nil); !errors.Is(err, dynamo.ErrNoRandomSource) {
		t.Errorf("expected missing source, got %v", err)
	}
}

func TestThermostat_ParallelMatchesSerial(t *testing.T) {
	n := 600
	p := make([]dynamo.Vec3, n)
	for i := range p {
		p[i] = dynamo.Vec3{1, float64(i) / 10, -2}
	}
	serial := make([]dynamo.Vec3, n)
	parallel := make([]dynamo.Vec3, n)
	buf := make([]float64, 3*n)
	thermostat(serial, p, 0.01, 0.7, 1.3, true, rng.New(5, 0), buf, n+1)
	thermostat(parallel, p, 0.01, 0.7, 1.3, true, rng.New(5, 0), buf, 1)
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("particle %d differs: %v vs %v", i, serial[i], parallel[i])
		}
	}
}
