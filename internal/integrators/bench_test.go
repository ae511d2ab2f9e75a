package integrators

import (
	"testing"

	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/rng"
)

func benchParams(n int) dynamo.Params {
	params := dynamo.DefaultParams()
	params.Particles = n
	return params
}

func BenchmarkLangevin_N1(b *testing.B) {
	params := benchParams(1)
	integ := NewLangevin(params, rng.New(1, 0))
	s := dynamo.NewState(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integ.Step(&s)
	}
}

func BenchmarkLangevin_N1000(b *testing.B) {
	params := benchParams(1000)
	integ := NewLangevin(params, rng.New(1, 0))
	s := dynamo.NewState(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integ.Step(&s)
	}
}

func BenchmarkLangevin_N100000_Parallel(b *testing.B) {
	params := benchParams(100000)
	integ := NewLangevin(params, rng.New(1, 0))
	s := dynamo.NewState(100000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integ.Step(&s)
	}
}

func BenchmarkEuler_N1000(b *testing.B) {
	params := benchParams(1000)
	integ := NewEuler(params, rng.New(1, 0))
	s := dynamo.NewState(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integ.Step(&s)
	}
}
