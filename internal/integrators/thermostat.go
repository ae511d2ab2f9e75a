package integrators

import (
	"math"

	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/rng"
)

// SeriesThreshold is the friction-time product at or below which
// 1 - exp(-2x) is evaluated from its Taylor series instead of directly.
const SeriesThreshold = 1e-4

// noiseVarianceDirect evaluates 1 - exp(-2x). It cancels catastrophically
// for small x.
func noiseVarianceDirect(x float64) float64 {
	return 1 - math.Exp(-2*x)
}

// noiseVarianceSeries is 1 - exp(-2x) truncated after the x⁴ term:
// 2x - 2x² + (4/3)x³ - (2/3)x⁴.
func noiseVarianceSeries(x float64) float64 {
	return x * (2 + x*(-2+x*(4.0/3.0+x*(-2.0/3.0))))
}

// NoiseVariance returns c² = 1 - exp(-2x), switching to the series at
// SeriesThreshold. Rounding that leaves c² negative clamps to zero.
func NoiseVariance(x float64) float64 {
	var c2 float64
	if x > SeriesThreshold {
		c2 = noiseVarianceDirect(x)
	} else {
		c2 = noiseVarianceSeries(x)
	}
	if c2 < 0 {
		return 0
	}
	return c2
}

// NoiseCoefficient returns sqrt(1 - exp(-2x)).
func NoiseCoefficient(x float64) float64 {
	return math.Sqrt(NoiseVariance(x))
}

// Thermostat applies friction over duration t and, when noise is enabled,
// the matching Gaussian kick: p*exp(-x) + c*sqrt(T)*η with x = gamma*t.
// Draws are taken particle by particle, x then y then z.
func Thermostat(t float64, p []dynamo.Vec3, gamma, temp float64, n int, noise bool, src rng.Source) ([]dynamo.Vec3, error) {
	if len(p) != n {
		return nil, &dynamo.DimensionError{Field: "momentum", Got: len(p), Want: n}
	}
	if noise && src == nil {
		return nil, dynamo.ErrNoRandomSource
	}
	dst := make([]dynamo.Vec3, n)
	var buf []float64
	if noise {
		buf = make([]float64, 3*n)
	}
	thermostat(dst, p, t, gamma, temp, noise, src, buf, DefaultMinChunk)
	return dst, nil
}

// thermostat writes into dst, which may alias p. buf must hold 3*len(p)
// values when noise is enabled.
func thermostat(dst, p []dynamo.Vec3, t, gamma, temp float64, noise bool, src rng.Source, buf []float64, minChunk int) {
	x := gamma * t
	decay := math.Exp(-x)

	if !noise {
		dynamo.ParallelFor(len(p), minChunk, func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = p[i].Scale(decay)
			}
		})
		return
	}

	// Draw sequentially so the stream order never depends on the split.
	for j := range buf[:3*len(p)] {
		buf[j] = src.NormFloat64()
	}

	sigma := NoiseCoefficient(x) * math.Sqrt(temp)
	dynamo.ParallelFor(len(p), minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			for k := 0; k < 3; k++ {
				dst[i][k] = p[i][k]*decay + sigma*buf[3*i+k]
			}
		}
	})
}
