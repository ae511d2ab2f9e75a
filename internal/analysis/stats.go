package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/brownsim/internal/dynamo"
)

// EquipartitionReport summarizes momentum statistics per axis.
type EquipartitionReport struct {
	Target       float64
	AxisMean     [3]float64
	AxisVariance [3]float64
	// Temperature is the mean of the three axis variances.
	Temperature float64
	// MaxRelError is max_k |var_k - T|/T, or the absolute error when T is 0.
	MaxRelError float64
	Samples     int
}

// Equipartition pools every momentum component recorded at or after burnIn.
func Equipartition(traj *dynamo.Trajectory, target, burnIn float64) EquipartitionReport {
	rep := EquipartitionReport{Target: target}

	var axes [3][]float64
	for step, snap := range traj.Momenta {
		if traj.Times[step] < burnIn {
			continue
		}
		for _, p := range snap {
			for k := 0; k < 3; k++ {
				axes[k] = append(axes[k], p[k])
			}
		}
		rep.Samples++
	}
	if rep.Samples == 0 {
		return rep
	}

	for k := 0; k < 3; k++ {
		mean, variance := stat.MeanVariance(axes[k], nil)
		if len(axes[k]) < 2 {
			variance = 0
		}
		rep.AxisMean[k] = mean
		rep.AxisVariance[k] = variance

		err := math.Abs(variance - target)
		if target != 0 {
			err /= target
		}
		rep.MaxRelError = math.Max(rep.MaxRelError, err)
	}
	rep.Temperature = floats.Sum(rep.AxisVariance[:]) / 3

	return rep
}

// Autocorrelation returns C(lag)/C(0) for lag in [0, maxLag], averaged over
// particles, axes and time origins. For an Ornstein-Uhlenbeck bath this
// decays as exp(-gamma*lag*dt).
func Autocorrelation(traj *dynamo.Trajectory, maxLag int) []float64 {
	steps := traj.Len()
	if steps == 0 {
		return nil
	}
	if maxLag >= steps {
		maxLag = steps - 1
	}

	acf := make([]float64, maxLag+1)
	counts := make([]float64, maxLag+1)
	n := traj.Particles()

	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			series := traj.MomentumSeries(i, k)
			for lag := 0; lag <= maxLag; lag++ {
				acf[lag] += floats.Dot(series[:steps-lag], series[lag:])
				counts[lag] += float64(steps - lag)
			}
		}
	}

	for lag := range acf {
		acf[lag] /= counts[lag]
	}
	if acf[0] == 0 {
		return acf
	}
	floats.Scale(1/acf[0], acf)
	return acf
}

// Unwrap reconstructs continuous paths from wrapped positions by taking the
// minimum image of every step displacement. The result is particles × steps.
func Unwrap(traj *dynamo.Trajectory, box float64, periodic bool) [][]dynamo.Vec3 {
	if !periodic {
		return traj.ByParticle()
	}

	n := traj.Particles()
	walks := make([][]dynamo.Vec3, n)
	for i := 0; i < n; i++ {
		walks[i] = make([]dynamo.Vec3, traj.Len())
		walks[i][0] = traj.Positions[0][i]
		for step := 1; step < traj.Len(); step++ {
			d := traj.Positions[step][i].Sub(traj.Positions[step-1][i])
			for k := 0; k < 3; k++ {
				d[k] -= box * math.Round(d[k]/box)
			}
			walks[i][step] = walks[i][step-1].Add(d)
		}
	}
	return walks
}

// MeanSquaredDisplacement returns <|r(t0+lag) - r(t0)|²> for lag in
// [0, maxLag], averaged over particles and origins.
func MeanSquaredDisplacement(traj *dynamo.Trajectory, box float64, periodic bool, maxLag int) []float64 {
	walks := Unwrap(traj, box, periodic)
	steps := traj.Len()
	if steps == 0 {
		return nil
	}
	if maxLag >= steps {
		maxLag = steps - 1
	}

	msd := make([]float64, maxLag+1)
	for lag := 1; lag <= maxLag; lag++ {
		var sum float64
		var count int
		for _, walk := range walks {
			for t0 := 0; t0+lag < steps; t0++ {
				d := walk[t0+lag].Sub(walk[t0])
				sum += d.Dot(d)
				count++
			}
		}
		msd[lag] = sum / float64(count)
	}
	return msd
}

// DiffusionCoefficient fits MSD(lag) = a + 6 D lag dt over lags in
// [fromLag, len(msd)) and returns D.
func DiffusionCoefficient(msd []float64, dt float64, fromLag int) float64 {
	if fromLag < 0 {
		fromLag = 0
	}
	if len(msd)-fromLag < 2 {
		return 0
	}
	ts := make([]float64, 0, len(msd)-fromLag)
	for lag := fromLag; lag < len(msd); lag++ {
		ts = append(ts, float64(lag)*dt)
	}
	_, slope := stat.LinearRegression(ts, msd[fromLag:], nil, false)
	return slope / 6
}

// ExpectedDiffusion is the long-time Langevin diffusion coefficient for
// drift velocity p/box: D = T / (gamma box²).
func ExpectedDiffusion(params dynamo.Params) float64 {
	if params.Gamma == 0 {
		return math.Inf(1)
	}
	return params.Temperature / (params.Gamma * params.Box * params.Box)
}
