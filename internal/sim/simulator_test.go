package sim

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/integrators"
	"github.com/san-kum/brownsim/internal/rng"
)

type countingMetric struct {
	observed int
	lastTime float64
}

func (m *countingMetric) Name() string { return "count" }
func (m *countingMetric) Observe(_ dynamo.ParticleState, t float64) {
	m.observed++
	m.lastTime = t
}
func (m *countingMetric) Value() float64 { return float64(m.observed) }
func (m *countingMetric) Reset()         { m.observed = 0 }

type recordingObserver struct {
	steps []int
}

func (o *recordingObserver) OnStep(_ dynamo.ParticleState, step int, _ float64) {
	o.steps = append(o.steps, step)
}

func referenceParams() dynamo.Params {
	return dynamo.Params{
		Dt: 0.005, Gamma: 0.5, Temperature: 1, Box: 1, Particles: 1,
		Noise: true, Periodic: true, Wrap: dynamo.WrapModulo,
	}
}

var _ = Describe("Simulate", func() {
	ctx := context.Background()

	It("returns one in-box snapshot per step for the reference run", func() {
		params := referenceParams()
		traj, err := Simulate(ctx, params, dynamo.NewState(1), 1000, rng.New(123, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Len()).To(Equal(1000))
		Expect(traj.Times[0]).To(BeNumerically("~", params.Dt, 1e-15))
		Expect(traj.Times[999]).To(BeNumerically("~", 5.0, 1e-9))

		for i, snap := range traj.Positions {
			for _, r := range snap {
				for k := 0; k < 3; k++ {
					Expect(r[k]).To(And(BeNumerically(">=", 0), BeNumerically("<", 1)),
						"snapshot %d axis %d", i, k)
				}
			}
		}
	})

	It("is deterministic for a fixed seed", func() {
		params := referenceParams()
		params.Particles = 4
		x0 := dynamo.UniformState(4, 0.5, 0)

		a, err := Simulate(ctx, params, x0, 200, rng.New(7, 0))
		Expect(err).NotTo(HaveOccurred())
		b, err := Simulate(ctx, params, x0, 200, rng.New(7, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Positions).To(Equal(b.Positions))
		Expect(a.Momenta).To(Equal(b.Momenta))

		c, err := Simulate(ctx, params, x0, 200, rng.New(8, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Momenta).NotTo(Equal(a.Momenta))
	})

	It("accelerates linearly under a constant force without a thermostat", func() {
		params := dynamo.Params{
			Dt: 0.005, Gamma: 0, Temperature: 0, Box: 1, Particles: 1,
			Force: 1, Noise: false, Periodic: true,
		}
		traj, err := Simulate(ctx, params, dynamo.NewState(1), 400, nil)
		Expect(err).NotTo(HaveOccurred())
		for i := range traj.Momenta {
			want := float64(i+1) * params.Dt
			for k := 0; k < 3; k++ {
				Expect(traj.Momenta[i][0][k]).To(BeNumerically("~", want, 1e-9))
			}
		}
	})

	It("does not mutate the initial state", func() {
		params := referenceParams()
		x0 := dynamo.UniformState(1, 0.25, 0.1)
		ref := x0.Clone()
		_, err := Simulate(ctx, params, x0, 50, rng.New(1, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(x0).To(Equal(ref))
	})

	It("returns an empty trajectory for zero steps", func() {
		traj, err := Simulate(ctx, referenceParams(), dynamo.NewState(1), 0, rng.New(1, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Len()).To(BeZero())
	})

	DescribeTable("rejects invalid input before stepping",
		func(mutate func(*dynamo.Params), x0 dynamo.ParticleState, steps int, src rng.Source, target error) {
			params := referenceParams()
			mutate(&params)
			traj, err := Simulate(ctx, params, x0, steps, src)
			Expect(traj).To(BeNil())
			Expect(errors.Is(err, target)).To(BeTrue(), "got %v", err)
		},
		Entry("zero box", func(p *dynamo.Params) { p.Box = 0 }, dynamo.NewState(1), 10, rng.New(1, 0), dynamo.ErrInvalidParameter),
		Entry("negative dt", func(p *dynamo.Params) { p.Dt = -0.1 }, dynamo.NewState(1), 10, rng.New(1, 0), dynamo.ErrInvalidParameter),
		Entry("no particles", func(p *dynamo.Params) { p.Particles = 0 }, dynamo.NewState(0), 10, rng.New(1, 0), dynamo.ErrInvalidParameter),
		Entry("negative temperature", func(p *dynamo.Params) { p.Temperature = -1 }, dynamo.NewState(1), 10, rng.New(1, 0), dynamo.ErrInvalidParameter),
		Entry("negative steps", func(p *dynamo.Params) {}, dynamo.NewState(1), -1, rng.New(1, 0), dynamo.ErrInvalidParameter),
		Entry("state size mismatch", func(p *dynamo.Params) { p.Particles = 3 }, dynamo.NewState(2), 10, rng.New(1, 0), dynamo.ErrDimensionMismatch),
		Entry("missing random source", func(p *dynamo.Params) {}, dynamo.NewState(1), 10, nil, dynamo.ErrNoRandomSource),
	)
})

var _ = Describe("Simulator", func() {
	It("feeds metrics and observers once per step", func() {
		params := referenceParams()
		s := New(params, LangevinFactory(params, rng.New(1, 0)))
		m := &countingMetric{}
		obs := &recordingObserver{}
		s.AddMetric(m)
		s.AddObserver(obs)

		res, err := s.Run(context.Background(), dynamo.NewState(1), Config{Steps: 25})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(25))
		Expect(res.Metrics).To(HaveKeyWithValue("count", 25.0))
		Expect(m.lastTime).To(BeNumerically("~", 25*params.Dt, 1e-12))
		Expect(obs.steps).To(HaveLen(25))
		Expect(obs.steps[0]).To(Equal(0))
		Expect(obs.steps[24]).To(Equal(24))
	})

	It("stops on a canceled context without a partial result", func() {
		params := referenceParams()
		s := New(params, LangevinFactory(params, rng.New(1, 0)))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := s.Run(ctx, dynamo.NewState(1), Config{Steps: 10})
		Expect(res).To(BeNil())
		Expect(errors.Is(err, dynamo.ErrContextCanceled)).To(BeTrue())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	DescribeTable("fails fast when noise has no random source",
		func(build IntegratorFactory) {
			params := referenceParams()
			obs := &recordingObserver{}
			s := New(params, build(params, nil))
			s.AddObserver(obs)

			res, err := s.Run(context.Background(), dynamo.NewState(1), Config{Steps: 10})
			Expect(res).To(BeNil())
			Expect(errors.Is(err, dynamo.ErrNoRandomSource)).To(BeTrue(), "got %v", err)
			Expect(obs.steps).To(BeEmpty())
		},
		Entry("langevin", LangevinFactory),
		Entry("euler", IntegratorFactory(func(p dynamo.Params, src rng.Source) dynamo.Integrator {
			return integrators.NewEuler(p, src)
		})),
	)

	It("reports non-finite states when validation is enabled", func() {
		params := referenceParams()
		params.Dt = 1
		params.Force = 1e308
		params.Noise = false
		params.Periodic = false
		s := New(params, LangevinFactory(params, nil))

		_, err := s.Run(context.Background(), dynamo.NewState(1), Config{Steps: 100, ValidateState: true})
		var stepErr StepError
		Expect(errors.As(err, &stepErr)).To(BeTrue())
		Expect(stepErr.Step).To(BeNumerically("<", 5))
	})
})

var _ = Describe("Ensemble", func() {
	It("gives every replica its own stream", func() {
		params := referenceParams()
		params.Particles = 2
		ens := NewEnsemble(params, nil, 3, 42).WithMetrics(func() []dynamo.Metric {
			return []dynamo.Metric{&countingMetric{}}
		})

		results, err := ens.Run(context.Background(), dynamo.NewState(2), Config{Steps: 50})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for _, r := range results {
			Expect(r.Metrics["count"]).To(Equal(50.0))
		}
		Expect(results[0].Trajectory.Final()).NotTo(Equal(results[1].Trajectory.Final()))
	})

	It("rejects a non-positive replica count", func() {
		for _, n := range []int{0, -3} {
			results, err := NewEnsemble(referenceParams(), nil, n, 1).Run(context.Background(), dynamo.NewState(1), Config{Steps: 5})
			Expect(results).To(BeNil())
			var perr *dynamo.ParamError
			Expect(errors.As(err, &perr)).To(BeTrue(), "got %v", err)
			Expect(perr.Name).To(Equal("runs"))
		}
	})

	It("is reproducible across runs", func() {
		params := referenceParams()
		a, err := NewEnsemble(params, nil, 4, 9).Run(context.Background(), dynamo.NewState(1), Config{Steps: 30})
		Expect(err).NotTo(HaveOccurred())
		b, err := NewEnsemble(params, nil, 4, 9).Run(context.Background(), dynamo.NewState(1), Config{Steps: 30})
		Expect(err).NotTo(HaveOccurred())
		for i := range a {
			Expect(a[i].Trajectory.Momenta).To(Equal(b[i].Trajectory.Momenta))
		}
	})
})
