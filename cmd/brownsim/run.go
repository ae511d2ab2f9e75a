package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"

	"github.com/san-kum/brownsim/internal/config"
	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/experiment"
	"github.com/san-kum/brownsim/internal/export"
	"github.com/san-kum/brownsim/internal/optim"
	"github.com/san-kum/brownsim/internal/rng"
	"github.com/san-kum/brownsim/internal/sim"
	"github.com/san-kum/brownsim/internal/storage"
	"github.com/san-kum/brownsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s: n=%d steps=%d dt=%g gamma=%g T=%g\n",
		cfg.Integrator, cfg.Particles, cfg.Steps, cfg.Dt, cfg.Gamma, cfg.Temperature)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	elapsed := time.Since(start)
	slog.Debug("run finished", "elapsed", elapsed, "draws", exp.Source().Draws())

	runID, err := st.Save(cfg, result)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

// renderRun draws a stored run when a run id is given, and a fresh run of
// the resolved configuration otherwise.
func renderRun(cmd *cobra.Command, args []string) error {
	var (
		cfg  *config.Config
		traj *dynamo.Trajectory
	)

	if len(args) == 1 {
		st := storage.New(dataDir)
		meta, err := st.Load(args[0])
		if err != nil {
			return err
		}
		if traj, err = st.LoadTrajectory(args[0]); err != nil {
			return err
		}
		cfg = meta.Config()
		if cmd.Flags().Changed("fname") {
			cfg.Output.FName = fname
		}
		if cmd.Flags().Changed("lw") {
			cfg.Output.LineWidth = lineWidth
		}
	} else {
		var err error
		if cfg, err = resolveConfig(cmd); err != nil {
			return err
		}
		exp, err := experiment.New(cfg, experiment.NewRegistry())
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()
		result, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		traj = result.Trajectory
	}

	params, err := cfg.Params()
	if err != nil {
		return err
	}
	proj, err := export.ParseProjection(projection)
	if err != nil {
		return err
	}

	opts := export.DefaultGIFOptions()
	opts.LineWidth = cfg.Output.LineWidth
	opts.Delay = cfg.Output.FrameDelay
	if cmd.Flags().Changed("delay") {
		opts.Delay = delay
	}
	opts.Stride = stride
	opts.Projection = proj
	opts.Lo, opts.Hi = export.BoundsFor(params)
	if proj == export.ProjectIso {
		opts.Lo, opts.Hi = 0, 0
	}

	name := outPath
	if name == "" {
		name = cfg.GIFName()
	}

	walks := traj.ByParticle()
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err := export.RenderGIF(f, walks, opts); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	slog.Debug("rendered gif", "file", name, "frames", (traj.Len()+stride-1)/max(stride, 1), "elapsed", time.Since(start))
	fmt.Printf("wrote %s\n", name)

	if svgPath != "" {
		projected := make([]plotter.XYs, len(walks))
		for i, walk := range walks {
			projected[i] = proj.Points(walk)
		}
		svg := export.WalksToSVG(projected, opts.Width, opts.Height, nil)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	opts := viz.DefaultOptions()
	if cmd.Flags().Changed("steps") {
		opts.MaxSteps = cfg.Steps
	}
	if cmd.Flags().Changed("per-tick") {
		opts.StepsPerTick = stepsPerTick
	}
	if cmd.Flags().Changed("trails") {
		opts.Trails = trails
	}

	src := rng.New(cfg.Seed, cfg.Stream)
	return viz.Run(viz.NewModel(params, cfg.GetInitState(), src, opts))
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	var names []string
	var ranges [][]float64
	for _, dim := range []struct {
		name   string
		values []float64
	}{
		{"gamma", gammas},
		{"temperature", temps},
		{"dt", dts},
	} {
		if len(dim.values) > 0 {
			names = append(names, dim.name)
			ranges = append(ranges, dim.values)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("sweep: give at least one of --gammas, --temps, --dts")
	}

	reg := experiment.NewRegistry()
	build := func(p map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for k, v := range p {
			if err := cfg.Set(k, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(cfg, reg)
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	best, score, trials, err := optim.NewGridSearch(names, ranges).Search(ctx, build, metricName)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	fmt.Printf("%d trials in %v, minimizing %s\n\n", len(trials), time.Since(start), metricName)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metricName))
	ranked := optim.Ranked(trials)
	for i, t := range ranked {
		if i >= top {
			break
		}
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", t.Params[name])
		}
		fmt.Fprintf(w, "%.6f\n", t.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, t := range trials {
		if t.Err != nil {
			fmt.Printf("failed %v: %v\n", t.Params, t.Err)
		}
	}
	if best != nil {
		fmt.Printf("\nbest: %v (%s=%.6f)\n", best, metricName, score)
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	names := args
	if len(names) == 0 {
		names = reg.ListIntegrators()
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("comparing integrators (n=%d, dt=%g, steps=%d)\n\n", cfg.Particles, cfg.Dt, cfg.Steps)
	fmt.Printf("%-10s  %-12s  %-12s  %-12s  %-10s\n", "integrator", "temperature", "equip_err", "containment", "time_ms")
	fmt.Println(strings.Repeat("-", 64))

	for _, name := range names {
		run := cfg.Clone()
		run.Integrator = name

		exp, err := experiment.New(run, reg)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(ctx)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		m := result.Metrics
		fmt.Printf("%-10s  %12.6f  %12.2e  %12.4f  %10.2f\n",
			name, m["temperature"], m["equipartition_error"], m["containment"],
			float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	if numRuns < 1 {
		return fmt.Errorf("ensemble: --runs must be at least 1")
	}

	reg := experiment.NewRegistry()
	build, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}
	burnIn := experiment.BurnInFraction * float64(cfg.Steps) * params.Dt

	ens := sim.NewEnsemble(params, build, numRuns, cfg.Seed).WithMetrics(func() []dynamo.Metric {
		return reg.DefaultMetrics(params, burnIn)
	})

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := ens.Run(ctx, cfg.GetInitState(), sim.Config{Steps: cfg.Steps, ValidateState: true})
	if err != nil {
		return fmt.Errorf("ensemble: %w", err)
	}
	fmt.Printf("%d replicas of %d steps in %v (seed %d, streams 0..%d)\n\n",
		len(results), cfg.Steps, time.Since(start), cfg.Seed, len(results)-1)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTD\tMIN\tMAX")
	for _, name := range reg.ListMetrics() {
		values := make([]float64, len(results))
		for i, r := range results {
			values[i] = r.Metrics[name]
		}
		mean, std := stat.MeanStdDev(values, nil)
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\t%.6f\n", name, mean, std, sorted[0], sorted[len(sorted)-1])
	}
	return w.Flush()
}
