package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/brownsim/internal/analysis"
	"github.com/san-kum/brownsim/internal/config"
	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/experiment"
	"github.com/san-kum/brownsim/internal/export"
	"github.com/san-kum/brownsim/internal/metrics"
	"github.com/san-kum/brownsim/internal/sim"
	"github.com/san-kum/brownsim/internal/storage"
	"github.com/san-kum/brownsim/internal/viz"
)

func loadRun(runID string) (*storage.RunMetadata, *dynamo.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if traj.Len() == 0 {
		return nil, nil, fmt.Errorf("run %s: no data", runID)
	}
	return meta, traj, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tINTEG\tN\tSTEPS\tDT\tGAMMA\tT\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%g\t%g\t%g\t%d/%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Integrator,
			run.Particles,
			run.Steps,
			run.Dt,
			run.Gamma,
			run.Temperature,
			run.Seed,
			run.Stream,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if particle < 0 || particle >= traj.Particles() {
		return fmt.Errorf("particle %d out of range [0, %d)", particle, traj.Particles())
	}
	if axis < 0 || axis > 2 {
		return fmt.Errorf("axis %d out of range [0, 2]", axis)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d  gamma: %g  T: %g\n", meta.Particles, meta.Gamma, meta.Temperature)
	fmt.Printf("samples: %d\n\n", traj.Len())

	temp := make([]float64, traj.Len())
	pos := make([]float64, traj.Len())
	for i := range temp {
		temp[i] = metrics.KineticTemperature(traj.State(i))
		pos[i] = traj.Positions[i][particle][axis]
	}
	label := "xyz"[axis : axis+1]

	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{temp, fmt.Sprintf("kinetic temperature (target %g)", meta.Temperature)},
		{pos, fmt.Sprintf("%s of particle %d", label, particle)},
		{traj.MomentumSeries(particle, axis), fmt.Sprintf("p%s of particle %d", label, particle)},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if !showPhase && svgPath == "" {
		return nil
	}

	portrait := analysis.GeneratePhasePortrait(traj, particle, axis)
	if showPhase {
		fmt.Printf("phase portrait (%s, p%s):\n", label, label)
		fmt.Println(analysis.PhasePortraitToASCII(portrait, 60, 20))
	}
	if svgPath != "" {
		svg := export.TrajectoryToSVG(portrait.Points, 600, 400, "#00d7ff")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	return nil
}

func statsRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	params, err := meta.Config().Params()
	if err != nil {
		return err
	}

	fmt.Println(viz.HeaderStyle.Render("run " + meta.ID))
	fmt.Printf("n=%d steps=%d dt=%g gamma=%g T=%g box=%g\n\n",
		meta.Particles, traj.Len(), params.Dt, params.Gamma, params.Temperature, params.Box)

	burnIn := experiment.BurnInFraction * traj.Times[traj.Len()-1]
	rep := analysis.Equipartition(traj, params.Temperature, burnIn)

	fmt.Println(viz.HeaderStyle.Render("equipartition"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AXIS\tMEAN\tVAR\tTARGET")
	for k := 0; k < 3; k++ {
		fmt.Fprintf(w, "%s\t%.5f\t%.5f\t%g\n", "xyz"[k:k+1], rep.AxisMean[k], rep.AxisVariance[k], params.Temperature)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("temperature %.5f, max error %.3e over %d samples\n\n", rep.Temperature, rep.MaxRelError, rep.Samples)

	maxLag := min(traj.Len()/4, 400)
	if maxLag < 2 {
		return nil
	}

	acf := analysis.Autocorrelation(traj, maxLag)
	fmt.Println(viz.HeaderStyle.Render("momentum autocorrelation"))
	fmt.Println(viz.Sparkline(acf, 60))
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LAG\tC(lag)\texp(-gamma t)")
	for _, lag := range []int{0, maxLag / 8, maxLag / 4, maxLag / 2, maxLag} {
		if lag >= len(acf) {
			continue
		}
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\n", lag, acf[lag], math.Exp(-params.Gamma*float64(lag)*params.Dt))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	msd := analysis.MeanSquaredDisplacement(traj, params.Box, params.Periodic, maxLag)
	d := analysis.DiffusionCoefficient(msd, params.Dt, maxLag/2)
	fmt.Println(viz.HeaderStyle.Render("diffusion"))
	fmt.Printf("fitted D = %.5g, expected T/(gamma box²) = %.5g\n\n", d, analysis.ExpectedDiffusion(params))

	series := traj.MomentumSeries(0, 0)
	ps := analysis.PowerSpectrum(series)
	freqs := analysis.Frequencies(len(series), params.Dt)
	peak := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if peak < len(ps) {
		fmt.Println(viz.HeaderStyle.Render("power spectrum (px of particle 0)"))
		fmt.Println(asciigraph.Plot(ps[1:max(len(ps)/4, 2)],
			asciigraph.Height(10),
			asciigraph.Width(80),
		))
		fmt.Printf("peak at %.4g (power %.4g)\n", freqs[peak], ps[peak])
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	result := &sim.Result{Trajectory: traj, Metrics: meta.Metrics, StepsTaken: traj.Len()}
	return storage.ExportJSON(out, meta.Config(), result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	return storage.WriteTrajectoryCSV(out, traj)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "%s\t%s\n", name, config.DescribePreset(name))
	}
	return w.Flush()
}
