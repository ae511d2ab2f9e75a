package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/brownsim/internal/config"
)

var (
	dataDir string
	verbose bool

	dt          float64
	ic          string
	box         float64
	steps       int
	gamma       float64
	temperature float64
	particles   int
	force       float64
	noise       bool
	wrap        string
	periodic    bool
	seed        uint64
	stream      uint64
	integrator  string
	configFile  string
	preset      string
	fname       string
	lineWidth   float64

	// render
	stride     int
	projection string
	delay      int
	svgPath    string
	outPath    string

	// plot
	particle  int
	axis      int
	showPhase bool

	// live
	stepsPerTick int
	trails       int

	// sweep
	gammas     []float64
	temps      []float64
	dts        []float64
	metricName string
	top        int

	// ensemble
	numRuns int
)

// main registers the brownsim commands and exits with status 1 when a
// command fails. Without a subcommand the live view starts on the defaults.
func main() {
	rootCmd := &cobra.Command{
		Use:   "brownsim",
		Short: "brownian dynamics with a splitting langevin integrator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
		RunE: runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".brownsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log diagnostics to stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render walks to an animated gif",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderRun,
	}
	addSimFlags(renderCmd)
	renderCmd.Flags().IntVar(&stride, "stride", 1, "render every n-th step")
	renderCmd.Flags().StringVar(&projection, "projection", "xy", "projection (xy, xz, yz, iso)")
	renderCmd.Flags().IntVar(&delay, "delay", config.DefaultFrameDelay, "frame delay (ms)")
	renderCmd.Flags().StringVar(&svgPath, "svg", "", "also write a static svg of the walks")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default {fname}_G{gamma}_T{T}_N{n}.gif)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particle, "particle", 0, "particle index")
	plotCmd.Flags().IntVar(&axis, "axis", 0, "coordinate axis (0=x, 1=y, 2=z)")
	plotCmd.Flags().BoolVar(&showPhase, "phase", false, "show the (r, p) phase portrait")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "write the phase portrait as svg")

	statsCmd := &cobra.Command{
		Use:   "stats [run_id]",
		Short: "equipartition, autocorrelation, diffusion and spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  statsRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerTick, "per-tick", 1, "integrator steps per frame")
	liveCmd.Flags().IntVar(&trails, "trails", 8, "particles drawn with trails")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over gamma, temperature and dt",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&gammas, "gammas", nil, "friction values")
	sweepCmd.Flags().Float64SliceVar(&temps, "temps", nil, "temperature values")
	sweepCmd.Flags().Float64SliceVar(&dts, "dts", nil, "timestep values")
	sweepCmd.Flags().StringVar(&metricName, "metric", "equipartition_error", "metric to minimize")
	sweepCmd.Flags().IntVar(&top, "top", 10, "rows to print")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same configuration",
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run independent replicas and aggregate metrics",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of replicas")

	rootCmd.AddCommand(runCmd, renderCmd, listCmd, plotCmd, statsCmd, exportJSONCmd, exportCSVCmd, liveCmd, sweepCmd, presetsCmd, compareCmd, ensembleCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.StringVar(&ic, "ic", "0,0", "initial position and momentum component (r,p)")
	f.Float64Var(&box, "box", config.DefaultBox, "box length")
	f.IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	f.Float64Var(&gamma, "gamma", config.DefaultGamma, "friction")
	f.Float64Var(&temperature, "temp", config.DefaultTemperature, "bath temperature")
	f.IntVarP(&particles, "particles", "n", config.DefaultParticles, "number of particles")
	f.Float64Var(&force, "force", 0, "constant force on every component")
	f.BoolVar(&noise, "noise", true, "enable the stochastic thermostat term")
	f.StringVar(&wrap, "wrap", "mod", "wrap convention (mod, nearest, none)")
	f.BoolVar(&periodic, "periodic", true, "wrap positions into the box")
	f.Uint64Var(&seed, "seed", config.DefaultSeed, "random seed")
	f.Uint64Var(&stream, "stream", 0, "random stream")
	f.StringVar(&integrator, "integrator", "langevin", "integrator")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&fname, "fname", "brownian", "output file prefix")
	f.Float64Var(&lineWidth, "lw", config.DefaultLineWidth, "line width")
}

// resolveConfig layers the preset, then the config file, then any flag the
// user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("box") {
		cfg.Box = box
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("gamma") {
		cfg.Gamma = gamma
	}
	if flags.Changed("temp") {
		cfg.Temperature = temperature
	}
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("force") {
		cfg.Force = force
	}
	if flags.Changed("noise") {
		cfg.Noise = noise
	}
	if flags.Changed("wrap") {
		cfg.Wrap = wrap
	}
	if flags.Changed("periodic") {
		cfg.Periodic = periodic
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("stream") {
		cfg.Stream = stream
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("fname") {
		cfg.Output.FName = fname
	}
	if flags.Changed("lw") {
		cfg.Output.LineWidth = lineWidth
	}
	if flags.Changed("ic") {
		r, p, err := parseIC(ic)
		if err != nil {
			return nil, err
		}
		cfg.InitState = config.InitStateConfig{R: r, P: p}
	}

	slog.Debug("resolved config",
		"preset", preset, "file", configFile,
		"dt", cfg.Dt, "gamma", cfg.Gamma, "temp", cfg.Temperature,
		"n", cfg.Particles, "steps", cfg.Steps, "seed", cfg.Seed, "stream", cfg.Stream)

	return cfg, nil
}

func parseIC(s string) (r, p float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("--ic: want r,p, got %q", s)
	}
	if r, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, fmt.Errorf("--ic position: %w", err)
	}
	if p, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, fmt.Errorf("--ic momentum: %w", err)
	}
	return r, p, nil
}

func setupLogging(enabled bool) {
	if !enabled {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// signalContext is canceled on interrupt so long runs stop cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// openOutput returns stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
