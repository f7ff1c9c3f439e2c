package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/gui"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	dataDir string
	verbose bool
	// Scenario selection and overrides
	configFile  string
	preset      string
	mode        string
	workers     int
	fps         int
	runTime     float64
	gravity     float64
	noValidate  bool
	recordEvery int
	containment float64
	// Run inspection
	particleID  uint64
	plotAxis    string
	analyzeAxis string
	planeName   string
	output      string
	// Views
	theme string
	// SVG export
	svgSize  int
	svgStyle string
	// Analysis
	section   string
	threshold float64
	lyapunov  bool
	// Scenario files
	initPreset string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newRootCmd registers every command and flag. With no subcommand the
// terminal scenario picker starts.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gravsim",
		Short: "n-body gravity simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunPicker(pickerScenarios(), buildPreset)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scenario and store its trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().IntVar(&recordEvery, "record-every", 1, "keep every n-th frame")
	runCmd.Flags().Float64Var(&containment, "contain", 0, "report the fraction of frames within this distance of the centre of mass (0 disables)")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run a scenario in both update modes and compare",
		Args:  cobra.NoArgs,
		RunE:  compareModes,
	}
	scenarioFlags(compareCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the position of one particle over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().Uint64Var(&particleID, "id", 0, "particle id (0 = first particle)")
	plotCmd.Flags().StringVar(&plotAxis, "axis", "all", "x, y, z or all")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "draw the orbit of one particle in a plane",
		Args:  cobra.ExactArgs(1),
		RunE:  phaseRun,
	}
	phaseCmd.Flags().Uint64Var(&particleID, "id", 0, "particle id (0 = first particle)")
	phaseCmd.Flags().StringVar(&planeName, "plane", "xy", "projection plane (xy, xz, yz)")
	phaseCmd.Flags().StringVar(&section, "section", "", "only plot upward crossings of this axis (poincare section)")
	phaseCmd.Flags().Float64Var(&threshold, "threshold", 0, "crossing value for --section")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Uint64Var(&particleID, "id", 0, "particle id (0 = first particle)")
	analyzeCmd.Flags().StringVar(&analyzeAxis, "axis", "x", "position component to analyse")
	analyzeCmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "also estimate the largest lyapunov exponent")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the trajectory as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export the trajectory as a keyframe track",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the trajectory as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&planeName, "plane", "xy", "projection plane for --style ortho")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 800, "image size in pixels")
	exportSVGCmd.Flags().StringVar(&svgStyle, "style", "ortho", "ortho or perspective")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a scenario with live terminal visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	scenarioFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeStar.Name, "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run a scenario in a 3-D window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	scenarioFlags(guiCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "write a scenario file to start from",
		Args:  cobra.ExactArgs(1),
		RunE:  initScenario,
	}
	initCmd.Flags().StringVar(&initPreset, "preset", "demo", "preset to write")

	rootCmd.AddCommand(runCmd, compareCmd, listCmd, showCmd, plotCmd, phaseCmd, analyzeCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, liveCmd, guiCmd, presetsCmd, initCmd)
	return rootCmd
}

func setupLogging(cmd *cobra.Command) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func scenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset scenario ("+strings.Join(config.ListPresets(), ", ")+")")
	cmd.Flags().StringVar(&mode, "mode", config.DefaultMode, "update mode (sequential, snapshot)")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "force workers in snapshot mode")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frames per second (dt = 1/fps)")
	cmd.Flags().Float64Var(&runTime, "time", config.DefaultRunTime, "simulated seconds")
	cmd.Flags().Float64Var(&gravity, "g", physics.G, "gravitational constant")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "keep running after the state diverges")
}

// loadScenario resolves --config, then --preset, then the demo scene, and
// applies only the flags that were set explicitly.
func loadScenario(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("time") {
		cfg.RunTime = runTime
	}
	if flags.Changed("g") {
		cfg.G = gravity
	}
	if flags.Changed("no-validate") {
		cfg.ValidateState = !noValidate
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", cfg.Name, err)
	}
	slog.Debug("scenario loaded",
		"name", cfg.Name,
		"particles", len(cfg.Particles),
		"mode", cfg.Mode,
		"fps", cfg.FPS,
		"run_time", cfg.RunTime,
		"g", cfg.G,
	)
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	s, err := cfg.Build()
	if err != nil {
		return err
	}
	for _, m := range metrics.Default(cfg.G) {
		s.AddMetric(m)
	}
	if containment > 0 {
		s.AddMetric(metrics.NewContainment(containment))
	}

	rc := cfg.RunConfig()
	rc.RecordEvery = recordEvery

	start := time.Now()
	result, err := s.Run(cmd.Context(), rc)
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return fmt.Errorf("run: %w", err)
	}
	slog.Debug("run finished", "frames", result.FramesTaken, "elapsed", time.Since(start))

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Scenario: cfg.Name,
		G:        cfg.G,
		FPS:      cfg.FPS,
		Dt:       rc.Dt,
		Frames:   rc.Frames,
		Names:    cfg.Names(),
	}, result)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", runID)
	fmt.Fprintf(out, "scenario: %s (%s, %d particles)\n", cfg.Name, result.Mode, len(cfg.Particles))
	fmt.Fprintf(out, "frames: %d/%d (dt %.6fs)\n", result.FramesTaken, rc.Frames, rc.Dt)
	fmt.Fprintf(out, "momentum drift: %.6e\n", result.MomentumDrift)
	fmt.Fprintf(out, "energy drift: %.6e\n", result.EnergyDrift)
	for _, name := range slices.Sorted(maps.Keys(result.Metrics)) {
		fmt.Fprintf(out, "  %s: %.6e\n", name, result.Metrics[name])
	}
	for _, e := range result.Errors {
		fmt.Fprintf(out, "error: %v\n", e)
	}
	if interrupted {
		fmt.Fprintln(out, "interrupted, partial run saved")
	}
	return nil
}

type comparison struct {
	mode    dynamo.UpdateMode
	result  *dynamo.Result
	elapsed time.Duration
}

// compareModes runs the same scenario once per update mode concurrently and
// reports drift and the largest final position difference.
func compareModes(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	modes := []dynamo.UpdateMode{dynamo.ModeSequential, dynamo.ModeSnapshot}
	results := make([]comparison, len(modes))

	g, ctx := errgroup.WithContext(cmd.Context())
	for i, m := range modes {
		g.Go(func() error {
			c := cfg.Clone()
			c.Mode = m.String()
			s, err := c.Build()
			if err != nil {
				return err
			}
			rc := c.RunConfig()
			rc.Record = false
			start := time.Now()
			res, err := s.Run(ctx, rc)
			if err != nil {
				return fmt.Errorf("%s: %w", m, err)
			}
			final := s.Snapshot()
			res.Frames = []dynamo.Frame{final}
			results[i] = comparison{mode: m, result: res, elapsed: time.Since(start)}
			slog.Debug("mode finished", "mode", m, "frames", res.FramesTaken, "elapsed", results[i].elapsed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario: %s (%d particles, %d frames)\n\n", cfg.Name, len(cfg.Particles), cfg.Frames())
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tFRAMES\tE-DRIFT\tP-DRIFT\tTIME")
	for _, c := range results {
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%.3e\t%s\n",
			c.mode, c.result.FramesTaken, c.result.EnergyDrift, c.result.MomentumDrift, c.elapsed.Round(time.Microsecond))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, c := range results {
		for _, e := range c.result.Errors {
			fmt.Fprintf(out, "%s: %v\n", c.mode, e)
		}
	}

	a, _ := results[0].result.Final()
	b, _ := results[1].result.Final()
	fmt.Fprintf(out, "\nmax position difference: %.6e m\n", maxSeparation(a, b))
	return nil
}

func maxSeparation(a, b dynamo.Frame) float64 {
	maxDist := 0.0
	for _, ba := range a.Bodies {
		bb, ok := b.Body(ba.ID)
		if !ok {
			continue
		}
		maxDist = max(maxDist, r3.Norm(r3.Sub(ba.Position, bb.Position)))
	}
	return maxDist
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tPARTICLES\tFRAMES\tDT\tMODE\tE-DRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/%d\t%.4fs\t%s\t%.2e\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Names),
			run.FramesTaken,
			run.Frames,
			run.Dt,
			run.Mode,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARTICLES\tMODE\tFPS\tTIME")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%gs\n", name, len(cfg.Particles), cfg.Mode, cfg.FPS, cfg.RunTime)
	}
	return w.Flush()
}

func initScenario(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(initPreset)
	if cfg == nil {
		return fmt.Errorf("unknown preset %q (available: %s)", initPreset, strings.Join(config.ListPresets(), ", "))
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s scenario to %s\n", cfg.Name, args[0])
	return nil
}

// liveLimit bounds the interactive views only when --time was given.
func liveLimit(cmd *cobra.Command, cfg *config.Config) int {
	if cmd.Flags().Changed("time") {
		return cfg.Frames()
	}
	return 0
}

func runLive(cmd *cobra.Command, args []string) error {
	if configFile == "" && preset == "" {
		return viz.RunPicker(pickerScenarios(), buildPreset)
	}
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	s, err := cfg.Build()
	if err != nil {
		return err
	}
	m := viz.NewModel(s, cfg.Dt(), cfg.Name).
		WithLimit(liveLimit(cmd, cfg)).
		WithTheme(theme)
	return viz.Run(m)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	s, err := cfg.Build()
	if err != nil {
		return err
	}
	return gui.Run(s, cfg.Dt(), liveLimit(cmd, cfg), cfg.Name)
}

func pickerScenarios() []viz.Scenario {
	names := config.ListPresets()
	scenarios := make([]viz.Scenario, 0, len(names))
	for _, name := range names {
		cfg := config.GetPreset(name)
		scenarios = append(scenarios, viz.Scenario{
			Name:        name,
			Description: fmt.Sprintf("%d particles, %gs at %d fps", len(cfg.Particles), cfg.RunTime, cfg.FPS),
		})
	}
	return scenarios
}

func buildPreset(name string, m dynamo.UpdateMode) (*sim.Simulation, float64, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, 0, fmt.Errorf("unknown preset %q", name)
	}
	cfg.Mode = m.String()
	s, err := cfg.Build()
	if err != nil {
		return nil, 0, err
	}
	return s, cfg.Dt(), nil
}
