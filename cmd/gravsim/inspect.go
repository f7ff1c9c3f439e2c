package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/spf13/cobra"
)

const (
	lyapunovPerturbation = 1e-8
	// braille dots per svg pixel in perspective exports
	perspectiveScale = 4
)

func loadRun(runID string) (*storage.RunMetadata, []dynamo.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("load trajectory: %w", err)
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no recorded frames", runID)
	}
	slog.Debug("run loaded", "id", runID, "frames", len(frames), "particles", len(frames[0].Bodies))
	return meta, frames, nil
}

// selectParticle resolves --id against the first frame. Zero picks the
// first particle.
func selectParticle(frames []dynamo.Frame) (uint64, error) {
	first := frames[0]
	if len(first.Bodies) == 0 {
		return 0, errors.New("run has no particles")
	}
	if particleID == 0 {
		return first.Bodies[0].ID, nil
	}
	if _, ok := first.Body(particleID); !ok {
		return 0, fmt.Errorf("particle %d: %w", particleID, dynamo.ErrUnknownParticle)
	}
	return particleID, nil
}

func particleName(meta *storage.RunMetadata, first dynamo.Frame, id uint64) string {
	for i, b := range first.Bodies {
		if b.ID == id && i < len(meta.Names) {
			return meta.Names[i]
		}
	}
	return fmt.Sprintf("#%d", id)
}

// withOutput writes to --output when set and to stdout otherwise.
func withOutput(cmd *cobra.Command, fn func(io.Writer) error) error {
	if output == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("exported", "path", output)
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	id, err := selectParticle(frames)
	if err != nil {
		return err
	}

	axes := []analysis.Axis{analysis.AxisX, analysis.AxisY, analysis.AxisZ}
	if plotAxis != "all" {
		a, err := analysis.ParseAxis(plotAxis)
		if err != nil {
			return err
		}
		axes = []analysis.Axis{a}
	}

	series := make([][]float64, len(axes))
	for i, a := range axes {
		series[i] = analysis.Series(frames, id, a)
	}
	if len(series[0]) < 2 {
		return fmt.Errorf("run %s: too few frames to plot", args[0])
	}

	caption := fmt.Sprintf("%s position (m), %d frames", particleName(meta, frames[0], id), len(series[0]))
	var graph string
	if len(series) == 1 {
		graph = asciigraph.Plot(series[0],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption+", "+axes[0].String()),
		)
	} else {
		graph = asciigraph.PlotMany(series,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue),
			asciigraph.Caption(caption+", x red, y green, z blue"),
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), graph)
	return nil
}

func phaseRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	id, err := selectParticle(frames)
	if err != nil {
		return err
	}
	plane, err := analysis.ParsePlane(planeName)
	if err != nil {
		return err
	}

	var points []analysis.Point
	title := fmt.Sprintf("%s orbit, %s plane", particleName(meta, frames[0], id), plane)
	if section != "" {
		cross, err := analysis.ParseAxis(section)
		if err != nil {
			return err
		}
		points = analysis.PoincareSection(frames, id, cross, threshold, plane)
		title = fmt.Sprintf("%s poincare section, %s = %g, %s plane", particleName(meta, frames[0], id), cross, threshold, plane)
	} else {
		points = analysis.OrbitPortrait(frames, id, plane).Points
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title)
	if len(points) == 0 {
		fmt.Fprintln(out, "no points")
		return nil
	}
	fmt.Fprintln(out, analysis.PortraitToASCII(points, 80, 24))
	fmt.Fprintf(out, "%d points\n", len(points))
	return nil
}

// sampleInterval is the simulated time between two recorded frames, which
// differs from the frame length when frames were thinned.
func sampleInterval(meta *storage.RunMetadata, frames []dynamo.Frame) float64 {
	if len(frames) > 1 {
		if dt := frames[1].Time - frames[0].Time; dt > 0 {
			return dt
		}
	}
	return meta.Dt
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	id, err := selectParticle(frames)
	if err != nil {
		return err
	}
	axis, err := analysis.ParseAxis(analyzeAxis)
	if err != nil {
		return err
	}

	series := analysis.Series(frames, id, axis)
	dt := sampleInterval(meta, frames)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s, %s axis, %d samples every %.6fs\n\n", particleName(meta, frames[0], id), axis, len(series), dt)

	spectrum := analysis.PowerSpectrum(series)
	if len(spectrum) > 2 {
		graph := asciigraph.Plot(spectrum[1:],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum"),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}

	period, err := analysis.DominantPeriod(series, dt)
	switch {
	case errors.Is(err, analysis.ErrTooShort), errors.Is(err, analysis.ErrNoPeriod):
		fmt.Fprintf(out, "dominant period: none (%v)\n", err)
	case err != nil:
		return err
	default:
		fmt.Fprintf(out, "dominant period: %.4fs (%.4f Hz)\n", period, 1/period)
	}

	if lyapunov {
		build := func() (*sim.Simulation, error) { return rebuild(meta, frames[0]) }
		lambda, err := analysis.LyapunovExponent(build, meta.Dt, meta.FramesTaken, lyapunovPerturbation)
		if err != nil {
			return fmt.Errorf("lyapunov: %w", err)
		}
		fmt.Fprintf(out, "lyapunov exponent: %.6f 1/s\n", lambda)
	}
	return nil
}

// rebuild restores the simulation a run started from out of its first
// recorded frame.
func rebuild(meta *storage.RunMetadata, first dynamo.Frame) (*sim.Simulation, error) {
	m, err := dynamo.ParseUpdateMode(meta.Mode)
	if err != nil {
		return nil, err
	}
	s, err := sim.New(sim.Options{G: meta.G, Mode: m, Workers: 1})
	if err != nil {
		return nil, err
	}
	for _, b := range first.Bodies {
		if _, err := s.Spawn(b.Mass, dynamo.VecToSlice(b.Velocity), dynamo.VecToSlice(b.Position)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return withOutput(cmd, func(w io.Writer) error {
		return storage.WriteTrajectory(w, frames)
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return withOutput(cmd, func(w io.Writer) error {
		return storage.ExportKeyframes(w, frames, meta.Names, meta.FPS)
	})
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	switch svgStyle {
	case "ortho":
		plane, err := analysis.ParsePlane(planeName)
		if err != nil {
			return err
		}
		svg = export.TrajectorySVG(frames, plane, svgSize)
	case "perspective":
		cols := max(svgSize/(2*perspectiveScale), 1)
		rows := max(svgSize/(4*perspectiveScale), 1)
		svg = export.PerspectiveSVG(frames, nil, cols, rows, perspectiveScale)
	default:
		return fmt.Errorf("unknown svg style %q (want ortho or perspective)", svgStyle)
	}
	if svg == "" {
		return fmt.Errorf("run %s: nothing to draw", args[0])
	}

	return withOutput(cmd, func(w io.Writer) error {
		_, err := io.WriteString(w, svg)
		return err
	})
}
