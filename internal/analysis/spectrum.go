package analysis

import (
	"errors"
	"fmt"
	"math/cmplx"
	"strings"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/gravsim/internal/dynamo"
)

var (
	// ErrTooShort indicates a series with too few samples to analyse.
	ErrTooShort = errors.New("analysis: series too short")

	// ErrNoPeriod indicates a series without any oscillating component.
	ErrNoPeriod = errors.New("analysis: no dominant period")
)

const minSamples = 4

// Axis selects one Cartesian component.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x", "":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	default:
		return AxisX, fmt.Errorf("analysis: unknown axis %q (want x, y or z)", s)
	}
}

// Series extracts one position component of one particle from frames.
// Frames in which the particle is absent are skipped.
func Series(frames []dynamo.Frame, id uint64, axis Axis) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		b, ok := f.Body(id)
		if !ok {
			continue
		}
		out = append(out, component(b.Position, axis))
	}
	return out
}

// PowerSpectrum returns |X_k| for k in [0, n/2) of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod returns the period, in the unit of dt, of the strongest
// non-constant frequency in samples.
func DominantPeriod(samples []float64, dt float64) (float64, error) {
	if len(samples) < minSamples {
		return 0, ErrTooShort
	}

	ps := PowerSpectrum(samples)
	peak, peakPower := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > peakPower {
			peak, peakPower = k, ps[k]
		}
	}
	if peak == 0 || peakPower < 1e-12 {
		return 0, ErrNoPeriod
	}

	return float64(len(samples)) * dt / float64(peak), nil
}
