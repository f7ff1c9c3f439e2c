package dynamo

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Dim is the number of spatial components of every vector.
const Dim = 3

// VecFromSlice converts a 3-component slice into a vector. The field name is
// used in the returned error.
func VecFromSlice(field string, v []float64) (r3.Vec, error) {
	if len(v) != Dim {
		return r3.Vec{}, &ValidationError{Field: field, Got: len(v), Want: Dim, Wrapped: ErrDimensionMismatch}
	}
	out := r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	if !IsFinite(out) {
		return r3.Vec{}, &ValidationError{Field: field, Wrapped: ErrNonFinite}
	}
	return out, nil
}

// VecToSlice is the inverse of VecFromSlice.
func VecToSlice(v r3.Vec) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

func IsFinite(v r3.Vec) bool {
	for _, c := range [Dim]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// UpdateMode selects how a frame advances every particle.
type UpdateMode int

const (
	// ModeSequential steps particles one after another in registration
	// order; later particles see the already-updated state of earlier ones.
	ModeSequential UpdateMode = iota
	// ModeSnapshot computes every net force from one frozen state before
	// any particle moves.
	ModeSnapshot
)

func (m UpdateMode) String() string {
	switch m {
	case ModeSequential:
		return "sequential"
	case ModeSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// ParseUpdateMode accepts "sequential" and "snapshot" (case-insensitive).
// An empty string selects ModeSequential.
func ParseUpdateMode(s string) (UpdateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sequential":
		return ModeSequential, nil
	case "snapshot":
		return ModeSnapshot, nil
	default:
		return ModeSequential, &ConfigurationError{Field: "mode", Value: s, Wrapped: ErrUnknownMode}
	}
}

// Body is the state of one particle at a point in time.
type Body struct {
	ID       uint64
	Mass     float64
	Position r3.Vec
	Velocity r3.Vec
}

// Momentum returns m*v.
func (b Body) Momentum() r3.Vec {
	return r3.Scale(b.Mass, b.Velocity)
}

// Frame holds every live body after a frame was applied. Index 0 is the
// initial state.
type Frame struct {
	Index  int
	Time   float64
	Bodies []Body
}

func (f Frame) IsValid() bool {
	for _, b := range f.Bodies {
		if !IsFinite(b.Position) || !IsFinite(b.Velocity) {
			return false
		}
	}
	return true
}

// Body looks up a body by particle ID.
func (f Frame) Body(id uint64) (Body, bool) {
	for _, b := range f.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return Body{}, false
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

// RunConfig describes one simulation run. Dt is the time resolution of a
// frame and Frames the number of frames to advance.
type RunConfig struct {
	Dt            float64
	Frames        int
	ValidateState bool
	// Record keeps every RecordEvery-th frame in the result (0 or 1 keeps all).
	Record      bool
	RecordEvery int
}

// DefaultRunConfig runs 60 frames per second for
// 100 seconds.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Dt:            1.0 / 60.0,
		Frames:        6000,
		ValidateState: true,
		Record:        true,
		RecordEvery:   1,
	}
}

type Result struct {
	Mode          UpdateMode
	Frames        []Frame
	Metrics       map[string]float64
	MomentumDrift float64
	EnergyDrift   float64
	FramesTaken   int
	Errors        []error
}

// Final returns the last recorded frame.
func (r *Result) Final() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}
