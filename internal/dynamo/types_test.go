package dynamo

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestVecFromSlice(t *testing.T) {
	tests := []struct {
		name    string
		in      []float64
		want    r3.Vec
		wantErr error
	}{
		{"ok", []float64{1, 2, 3}, r3.Vec{X: 1, Y: 2, Z: 3}, nil},
		{"too short", []float64{1, 2}, r3.Vec{}, ErrDimensionMismatch},
		{"too long", []float64{1, 2, 3, 4}, r3.Vec{}, ErrDimensionMismatch},
		{"nil", nil, r3.Vec{}, ErrDimensionMismatch},
		{"NaN", []float64{1, math.NaN(), 3}, r3.Vec{}, ErrNonFinite},
		{"+Inf", []float64{math.Inf(1), 0, 0}, r3.Vec{}, ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VecFromSlice("position", tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("VecFromSlice(%v) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("VecFromSlice(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVecFromSlice_ValidationError(t *testing.T) {
	_, err := VecFromSlice("velocity", []float64{1, 2})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Field != "velocity" || verr.Got != 2 || verr.Want != 3 {
		t.Errorf("unexpected error fields: %+v", verr)
	}
}

func TestParseUpdateMode(t *testing.T) {
	tests := []struct {
		in   string
		want UpdateMode
		ok   bool
	}{
		{"", ModeSequential, true},
		{"sequential", ModeSequential, true},
		{"Snapshot", ModeSnapshot, true},
		{" snapshot ", ModeSnapshot, true},
		{"leapfrog", ModeSequential, false},
	}

	for _, tt := range tests {
		got, err := ParseUpdateMode(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseUpdateMode(%q) error = %v", tt.in, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseUpdateMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.ok && !errors.Is(err, ErrUnknownMode) {
			t.Errorf("ParseUpdateMode(%q) error = %v, want ErrUnknownMode", tt.in, err)
		}
	}
}

func TestUpdateModeString(t *testing.T) {
	if ModeSequential.String() != "sequential" || ModeSnapshot.String() != "snapshot" {
		t.Errorf("unexpected names: %s %s", ModeSequential, ModeSnapshot)
	}
	if UpdateMode(42).String() != "unknown" {
		t.Errorf("expected unknown for out-of-range mode")
	}
}

func TestFrame_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		valid bool
	}{
		{"empty", Frame{}, true},
		{"finite", Frame{Bodies: []Body{{Position: r3.Vec{X: 1}, Velocity: r3.Vec{Y: 2}}}}, true},
		{"NaN position", Frame{Bodies: []Body{{Position: r3.Vec{X: math.NaN()}}}}, false},
		{"Inf velocity", Frame{Bodies: []Body{{Velocity: r3.Vec{Z: math.Inf(-1)}}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestFrame_Body(t *testing.T) {
	f := Frame{Bodies: []Body{{ID: 1, Mass: 2}, {ID: 7, Mass: 3}}}

	b, ok := f.Body(7)
	if !ok || b.Mass != 3 {
		t.Errorf("Body(7) = %+v, %v", b, ok)
	}
	if _, ok := f.Body(9); ok {
		t.Error("Body(9) should not be found")
	}
}

func TestBodyMomentum(t *testing.T) {
	b := Body{Mass: 2, Velocity: r3.Vec{X: 1, Y: -2, Z: 0.5}}
	want := r3.Vec{X: 2, Y: -4, Z: 1}
	if got := b.Momentum(); got != want {
		t.Errorf("Momentum() = %v, want %v", got, want)
	}
}

func TestDefaultRunConfig(t *testing.T) {
	cfg := DefaultRunConfig()

	if math.Abs(cfg.Dt-1.0/60.0) > 1e-15 {
		t.Errorf("Dt = %v, want 1/60", cfg.Dt)
	}
	if cfg.Frames != 6000 {
		t.Errorf("Frames = %d, want 6000", cfg.Frames)
	}
	if !cfg.ValidateState {
		t.Error("DefaultRunConfig should validate state")
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cerr := &ConfigurationError{Field: "mass", Value: 0.0, Wrapped: ErrNonPositiveMass}
	if !errors.Is(cerr, ErrNonPositiveMass) {
		t.Error("ConfigurationError should unwrap to ErrNonPositiveMass")
	}
	if cerr.Error() != "configuration: mass=0: dynamo: particle mass must be positive" {
		t.Errorf("unexpected message %q", cerr.Error())
	}

	serr := &SimulationError{Frame: 150, Time: 2.5, Wrapped: ErrUnstable}
	if !errors.Is(serr, ErrUnstable) {
		t.Error("SimulationError should unwrap to ErrUnstable")
	}
	if serr.Error() != "frame 150 (t=2.5000): dynamo: simulation unstable (state diverged)" {
		t.Errorf("unexpected message %q", serr.Error())
	}

	serr.Particle = 3
	if serr.Error() != "frame 150 (t=2.5000) particle 3: dynamo: simulation unstable (state diverged)" {
		t.Errorf("unexpected message %q", serr.Error())
	}
}
