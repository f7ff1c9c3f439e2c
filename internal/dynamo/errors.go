package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrNonPositiveMass indicates a particle mass that is zero, negative or not finite.
	ErrNonPositiveMass = errors.New("dynamo: particle mass must be positive")

	// ErrDimensionMismatch indicates a vector that does not have exactly three components.
	ErrDimensionMismatch = errors.New("dynamo: vector must have 3 components")

	// ErrNonFinite indicates a NaN or Inf component in an input vector.
	ErrNonFinite = errors.New("dynamo: vector component is NaN or Inf")

	// ErrInvalidTimestep indicates a time resolution that is not a positive finite number.
	ErrInvalidTimestep = errors.New("dynamo: time resolution must be positive")

	// ErrUnknownParticle indicates an ID that was never registered or has been removed.
	ErrUnknownParticle = errors.New("dynamo: unknown particle")

	// ErrUnknownMode indicates an update mode name that is not recognised.
	ErrUnknownMode = errors.New("dynamo: unknown update mode")

	// ErrInvalidOption indicates a run or simulation option outside its valid range.
	ErrInvalidOption = errors.New("dynamo: option out of range")

	// ErrAlreadyRegistered indicates a particle that is already live in a simulation.
	ErrAlreadyRegistered = errors.New("dynamo: particle already registered")

	// ErrUnstable indicates the simulation produced a non-finite state.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")
)

// ConfigurationError reports a setting or construction parameter outside its
// valid range.
type ConfigurationError struct {
	Field   string
	Value   any
	Wrapped error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s=%v: %v", e.Field, e.Value, e.Wrapped)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Wrapped
}

// ValidationError reports malformed input data, such as a vector with the
// wrong number of components.
type ValidationError struct {
	Field   string
	Got     int
	Want    int
	Wrapped error
}

func (e *ValidationError) Error() string {
	if e.Want > 0 {
		return fmt.Sprintf("validation: %s has %d components, want %d: %v", e.Field, e.Got, e.Want, e.Wrapped)
	}
	return fmt.Sprintf("validation: %s: %v", e.Field, e.Wrapped)
}

func (e *ValidationError) Unwrap() error {
	return e.Wrapped
}

// SimulationError wraps an error with the frame it happened in.
type SimulationError struct {
	Frame    int
	Time     float64
	Particle uint64
	Wrapped  error
}

func (e *SimulationError) Error() string {
	if e.Particle != 0 {
		return fmt.Sprintf("frame %d (t=%.4f) particle %d: %v", e.Frame, e.Time, e.Particle, e.Wrapped)
	}
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
