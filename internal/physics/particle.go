package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/registry"
	"gonum.org/v1/gonum/spatial/r3"
)

// G is the Newtonian constant of gravitation (CODATA 2018), in m^3 kg^-1 s^-2.
const G = 6.67430e-11

// Particle is a point mass. ID is zero until the particle is registered with
// a simulation; Velocity and Position are overwritten by every step.
type Particle struct {
	ID       registry.ID
	Mass     float64
	Velocity r3.Vec
	Position r3.Vec

	// owner is the registry that assigned ID.
	owner any
}

// Bind records id as assigned by owner. IDs only identify a particle within
// the registry that assigned them.
func (p *Particle) Bind(owner any, id registry.ID) {
	p.ID, p.owner = id, owner
}

// New returns an unregistered particle. Mass must be positive and finite and
// both vectors finite.
func New(mass float64, velocity, position r3.Vec) (*Particle, error) {
	if err := ValidateMass(mass); err != nil {
		return nil, err
	}
	if !dynamo.IsFinite(velocity) {
		return nil, &dynamo.ValidationError{Field: "velocity", Wrapped: dynamo.ErrNonFinite}
	}
	if !dynamo.IsFinite(position) {
		return nil, &dynamo.ValidationError{Field: "position", Wrapped: dynamo.ErrNonFinite}
	}
	return &Particle{Mass: mass, Velocity: velocity, Position: position}, nil
}

// NewParticle is New for callers holding plain slices, such as config files.
// Slices must have exactly three components.
func NewParticle(mass float64, velocity, position []float64) (*Particle, error) {
	if err := ValidateMass(mass); err != nil {
		return nil, err
	}
	v, err := dynamo.VecFromSlice("velocity", velocity)
	if err != nil {
		return nil, err
	}
	p, err := dynamo.VecFromSlice("position", position)
	if err != nil {
		return nil, err
	}
	return &Particle{Mass: mass, Velocity: v, Position: p}, nil
}

func ValidateMass(mass float64) error {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return &dynamo.ConfigurationError{Field: "mass", Value: mass, Wrapped: dynamo.ErrNonPositiveMass}
	}
	return nil
}

func (p *Particle) Momentum() r3.Vec {
	return r3.Scale(p.Mass, p.Velocity)
}

func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.Mass * r3.Norm2(p.Velocity)
}

// Body copies the particle state.
func (p *Particle) Body() dynamo.Body {
	return dynamo.Body{
		ID:       uint64(p.ID),
		Mass:     p.Mass,
		Position: p.Position,
		Velocity: p.Velocity,
	}
}
