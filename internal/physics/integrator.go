package physics

import (
	"iter"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Advance applies one symplectic Euler update driven by force:
//
//	p'  = m*v + F*dt
//	x  += (p'/m) * dt
//	v   = p'/m
func Advance(p *Particle, force r3.Vec, dt float64) {
	momentum := r3.Add(r3.Scale(p.Mass, p.Velocity), r3.Scale(dt, force))
	velocity := r3.Vec{
		X: momentum.X / p.Mass,
		Y: momentum.Y / p.Mass,
		Z: momentum.Z / p.Mass,
	}
	p.Position = r3.Add(p.Position, r3.Scale(dt, velocity))
	p.Velocity = velocity
}

// Step advances p by dt under the gravity of every peer. Peers are read as
// they are at call time.
func Step(g float64, p *Particle, peers iter.Seq[*Particle], dt float64) error {
	if err := ValidateTimestep(dt); err != nil {
		return err
	}
	Advance(p, NetForce(g, p, peers), dt)
	return nil
}

func ValidateTimestep(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return &dynamo.ConfigurationError{Field: "dt", Value: dt, Wrapped: dynamo.ErrInvalidTimestep}
	}
	return nil
}
