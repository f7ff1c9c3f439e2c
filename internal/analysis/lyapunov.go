package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

// LyapunovExponent estimates the largest Lyapunov exponent of a scenario
// using the trajectory separation method. A positive value indicates chaos.
//
// build is called twice and must return identical simulations. The first
// particle of the second one is displaced by perturbation along x, then
// after every frame:
//  1. the phase-space separation d of the two copies is measured
//  2. ln(d/d0) is accumulated
//  3. the copy is pulled back to separation d0 along the same direction
//
// λ ≈ Σ ln(d/d0) / (frames * dt)
func LyapunovExponent(build func() (*sim.Simulation, error), dt float64, frames int, perturbation float64) (float64, error) {
	if frames <= 0 {
		return 0, &dynamo.ConfigurationError{Field: "frames", Value: frames, Wrapped: dynamo.ErrInvalidOption}
	}
	if !(perturbation > 0) || math.IsInf(perturbation, 0) {
		return 0, &dynamo.ConfigurationError{Field: "perturbation", Value: perturbation, Wrapped: dynamo.ErrInvalidOption}
	}

	ref, err := build()
	if err != nil {
		return 0, err
	}
	pert, err := build()
	if err != nil {
		return 0, err
	}

	x := collect(ref)
	xp := collect(pert)
	if len(x) == 0 || len(x) != len(xp) {
		return 0, fmt.Errorf("analysis: scenario copies hold %d and %d particles", len(x), len(xp))
	}

	d0 := perturbation
	xp[0].Position.X += d0

	sumLog := 0.0
	for i := 0; i < frames; i++ {
		if err := ref.Frame(dt); err != nil {
			return 0, err
		}
		if err := pert.Frame(dt); err != nil {
			return 0, err
		}

		sep := separation(x, xp)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			continue
		}
		sumLog += math.Log(sep / d0)

		scale := d0 / sep
		for j := range xp {
			xp[j].Position = r3.Add(x[j].Position, r3.Scale(scale, r3.Sub(xp[j].Position, x[j].Position)))
			xp[j].Velocity = r3.Add(x[j].Velocity, r3.Scale(scale, r3.Sub(xp[j].Velocity, x[j].Velocity)))
		}
	}

	return sumLog / (float64(frames) * dt), nil
}

func collect(s *sim.Simulation) []*physics.Particle {
	out := make([]*physics.Particle, 0, s.Len())
	for p := range s.Particles() {
		out = append(out, p)
	}
	return out
}

func separation(x, xp []*physics.Particle) float64 {
	sum := 0.0
	for i := range x {
		sum += r3.Norm2(r3.Sub(xp[i].Position, x[i].Position))
		sum += r3.Norm2(r3.Sub(xp[i].Velocity, x[i].Velocity))
	}
	return math.Sqrt(sum)
}
