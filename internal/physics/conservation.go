package physics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

func TotalMass(bodies []dynamo.Body) float64 {
	m := 0.0
	for _, b := range bodies {
		m += b.Mass
	}
	return m
}

func TotalMomentum(bodies []dynamo.Body) r3.Vec {
	var p r3.Vec
	for _, b := range bodies {
		p = r3.Add(p, b.Momentum())
	}
	return p
}

func KineticEnergy(bodies []dynamo.Body) float64 {
	ke := 0.0
	for _, b := range bodies {
		ke += 0.5 * b.Mass * r3.Norm2(b.Velocity)
	}
	return ke
}

// PotentialEnergy sums -g*mi*mj/r over distinct pairs. Coincident pairs
// contribute nothing, matching PairForce.
func PotentialEnergy(g float64, bodies []dynamo.Body) float64 {
	pe := 0.0
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			r := r3.Norm(r3.Sub(bodies[i].Position, bodies[j].Position))
			if r == 0 {
				continue
			}
			pe -= g * bodies[i].Mass * bodies[j].Mass / r
		}
	}
	return pe
}

func TotalEnergy(g float64, bodies []dynamo.Body) float64 {
	return KineticEnergy(bodies) + PotentialEnergy(g, bodies)
}

// CenterOfMass returns the mass-weighted mean position, or the zero vector
// for an empty system.
func CenterOfMass(bodies []dynamo.Body) r3.Vec {
	m := TotalMass(bodies)
	if m == 0 {
		return r3.Vec{}
	}
	var c r3.Vec
	for _, b := range bodies {
		c = r3.Add(c, r3.Scale(b.Mass, b.Position))
	}
	return r3.Scale(1/m, c)
}

// AngularMomentum returns the sum of r x (m v) about the origin.
func AngularMomentum(bodies []dynamo.Body) r3.Vec {
	var l r3.Vec
	for _, b := range bodies {
		l = r3.Add(l, r3.Cross(b.Position, b.Momentum()))
	}
	return l
}
