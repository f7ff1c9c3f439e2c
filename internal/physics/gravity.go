package physics

import (
	"iter"

	"gonum.org/v1/gonum/spatial/r3"
)

// PairForce returns the gravitational force other exerts on self:
//
//	f = -g * (m_other * m_self) / |d|^3 * d,  d = self.Position - other.Position
//
// Coincident particles exert no force on each other.
func PairForce(g float64, self, other *Particle) r3.Vec {
	d := r3.Sub(self.Position, other.Position)
	r := r3.Norm(d)
	if r == 0 {
		return r3.Vec{}
	}
	return r3.Scale(-g*((other.Mass*self.Mass)/(r*r*r)), d)
}

// NetForce sums PairForce over peers, skipping self. Self is matched by
// pointer, or by ID when both particles were bound by the same registry,
// never by state.
func NetForce(g float64, self *Particle, peers iter.Seq[*Particle]) r3.Vec {
	var force r3.Vec
	for other := range peers {
		if other == nil || same(self, other) {
			continue
		}
		force = r3.Add(force, PairForce(g, self, other))
	}
	return force
}

func same(a, b *Particle) bool {
	if a == b {
		return true
	}
	return a.ID != 0 && a.ID == b.ID && a.owner != nil && a.owner == b.owner
}

// Slice adapts a slice of particles to the peer sequence NetForce expects.
func Slice(ps []*Particle) iter.Seq[*Particle] {
	return func(yield func(*Particle) bool) {
		for _, p := range ps {
			if !yield(p) {
				return
			}
		}
	}
}
