// Package physics implements the point-mass gravity kernel.
//
// A [Particle] carries mass, velocity and position. [Step] advances one
// particle by one time resolution:
//
//   - [NetForce] sums [PairForce] over every other particle
//   - [Advance] turns the force into a momentum update and moves the particle
//
// Peers are read as they are when Step runs, so stepping particles one after
// another within a frame is order dependent. See sim.ModeSnapshot for the
// order-independent alternative.
//
// # Conserved quantities
//
// [TotalMomentum], [TotalEnergy], [CenterOfMass] and [AngularMomentum] work
// on frames of [dynamo.Body] and are used to monitor drift:
//
//	p0 := physics.TotalMomentum(first.Bodies)
//	p1 := physics.TotalMomentum(last.Bodies)
package physics
