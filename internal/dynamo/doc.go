// Package dynamo provides the shared primitives of the gravity simulator.
//
// The package holds the types every other package agrees on:
//
//   - [Body]: read-only view of one particle at a point in time
//   - [Frame]: every live body after one frame
//   - [UpdateMode]: sequential (order-dependent) or snapshot frame updates
//   - [RunConfig] and [Result]: input and output of a simulation run
//   - [Metric] and [Observer]: hooks called once per frame
//
// and the error vocabulary ([ConfigurationError], [ValidationError],
// [SimulationError] and the sentinel errors they wrap).
//
// # Example
//
//	s, _ := sim.New(sim.DefaultOptions())
//	s.Spawn(1e12, []float64{0, 0, 0}, []float64{1, 0, 0})
//	result, _ := s.Run(ctx, dynamo.DefaultRunConfig())
//
// # Thread Safety
//
// Values in this package are plain data. A [Frame] handed to an observer
// owns its Bodies slice and may be retained.
package dynamo
