// Package analysis characterises recorded trajectories.
//
//   - [Series] and [PowerSpectrum]: one coordinate of one particle and its spectrum
//   - [DominantPeriod]: orbital period from the strongest spectral peak
//   - [OrbitPortrait] and [PortraitToASCII]: projected orbit for the terminal
//   - [PoincareSection]: interpolated plane crossings of one particle
//   - [LyapunovExponent]: sensitivity of a scenario to its initial state
//
// # Orbital Period
//
//	xs := analysis.Series(frames, 1, analysis.AxisX)
//	period, err := analysis.DominantPeriod(xs, dt)
package analysis
