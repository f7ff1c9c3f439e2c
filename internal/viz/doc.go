// Package viz renders running simulations in the terminal.
//
// A [Model] is a Bubble Tea program that advances a simulation one frame per
// tick and draws the bodies on a braille [Canvas] through a rotatable
// perspective [Camera], with per-body trails and a stats panel. A [Picker]
// puts a scenario menu in front of it.
//
// # Key Bindings
//
//	Space     - Pause/Resume
//	N         - Single frame while paused
//	Arrows    - Rotate camera (also h/j/k/l, z/Z rolls)
//	+/-       - Zoom
//	F         - Refit camera to the bodies
//	T         - Toggle trails
//	A         - Toggle axes
//	C         - Cycle colour themes
//	Q         - Quit
package viz
