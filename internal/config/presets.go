package config

import (
	"maps"
	"slices"

	"github.com/san-kum/gravsim/internal/physics"
)

var Presets = map[string]*Config{
	"demo": DefaultConfig(),
	// One frame of this pair moves each particle 0.01854 m toward the other.
	"binary": {
		Name: "binary", G: physics.G, FPS: 60, RunTime: 0.1, Mode: "snapshot", Workers: 1, ValidateState: true,
		Particles: []ParticleConfig{
			{Name: "object.0", Mass: 1e12, Velocity: []float64{0, 0, 0}, Position: []float64{0, 0, 0}},
			{Name: "object.1", Mass: 1e12, Velocity: []float64{0, 0, 0}, Position: []float64{1, 0, 0}},
		},
	},
	"coincident": {
		Name: "coincident", G: physics.G, FPS: 60, RunTime: 1, Mode: "sequential", Workers: 1, ValidateState: true,
		Particles: []ParticleConfig{
			{Name: "object.0", Mass: 1e12, Velocity: []float64{0, 0, 0}, Position: []float64{5, 5, 5}},
			{Name: "object.1", Mass: 1e12, Velocity: []float64{0, 0, 0}, Position: []float64{5, 5, 5}},
		},
	},
	// Lagrange equilateral solution, period ~32 s.
	"triangle": {
		Name: "triangle", G: physics.G, FPS: 60, RunTime: 128, Mode: "snapshot", Workers: 1, ValidateState: true,
		Particles: []ParticleConfig{
			{Name: "object.0", Mass: 1e12, Velocity: []float64{0, 1.9630101634103478, 0}, Position: []float64{10, 0, 0}},
			{Name: "object.1", Mass: 1e12, Velocity: []float64{-1.7000166694004033, -0.9815050817051739, 0}, Position: []float64{-5, 8.660254037844386, 0}},
			{Name: "object.2", Mass: 1e12, Velocity: []float64{1.7000166694004033, -0.9815050817051739, 0}, Position: []float64{-5, -8.660254037844386, 0}},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
