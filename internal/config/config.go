package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFPS     = 60
	DefaultRunTime = 100.0
	DefaultMode    = "sequential"
	DefaultWorkers = 1
)

// Config is one scenario: the simulation settings plus the initial particles.
type Config struct {
	Name          string           `yaml:"name"`
	G             float64          `yaml:"g"`
	FPS           int              `yaml:"fps"`
	RunTime       float64          `yaml:"run_time"`
	Mode          string           `yaml:"mode"`
	Workers       int              `yaml:"workers"`
	ValidateState bool             `yaml:"validate_state"`
	Particles     []ParticleConfig `yaml:"particles"`
}

type ParticleConfig struct {
	Name     string    `yaml:"name,omitempty"`
	Mass     float64   `yaml:"mass"`
	Velocity []float64 `yaml:"velocity,flow"`
	Position []float64 `yaml:"position,flow"`
}

// defaults holds every setting but no particles.
func defaults() *Config {
	return &Config{
		Name:          "custom",
		G:             physics.G,
		FPS:           DefaultFPS,
		RunTime:       DefaultRunTime,
		Mode:          DefaultMode,
		Workers:       DefaultWorkers,
		ValidateState: true,
	}
}

// DefaultConfig is the four-star demo scene.
func DefaultConfig() *Config {
	cfg := defaults()
	cfg.Name = "demo"
	cfg.Particles = []ParticleConfig{
		{Name: "object.0", Mass: 1e12, Velocity: []float64{2, 2, 0}, Position: []float64{10, 0, 0}},
		{Name: "object.1", Mass: 1e12, Velocity: []float64{1.1, 0, 2}, Position: []float64{20, 0, 0}},
		{Name: "object.2", Mass: 1e12, Velocity: []float64{1, 2.1, 0}, Position: []float64{10, 21, 0}},
		{Name: "object.3", Mass: 1e12, Velocity: []float64{0.5, 2, 0}, Position: []float64{10, 0, 20}},
	}
	return cfg
}

// Load reads a scenario file. Settings missing from the file keep their
// defaults; the result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every setting and particle. The first problem found is
// returned as a *dynamo.ConfigurationError or *dynamo.ValidationError.
func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return &dynamo.ConfigurationError{Field: "fps", Value: c.FPS, Wrapped: dynamo.ErrInvalidOption}
	}
	if !(c.RunTime > 0) || math.IsInf(c.RunTime, 0) {
		return &dynamo.ConfigurationError{Field: "run_time", Value: c.RunTime, Wrapped: dynamo.ErrInvalidOption}
	}
	mode, err := dynamo.ParseUpdateMode(c.Mode)
	if err != nil {
		return err
	}
	opts := sim.Options{G: c.G, Mode: mode, Workers: c.Workers}
	if err := opts.Validate(); err != nil {
		return err
	}
	if len(c.Particles) == 0 {
		return &dynamo.ConfigurationError{Field: "particles", Value: 0, Wrapped: dynamo.ErrInvalidOption}
	}

	for i, p := range c.Particles {
		if err := physics.ValidateMass(p.Mass); err != nil {
			return &dynamo.ConfigurationError{
				Field:   fmt.Sprintf("particles[%d].mass", i),
				Value:   p.Mass,
				Wrapped: dynamo.ErrNonPositiveMass,
			}
		}
		if _, err := dynamo.VecFromSlice(fmt.Sprintf("particles[%d].velocity", i), p.Velocity); err != nil {
			return err
		}
		if _, err := dynamo.VecFromSlice(fmt.Sprintf("particles[%d].position", i), p.Position); err != nil {
			return err
		}
	}
	return nil
}

// Dt is the time resolution of one frame.
func (c *Config) Dt() float64 {
	return 1.0 / float64(c.FPS)
}

// Frames is the number of frames needed to cover RunTime.
func (c *Config) Frames() int {
	return int(math.Round(float64(c.FPS) * c.RunTime))
}

func (c *Config) UpdateMode() dynamo.UpdateMode {
	mode, _ := dynamo.ParseUpdateMode(c.Mode)
	return mode
}

// Names returns the display name of every particle, defaulting to
// "object.<index>".
func (c *Config) Names() []string {
	names := make([]string, len(c.Particles))
	for i, p := range c.Particles {
		names[i] = p.Name
		if names[i] == "" {
			names[i] = fmt.Sprintf("object.%d", i)
		}
	}
	return names
}

// Build validates the scenario and returns a simulation holding its
// particles in file order.
func (c *Config) Build() (*sim.Simulation, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s, err := sim.New(sim.Options{G: c.G, Mode: c.UpdateMode(), Workers: c.Workers})
	if err != nil {
		return nil, err
	}
	for _, p := range c.Particles {
		if _, err := s.Spawn(p.Mass, p.Velocity, p.Position); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (c *Config) RunConfig() dynamo.RunConfig {
	return dynamo.RunConfig{
		Dt:            c.Dt(),
		Frames:        c.Frames(),
		ValidateState: c.ValidateState,
		Record:        true,
		RecordEvery:   1,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Particles = make([]ParticleConfig, len(c.Particles))
	for i, p := range c.Particles {
		out.Particles[i] = ParticleConfig{
			Name:     p.Name,
			Mass:     p.Mass,
			Velocity: append([]float64(nil), p.Velocity...),
			Position: append([]float64(nil), p.Position...),
		}
	}
	return &out
}
