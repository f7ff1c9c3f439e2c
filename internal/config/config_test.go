package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Name != "demo" {
		t.Errorf("expected name demo, got %s", cfg.Name)
	}
	if len(cfg.Particles) != 4 {
		t.Fatalf("expected 4 particles, got %d", len(cfg.Particles))
	}
	if cfg.Dt() != 1.0/60.0 {
		t.Errorf("expected dt 1/60, got %v", cfg.Dt())
	}
	if cfg.Frames() != 6000 {
		t.Errorf("expected 6000 frames, got %d", cfg.Frames())
	}
	if cfg.G != physics.G {
		t.Errorf("expected G %v, got %v", physics.G, cfg.G)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestBuild(t *testing.T) {
	s, err := DefaultConfig().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.Len() != 4 {
		t.Fatalf("expected 4 particles, got %d", s.Len())
	}
	if s.Mode() != dynamo.ModeSequential {
		t.Errorf("expected sequential mode, got %v", s.Mode())
	}

	bodies := s.Bodies()
	for i, b := range bodies {
		if b.ID != uint64(i+1) {
			t.Errorf("body %d has ID %d", i, b.ID)
		}
	}
	if bodies[2].Position.Y != 21 || bodies[1].Velocity.Z != 2 {
		t.Errorf("particles not built in file order: %+v", bodies)
	}
}

func TestRunConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FPS = 60
	cfg.RunTime = 0.1
	cfg.ValidateState = false

	rc := cfg.RunConfig()
	if rc.Frames != 6 {
		t.Errorf("expected 6 frames, got %d", rc.Frames)
	}
	if rc.Dt != 1.0/60.0 || rc.ValidateState || !rc.Record {
		t.Errorf("unexpected run config %+v", rc)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
		want   error
	}{
		{"zero fps", func(c *Config) { c.FPS = 0 }, "fps", dynamo.ErrInvalidOption},
		{"negative run time", func(c *Config) { c.RunTime = -1 }, "run_time", dynamo.ErrInvalidOption},
		{"NaN run time", func(c *Config) { c.RunTime = math.NaN() }, "run_time", dynamo.ErrInvalidOption},
		{"NaN G", func(c *Config) { c.G = math.NaN() }, "g", dynamo.ErrInvalidOption},
		{"unknown mode", func(c *Config) { c.Mode = "leapfrog" }, "mode", dynamo.ErrUnknownMode},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers", dynamo.ErrInvalidOption},
		{"no particles", func(c *Config) { c.Particles = nil }, "particles", dynamo.ErrInvalidOption},
		{"zero mass", func(c *Config) { c.Particles[1].Mass = 0 }, "particles[1].mass", dynamo.ErrNonPositiveMass},
		{"negative mass", func(c *Config) { c.Particles[3].Mass = -1e12 }, "particles[3].mass", dynamo.ErrNonPositiveMass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var cerr *dynamo.ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigurationError, got %T", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, cerr.Field)
			}
			if _, err := cfg.Build(); err == nil {
				t.Error("Build should fail on an invalid config")
			}
		})
	}
}

func TestValidate_VectorDimensions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"2-D velocity", func(c *Config) { c.Particles[0].Velocity = []float64{1, 2} }, "particles[0].velocity"},
		{"missing position", func(c *Config) { c.Particles[2].Position = nil }, "particles[2].position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, dynamo.ErrDimensionMismatch) {
				t.Fatalf("expected ErrDimensionMismatch, got %v", err)
			}
			var verr *dynamo.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("expected ValidationError on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")

	cfg := DefaultConfig()
	cfg.Mode = "snapshot"
	cfg.Workers = 4
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.UpdateMode() != dynamo.ModeSnapshot || loaded.Workers != 4 {
		t.Errorf("settings lost: %+v", loaded)
	}
	if len(loaded.Particles) != 4 {
		t.Fatalf("expected 4 particles, got %d", len(loaded.Particles))
	}
	for i := range cfg.Particles {
		want, got := cfg.Particles[i], loaded.Particles[i]
		if got.Name != want.Name || got.Mass != want.Mass ||
			!slices.Equal(got.Velocity, want.Velocity) || !slices.Equal(got.Position, want.Position) {
			t.Errorf("particle %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pair.yaml")
	data := `
particles:
  - mass: 1e12
    velocity: [0, 0, 0]
    position: [0, 0, 0]
  - mass: 2.5e11
    velocity: [0, 1, 0]
    position: [1, 0, 0]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FPS != DefaultFPS || cfg.RunTime != DefaultRunTime || cfg.G != physics.G {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.UpdateMode() != dynamo.ModeSequential {
		t.Errorf("expected sequential mode, got %v", cfg.UpdateMode())
	}
	if cfg.Particles[1].Mass != 2.5e11 {
		t.Errorf("expected mass 2.5e11, got %v", cfg.Particles[1].Mass)
	}
	if names := cfg.Names(); names[0] != "object.0" || names[1] != "object.1" {
		t.Errorf("unexpected default names %v", names)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("fps: [not, a, number]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	data := "particles:\n  - mass: -1\n    velocity: [0, 0, 0]\n    position: [0, 0, 0]\n"
	if err := os.WriteFile(invalid, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(invalid); !errors.Is(err, dynamo.ErrNonPositiveMass) {
		t.Errorf("expected ErrNonPositiveMass, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("binary")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Particles) != 2 || cfg.Particles[1].Position[0] != 1 {
		t.Errorf("unexpected binary preset %+v", cfg.Particles)
	}

	cfg.Particles[1].Position[0] = 99
	if GetPreset("binary").Particles[1].Position[0] != 1 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	want := []string{"binary", "coincident", "demo", "triangle"}
	if got := ListPresets(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			if err := cfg.Validate(); err != nil {
				t.Fatalf("preset %s invalid: %v", name, err)
			}
			s, err := cfg.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if s.Len() != len(cfg.Particles) {
				t.Errorf("built %d particles, want %d", s.Len(), len(cfg.Particles))
			}
		})
	}
}

func TestTrianglePresetHasNoNetMomentum(t *testing.T) {
	s, err := GetPreset("triangle").Build()
	if err != nil {
		t.Fatal(err)
	}
	p := physics.TotalMomentum(s.Bodies())
	if math.Abs(p.X) > 1 || math.Abs(p.Y) > 1 || p.Z != 0 {
		t.Errorf("triangle preset momentum %v, want ~0", p)
	}
}
