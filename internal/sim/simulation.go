package sim

import (
	"context"
	"iter"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/registry"
	"gonum.org/v1/gonum/spatial/r3"
)

// minParallelChunk is the smallest number of particles handed to one worker
// in snapshot mode.
const minParallelChunk = 8

// Options configures a Simulation.
type Options struct {
	G    float64
	Mode dynamo.UpdateMode
	// Workers bounds the goroutines used for snapshot force computation.
	// Zero uses GOMAXPROCS. Sequential mode always runs on one goroutine.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		G:       physics.G,
		Mode:    dynamo.ModeSequential,
		Workers: 1,
	}
}

func (o Options) Validate() error {
	if math.IsNaN(o.G) || math.IsInf(o.G, 0) || o.G < 0 {
		return &dynamo.ConfigurationError{Field: "g", Value: o.G, Wrapped: dynamo.ErrInvalidOption}
	}
	if o.Mode != dynamo.ModeSequential && o.Mode != dynamo.ModeSnapshot {
		return &dynamo.ConfigurationError{Field: "mode", Value: o.Mode, Wrapped: dynamo.ErrUnknownMode}
	}
	if o.Workers < 0 {
		return &dynamo.ConfigurationError{Field: "workers", Value: o.Workers, Wrapped: dynamo.ErrInvalidOption}
	}
	return nil
}

// Simulation owns a set of particles and advances them frame by frame.
//
// Registration and lookup are safe for concurrent use; stepping is not, and
// a Simulation is meant to be driven from one goroutine.
type Simulation struct {
	opts      Options
	particles *registry.Registry[*physics.Particle]
	forces    *ForcePool
	metrics   []dynamo.Metric
	observers []dynamo.Observer

	frame int
	time  float64
}

func New(opts Options) (*Simulation, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Simulation{
		opts:      opts,
		particles: registry.New[*physics.Particle](),
		forces:    NewForcePool(),
	}, nil
}

func (s *Simulation) Options() Options       { return s.opts }
func (s *Simulation) Mode() dynamo.UpdateMode { return s.opts.Mode }

func (s *Simulation) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// SetMode switches the update mode for subsequent frames.
func (s *Simulation) SetMode(m dynamo.UpdateMode) error {
	opts := s.opts
	opts.Mode = m
	if err := opts.Validate(); err != nil {
		return err
	}
	s.opts = opts
	return nil
}

// FrameIndex returns the number of frames applied so far.
func (s *Simulation) FrameIndex() int { return s.frame }

// Time returns the simulated time elapsed over all applied frames.
func (s *Simulation) Time() float64 { return s.time }

// Spawn validates the given state, builds a particle and registers it.
func (s *Simulation) Spawn(mass float64, velocity, position []float64) (*physics.Particle, error) {
	p, err := physics.NewParticle(mass, velocity, position)
	if err != nil {
		return nil, err
	}
	if _, err := s.Add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Add registers an existing particle and sets its ID. A particle that was
// removed earlier may be added again and receives a new ID.
func (s *Simulation) Add(p *physics.Particle) (registry.ID, error) {
	if p == nil {
		return 0, &dynamo.ValidationError{Field: "particle", Wrapped: dynamo.ErrUnknownParticle}
	}
	if err := physics.ValidateMass(p.Mass); err != nil {
		return 0, err
	}
	if p.ID != 0 {
		if cur, ok := s.particles.Get(p.ID); ok && cur == p {
			return 0, &dynamo.ConfigurationError{Field: "id", Value: p.ID, Wrapped: dynamo.ErrAlreadyRegistered}
		}
	}
	id := s.particles.Register(p)
	p.Bind(s.particles, id)
	return id, nil
}

// Remove takes a particle out of the simulation. It no longer moves and no
// longer attracts the others.
func (s *Simulation) Remove(id registry.ID) error {
	if !s.particles.Remove(id) {
		return s.unknown(id)
	}
	return nil
}

// Compact reclaims the slots of removed particles.
func (s *Simulation) Compact() { s.particles.Compact() }

func (s *Simulation) Particle(id registry.ID) (*physics.Particle, bool) {
	return s.particles.Get(id)
}

// Particles yields the live particles in registration order.
func (s *Simulation) Particles() iter.Seq[*physics.Particle] {
	return s.particles.Values()
}

func (s *Simulation) Len() int { return s.particles.Len() }

// Bodies copies the state of every live particle in registration order.
func (s *Simulation) Bodies() []dynamo.Body {
	bodies := make([]dynamo.Body, 0, s.particles.Len())
	for p := range s.particles.Values() {
		bodies = append(bodies, p.Body())
	}
	return bodies
}

// Snapshot returns the current state as a frame.
func (s *Simulation) Snapshot() dynamo.Frame {
	return dynamo.Frame{Index: s.frame, Time: s.time, Bodies: s.Bodies()}
}

// StepParticle advances one particle by dt under the gravity of every other
// live particle, as they are right now. It does not advance the frame clock.
func (s *Simulation) StepParticle(id registry.ID, dt float64) error {
	p, ok := s.particles.Get(id)
	if !ok {
		return s.unknown(id)
	}
	return physics.Step(s.opts.G, p, s.particles.Values(), dt)
}

// Frame advances every live particle by dt once.
//
// In ModeSequential particles are stepped in registration order and each
// sees the already-updated state of those before it. In ModeSnapshot all
// forces are computed from the state at the start of the frame before any
// particle moves.
func (s *Simulation) Frame(dt float64) error {
	if err := physics.ValidateTimestep(dt); err != nil {
		return err
	}

	live := s.live()
	switch s.opts.Mode {
	case dynamo.ModeSnapshot:
		s.snapshotFrame(live, dt)
	default:
		s.sequentialFrame(live, dt)
	}

	s.frame++
	s.time += dt
	return nil
}

func (s *Simulation) sequentialFrame(live []*physics.Particle, dt float64) {
	peers := physics.Slice(live)
	for _, p := range live {
		physics.Advance(p, physics.NetForce(s.opts.G, p, peers), dt)
	}
}

func (s *Simulation) snapshotFrame(live []*physics.Particle, dt float64) {
	forces := s.forces.Get(len(live))
	defer s.forces.Put(forces)

	peers := physics.Slice(live)
	ParallelFor(len(live), s.opts.Workers, minParallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			forces[i] = physics.NetForce(s.opts.G, live[i], peers)
		}
	})

	for i, p := range live {
		physics.Advance(p, forces[i], dt)
	}
}

func (s *Simulation) live() []*physics.Particle {
	live := make([]*physics.Particle, 0, s.particles.Len())
	for p := range s.particles.Values() {
		live = append(live, p)
	}
	return live
}

// Run advances the simulation cfg.Frames times. Metrics and observers see
// the starting frame and every frame after it. With cfg.ValidateState a
// non-finite state stops the run and is reported in Result.Errors. A done
// ctx stops the run between frames; the partial result, drift and metrics
// included, is returned along with ctx.Err().
func (s *Simulation) Run(ctx context.Context, cfg dynamo.RunConfig) (*dynamo.Result, error) {
	if err := validateRunConfig(cfg, false); err != nil {
		return nil, err
	}

	every := max(cfg.RecordEvery, 1)
	result := &dynamo.Result{
		Mode:    s.opts.Mode,
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	if cfg.Record {
		result.Frames = make([]dynamo.Frame, 0, cfg.Frames/every+1)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	first := s.Snapshot()
	s.notify(first)
	if cfg.Record {
		result.Frames = append(result.Frames, first)
	}
	last := first

	var runErr error
frames:
	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break frames
		default:
		}

		if err := s.Frame(cfg.Dt); err != nil {
			return result, err
		}

		f := s.Snapshot()
		if cfg.ValidateState {
			if err := unstable(f); err != nil {
				result.Errors = append(result.Errors, err)
				break
			}
		}

		result.FramesTaken++
		s.notify(f)
		if cfg.Record && (i+1)%every == 0 {
			result.Frames = append(result.Frames, f)
		}
		last = f
	}

	result.MomentumDrift = r3.Norm(r3.Sub(
		physics.TotalMomentum(last.Bodies),
		physics.TotalMomentum(first.Bodies),
	))
	if e0 := physics.TotalEnergy(s.opts.G, first.Bodies); e0 != 0 {
		e1 := physics.TotalEnergy(s.opts.G, last.Bodies)
		result.EnergyDrift = math.Abs(e1-e0) / math.Abs(e0)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, runErr
}

// RunWithCallback calls fn with the current frame, then after every applied
// frame, until fn returns false, ctx is done or cfg.Frames frames were
// applied. Frames of zero runs until stopped. Metrics and observers are not
// notified.
func (s *Simulation) RunWithCallback(ctx context.Context, cfg dynamo.RunConfig, fn func(dynamo.Frame) bool) error {
	if err := validateRunConfig(cfg, true); err != nil {
		return err
	}

	if !fn(s.Snapshot()) {
		return nil
	}

	for i := 0; cfg.Frames == 0 || i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.Frame(cfg.Dt); err != nil {
			return err
		}

		f := s.Snapshot()
		if cfg.ValidateState {
			if err := unstable(f); err != nil {
				return err
			}
		}
		if !fn(f) {
			return nil
		}
	}

	return nil
}

func (s *Simulation) notify(f dynamo.Frame) {
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, o := range s.observers {
		o.OnFrame(f)
	}
}

func (s *Simulation) unknown(id registry.ID) error {
	return &dynamo.SimulationError{
		Frame:    s.frame,
		Time:     s.time,
		Particle: uint64(id),
		Wrapped:  dynamo.ErrUnknownParticle,
	}
}

func unstable(f dynamo.Frame) error {
	for _, b := range f.Bodies {
		if !dynamo.IsFinite(b.Position) || !dynamo.IsFinite(b.Velocity) {
			return &dynamo.SimulationError{Frame: f.Index, Time: f.Time, Particle: b.ID, Wrapped: dynamo.ErrUnstable}
		}
	}
	return nil
}

func validateRunConfig(cfg dynamo.RunConfig, unbounded bool) error {
	if err := physics.ValidateTimestep(cfg.Dt); err != nil {
		return err
	}
	if cfg.Frames < 0 || (cfg.Frames == 0 && !unbounded) {
		return &dynamo.ConfigurationError{Field: "frames", Value: cfg.Frames, Wrapped: dynamo.ErrInvalidOption}
	}
	if cfg.RecordEvery < 0 {
		return &dynamo.ConfigurationError{Field: "record_every", Value: cfg.RecordEvery, Wrapped: dynamo.ErrInvalidOption}
	}
	return nil
}
