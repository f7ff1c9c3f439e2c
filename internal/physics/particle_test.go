package physics_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/registry"
	"gonum.org/v1/gonum/spatial/r3"
)

func mustParticle(id uint64, mass float64, position r3.Vec) *physics.Particle {
	p, err := physics.New(mass, r3.Vec{}, position)
	Expect(err).NotTo(HaveOccurred())
	p.ID = registry.ID(id)
	return p
}

var _ = Describe("Particle construction", func() {
	It("keeps the given state", func() {
		p, err := physics.NewParticle(1e12, []float64{2, 2, 0}, []float64{10, 0, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Mass).To(Equal(1e12))
		Expect(p.Velocity).To(Equal(r3.Vec{X: 2, Y: 2}))
		Expect(p.Position).To(Equal(r3.Vec{X: 10}))
		Expect(uint64(p.ID)).To(BeZero())
	})

	DescribeTable("rejects masses that are not positive",
		func(mass float64) {
			_, err := physics.NewParticle(mass, []float64{0, 0, 0}, []float64{0, 0, 0})
			Expect(err).To(MatchError(dynamo.ErrNonPositiveMass))

			var cerr *dynamo.ConfigurationError
			Expect(errors.As(err, &cerr)).To(BeTrue())
			Expect(cerr.Field).To(Equal("mass"))
		},
		Entry("zero", 0.0),
		Entry("negative", -5.0),
		Entry("NaN", math.NaN()),
		Entry("+Inf", math.Inf(1)),
	)

	DescribeTable("rejects vectors without three components",
		func(velocity, position []float64, field string) {
			_, err := physics.NewParticle(1, velocity, position)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))

			var verr *dynamo.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(verr.Field).To(Equal(field))
		},
		Entry("short velocity", []float64{1, 2}, []float64{0, 0, 0}, "velocity"),
		Entry("long position", []float64{0, 0, 0}, []float64{1, 2, 3, 4}, "position"),
		Entry("empty position", []float64{0, 0, 0}, []float64{}, "position"),
	)

	It("rejects non-finite vectors", func() {
		_, err := physics.New(1, r3.Vec{X: math.NaN()}, r3.Vec{})
		Expect(err).To(MatchError(dynamo.ErrNonFinite))
	})
})

var _ = Describe("Pair force", func() {
	It("is zero for coincident particles", func() {
		a := mustParticle(1, 1e12, r3.Vec{X: 3, Y: 3, Z: 3})
		b := mustParticle(2, 1e12, r3.Vec{X: 3, Y: 3, Z: 3})
		Expect(physics.PairForce(physics.G, a, b)).To(Equal(r3.Vec{}))
	})

	It("attracts along the separation with inverse-square magnitude", func() {
		a := mustParticle(1, 2e10, r3.Vec{})
		b := mustParticle(2, 3e10, r3.Vec{Y: 2})

		f := physics.PairForce(physics.G, a, b)
		want := physics.G * 2e10 * 3e10 / 4

		Expect(f.X).To(BeZero())
		Expect(f.Z).To(BeZero())
		Expect(f.Y).To(BeNumerically("~", want, want*1e-12))
	})

	It("is antisymmetric", func() {
		a := mustParticle(1, 5, r3.Vec{X: 1, Y: -2, Z: 0.5})
		b := mustParticle(2, 7, r3.Vec{X: -3, Y: 4, Z: 2})

		fab := physics.PairForce(1, a, b)
		fba := physics.PairForce(1, b, a)
		Expect(r3.Add(fab, fba)).To(Equal(r3.Vec{}))
	})
})

var _ = Describe("Net force", func() {
	It("excludes self by identity even when another particle has identical state", func() {
		a := mustParticle(1, 1e12, r3.Vec{})
		twin := mustParticle(2, 1e12, r3.Vec{})
		far := mustParticle(3, 1e12, r3.Vec{X: 1})

		f := physics.NetForce(physics.G, a, physics.Slice([]*physics.Particle{a, twin, far}))
		Expect(f).To(Equal(physics.PairForce(physics.G, a, far)))
	})

	It("excludes a copy of self bound by the same registry", func() {
		reg := registry.New[*physics.Particle]()
		a, _ := physics.New(1, r3.Vec{}, r3.Vec{})
		b, _ := physics.New(1, r3.Vec{}, r3.Vec{X: 1})
		a.Bind(reg, reg.Register(a))
		b.Bind(reg, reg.Register(b))

		copyOfA := *a
		f := physics.NetForce(1, a, physics.Slice([]*physics.Particle{&copyOfA, b}))
		Expect(f).To(Equal(r3.Vec{X: 1}))
	})

	It("keeps peers from another registry that share an ID", func() {
		first, second := registry.New[*physics.Particle](), registry.New[*physics.Particle]()
		a, _ := physics.New(1, r3.Vec{}, r3.Vec{})
		b, _ := physics.New(1, r3.Vec{}, r3.Vec{X: 1})
		a.Bind(first, first.Register(a))
		b.Bind(second, second.Register(b))
		Expect(a.ID).To(Equal(b.ID))

		f := physics.NetForce(1, a, physics.Slice([]*physics.Particle{a, b}))
		Expect(f).To(Equal(r3.Vec{X: 1}))
	})

	It("excludes unregistered self by pointer", func() {
		a, _ := physics.New(1, r3.Vec{}, r3.Vec{})
		b, _ := physics.New(1, r3.Vec{}, r3.Vec{X: 1})

		f := physics.NetForce(1, a, physics.Slice([]*physics.Particle{a, b}))
		Expect(f).To(Equal(r3.Vec{X: 1}))
	})
})

var _ = Describe("Step", func() {
	const dt = 1.0 / 60.0

	var a, b *physics.Particle

	BeforeEach(func() {
		a = mustParticle(1, 1e12, r3.Vec{})
		b = mustParticle(2, 1e12, r3.Vec{X: 1})
	})

	It("moves each particle of the reference pair toward the other by a*dt^2", func() {
		peers := physics.Slice([]*physics.Particle{a, b})
		fa := physics.NetForce(physics.G, a, peers)
		fb := physics.NetForce(physics.G, b, peers)
		physics.Advance(a, fa, dt)
		physics.Advance(b, fb, dt)

		accel := physics.G * 1e12 / 1.0
		want := accel * dt * dt

		Expect(a.Position.X).To(BeNumerically("~", want, want*1e-9))
		Expect(b.Position.X).To(BeNumerically("~", 1-want, want*1e-9))
		Expect(a.Position.Y).To(BeZero())
		Expect(a.Velocity.X).To(BeNumerically("~", accel*dt, accel*dt*1e-9))
	})

	It("reads the current state of peers", func() {
		peers := physics.Slice([]*physics.Particle{a, b})
		Expect(physics.Step(physics.G, a, peers, dt)).To(Succeed())
		Expect(physics.Step(physics.G, b, peers, dt)).To(Succeed())

		moved := physics.G * 1e12 * dt * dt
		d := 1 - moved
		wantB := physics.G * 1e12 / (d * d) * dt * dt
		Expect(1 - b.Position.X).To(BeNumerically("~", wantB, wantB*1e-9))
		Expect(1 - b.Position.X).To(BeNumerically(">", moved))
	})

	It("produces equal and opposite velocity changes under a snapshot update", func() {
		a.Position = r3.Vec{X: -0.5}
		b.Position = r3.Vec{X: 0.5}

		peers := physics.Slice([]*physics.Particle{a, b})
		fa := physics.NetForce(physics.G, a, peers)
		fb := physics.NetForce(physics.G, b, peers)
		physics.Advance(a, fa, dt)
		physics.Advance(b, fb, dt)

		Expect(a.Velocity.X).To(BeNumerically(">", 0))
		Expect(a.Velocity.X).To(Equal(-b.Velocity.X))
		Expect(r3.Add(a.Momentum(), b.Momentum())).To(Equal(r3.Vec{}))
	})

	It("is deterministic", func() {
		c := mustParticle(1, 1e12, r3.Vec{})
		d := mustParticle(2, 1e12, r3.Vec{X: 1})

		Expect(physics.Step(physics.G, a, physics.Slice([]*physics.Particle{a, b}), dt)).To(Succeed())
		Expect(physics.Step(physics.G, c, physics.Slice([]*physics.Particle{c, d}), dt)).To(Succeed())

		Expect(c.Position).To(Equal(a.Position))
		Expect(c.Velocity).To(Equal(a.Velocity))
	})

	It("does not fail for coincident particles and leaves them at rest", func() {
		b.Position = a.Position
		peers := physics.Slice([]*physics.Particle{a, b})

		Expect(physics.Step(physics.G, a, peers, dt)).To(Succeed())
		Expect(physics.Step(physics.G, b, peers, dt)).To(Succeed())

		Expect(a.Velocity).To(Equal(r3.Vec{}))
		Expect(b.Velocity).To(Equal(r3.Vec{}))
		Expect(a.Position).To(Equal(r3.Vec{}))
	})

	It("keeps moving a free particle in a straight line", func() {
		p, _ := physics.New(3, r3.Vec{X: 1, Y: 2, Z: -1}, r3.Vec{})
		Expect(physics.Step(physics.G, p, physics.Slice(nil), 0.5)).To(Succeed())
		Expect(p.Position).To(Equal(r3.Vec{X: 0.5, Y: 1, Z: -0.5}))
		Expect(p.Velocity).To(Equal(r3.Vec{X: 1, Y: 2, Z: -1}))
	})

	DescribeTable("rejects invalid time resolutions",
		func(dt float64) {
			err := physics.Step(physics.G, a, physics.Slice([]*physics.Particle{a, b}), dt)
			Expect(err).To(MatchError(dynamo.ErrInvalidTimestep))
			Expect(a.Position).To(Equal(r3.Vec{}))
		},
		Entry("zero", 0.0),
		Entry("negative", -0.1),
		Entry("NaN", math.NaN()),
		Entry("+Inf", math.Inf(1)),
	)
})

var _ = Describe("Conserved quantities", func() {
	bodies := []dynamo.Body{
		{ID: 1, Mass: 2, Position: r3.Vec{X: 1}, Velocity: r3.Vec{Y: 3}},
		{ID: 2, Mass: 4, Position: r3.Vec{X: -2}, Velocity: r3.Vec{Y: -1}},
	}

	It("sums momentum", func() {
		Expect(physics.TotalMomentum(bodies)).To(Equal(r3.Vec{Y: 2}))
	})

	It("computes kinetic and potential energy", func() {
		Expect(physics.KineticEnergy(bodies)).To(BeNumerically("~", 0.5*2*9+0.5*4*1, 1e-12))
		Expect(physics.PotentialEnergy(1, bodies)).To(BeNumerically("~", -8.0/3.0, 1e-12))
		Expect(physics.TotalEnergy(1, bodies)).To(BeNumerically("~", 11-8.0/3.0, 1e-12))
	})

	It("ignores coincident pairs in the potential", func() {
		same := []dynamo.Body{{Mass: 1}, {Mass: 1}}
		Expect(physics.PotentialEnergy(1, same)).To(BeZero())
	})

	It("computes the centre of mass", func() {
		com := physics.CenterOfMass(bodies)
		Expect(com.X).To(BeNumerically("~", -1, 1e-12))
		Expect(com.Y).To(BeZero())
		Expect(physics.CenterOfMass(nil)).To(Equal(r3.Vec{}))
	})

	It("computes angular momentum about the origin", func() {
		// r1 x p1 = (1,0,0) x (0,6,0) = (0,0,6); r2 x p2 = (-2,0,0) x (0,-4,0) = (0,0,8)
		Expect(physics.AngularMomentum(bodies)).To(Equal(r3.Vec{Z: 14}))
	})
})
