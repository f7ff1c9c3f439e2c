package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// MomentumDrift tracks the largest |P(t) - P(0)| seen.
type MomentumDrift struct {
	name     string
	initial  r3.Vec
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(f dynamo.Frame) {
	p := physics.TotalMomentum(f.Bodies)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, r3.Norm(r3.Sub(p, m.initial)))
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = r3.Vec{}
	m.maxDrift = 0
	m.samples = 0
}

// CenterOfMassDrift tracks the largest displacement of the centre of mass
// from its first observed position. With no net momentum it stays near zero.
type CenterOfMassDrift struct {
	name     string
	initial  r3.Vec
	maxDrift float64
	samples  int
}

func NewCenterOfMassDrift() *CenterOfMassDrift {
	return &CenterOfMassDrift{name: "com_drift"}
}

func (c *CenterOfMassDrift) Name() string { return c.name }

func (c *CenterOfMassDrift) Observe(f dynamo.Frame) {
	com := physics.CenterOfMass(f.Bodies)
	if c.samples == 0 {
		c.initial = com
	}
	c.samples++
	c.maxDrift = math.Max(c.maxDrift, r3.Norm(r3.Sub(com, c.initial)))
}

func (c *CenterOfMassDrift) Value() float64 { return c.maxDrift }

func (c *CenterOfMassDrift) Reset() {
	c.initial = r3.Vec{}
	c.maxDrift = 0
	c.samples = 0
}

// Default returns the drift metrics attached to every CLI run.
func Default(g float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewMomentumDrift(),
		NewEnergyDrift(g),
		NewCenterOfMassDrift(),
	}
}
