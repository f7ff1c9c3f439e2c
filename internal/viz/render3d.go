package viz

import (
	"math"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera projects world positions onto the canvas. Points are first moved
// into view space: centred on Center and divided by Extent, so a scene
// fitted with Fit spans roughly the unit sphere.
type Camera struct {
	Center           r3.Vec
	Extent           float64
	Distance, Near   float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Extent: 1, Distance: 4, Near: 0.1, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Fit centres the camera on the centre of mass and scales the view so the
// farthest body sits on the unit sphere.
func (c *Camera) Fit(bodies []dynamo.Body) {
	if len(bodies) == 0 {
		return
	}
	c.Center = physics.CenterOfMass(bodies)
	extent := 0.0
	for _, b := range bodies {
		extent = math.Max(extent, r3.Norm(r3.Sub(b.Position, c.Center)))
	}
	if extent == 0 || math.IsNaN(extent) || math.IsInf(extent, 0) {
		extent = 1
	}
	c.Extent = extent
}

// RotatePoint rotates a view-space point around the camera's axes.
func (c *Camera) RotatePoint(p r3.Vec) r3.Vec {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project converts a world position to pixel coordinates on a sw x sh
// surface. It returns x, y, depth and whether the point lands on screen.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, float64, bool) {
	x, y, depth, front := c.project(p, sw, sh)
	return x, y, depth, front && x >= 0 && x < sw && y >= 0 && y < sh
}

func (c *Camera) project(p r3.Vec, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(r3.Scale(c.Zoom/c.Extent, r3.Sub(p, c.Center)))
	if rot.Z >= c.Distance-c.Near || math.IsNaN(rot.Z) {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z)
	pScale := float64(min(sw, sh)) / 3.0
	sx := rot.X*scale*pScale + float64(sw/2)
	sy := -rot.Y*scale*pScale + float64(sh/2)
	limit := float64(4 * (sw + sh))
	if math.Abs(sx) > limit || math.Abs(sy) > limit {
		return 0, 0, 0, false
	}
	return int(math.Round(sx)), int(math.Round(sy)), rot.Z, true
}

// Edge is a segment in world space. An edge whose ends coincide is drawn
// as a blob of radius Weight.
type Edge struct {
	Start, End r3.Vec
	Weight     int
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe                   { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e r3.Vec, wt int) { w.Edges = append(w.Edges, Edge{s, e, wt}) }
func (w *Wireframe) AddPoint(p r3.Vec, wt int)   { w.Edges = append(w.Edges, Edge{p, p, wt}) }
func (w *Wireframe) Merge(o *Wireframe)          { w.Edges = append(w.Edges, o.Edges...) }
func (w *Wireframe) Clear()                      { w.Edges = w.Edges[:0] }

type ProjectedEdge struct {
	X1, Y1, X2, Y2 int
	Depth          float64
	Weight         int
}

// Render3D draws the wireframe to the canvas, farthest edges first.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	pw, ph := c.PixelSize()
	proj := make([]ProjectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, f1 := cam.project(e.Start, pw, ph)
		x2, y2, d2, f2 := cam.project(e.End, pw, ph)
		if f1 && f2 {
			proj = append(proj, ProjectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Weight})
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].Depth < proj[j].Depth })
	for _, e := range proj {
		if e.X1 == e.X2 && e.Y1 == e.Y2 {
			c.Blob(e.X1, e.Y1, e.Weight)
		} else {
			c.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		}
	}
}

// Scene builds a wireframe with one blob per body and, when trails is
// non-nil, a polyline through each body's recent positions.
func Scene(bodies []dynamo.Body, trails *Trails) *Wireframe {
	w := NewWireframe()
	if trails != nil {
		for _, b := range bodies {
			path := trails.Path(b.ID)
			for i := 1; i < len(path); i++ {
				w.AddEdge(path[i-1], path[i], 0)
			}
		}
	}
	for _, b := range bodies {
		w.AddPoint(b.Position, 1)
	}
	return w
}

// AxesWireframe returns the three coordinate axes of length l from origin.
func AxesWireframe(origin r3.Vec, l float64) *Wireframe {
	w := NewWireframe()
	w.AddEdge(origin, r3.Add(origin, r3.Vec{X: l}), 0)
	w.AddEdge(origin, r3.Add(origin, r3.Vec{Y: l}), 0)
	w.AddEdge(origin, r3.Add(origin, r3.Vec{Z: l}), 0)
	return w
}
