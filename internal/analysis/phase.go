package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Plane is an orthographic projection onto two axes.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneYZ
)

func (p Plane) String() string {
	return [...]string{"xy", "xz", "yz"}[p]
}

func ParsePlane(s string) (Plane, error) {
	switch strings.ToLower(s) {
	case "xy", "":
		return PlaneXY, nil
	case "xz":
		return PlaneXZ, nil
	case "yz":
		return PlaneYZ, nil
	default:
		return PlaneXY, fmt.Errorf("analysis: unknown plane %q (want xy, xz or yz)", s)
	}
}

// Project drops the component normal to the plane.
func (p Plane) Project(v r3.Vec) (float64, float64) {
	switch p {
	case PlaneXZ:
		return v.X, v.Z
	case PlaneYZ:
		return v.Y, v.Z
	default:
		return v.X, v.Y
	}
}

type Point struct{ X, Y float64 }

// Portrait is the projected path of one particle.
type Portrait struct {
	ID     uint64
	Plane  Plane
	Points []Point
}

// OrbitPortrait projects the positions of particle id in frames onto plane.
func OrbitPortrait(frames []dynamo.Frame, id uint64, plane Plane) *Portrait {
	portrait := &Portrait{
		ID:     id,
		Plane:  plane,
		Points: make([]Point, 0, len(frames)),
	}
	for _, f := range frames {
		b, ok := f.Body(id)
		if !ok {
			continue
		}
		x, y := plane.Project(b.Position)
		portrait.Points = append(portrait.Points, Point{X: x, Y: y})
	}
	return portrait
}

// PortraitToASCII renders points onto a width x height character grid,
// drawing the axes when they are in view.
func PortraitToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection records the projected position of particle id each time
// its crossing axis passes threshold going up, interpolated between frames.
func PoincareSection(frames []dynamo.Frame, id uint64, cross Axis, threshold float64, plane Plane) []Point {
	points := make([]Point, 0)

	var prev dynamo.Body
	havePrev := false
	for _, f := range frames {
		b, ok := f.Body(id)
		if !ok {
			havePrev = false
			continue
		}
		if havePrev {
			p0, p1 := component(prev.Position, cross), component(b.Position, cross)
			if p0 < threshold && p1 >= threshold {
				frac := (threshold - p0) / (p1 - p0)
				at := r3.Add(prev.Position, r3.Scale(frac, r3.Sub(b.Position, prev.Position)))
				x, y := plane.Project(at)
				points = append(points, Point{X: x, Y: y})
			}
		}
		prev, havePrev = b, true
	}
	return points
}

func component(v r3.Vec, a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}
