package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/viz"
)

// Palette cycles through body colours by order of first appearance. The
// first entry is the star colour shared with the keyframe exporter.
var Palette = []string{"#ffcc33", "#00ccff", "#ff66cc", "#66ff66", "#ff8844", "#aa88ff"}

const background = "#0a0a0a"

func header(sb *strings.Builder, w, h float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, background)
}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.PixelSize()
	var sb strings.Builder
	header(&sb, float64(pw)*scale, float64(ph)*scale)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", Palette[0])

	dotRadius := scale * 0.4
	for x, y := range canvas.Dots() {
		cx := float64(x)*scale + scale/2
		cy := float64(y)*scale + scale/2
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// bounds is a padded 2-D bounding box mapped onto a square viewport.
type bounds struct {
	minX, minY, span float64
}

func fit(points []analysis.Point) (bounds, bool) {
	if len(points) == 0 {
		return bounds{}, false
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	// both axes share one scale
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		span = 1
	}
	pad := span * 0.1
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	span += 2 * pad
	return bounds{minX: cx - span/2, minY: cy - span/2, span: span}, true
}

func (b bounds) project(p analysis.Point, size float64) (float64, float64) {
	x := (p.X - b.minX) / b.span * size
	y := size - (p.Y-b.minY)/b.span*size
	return x, y
}

// TrajectoryToSVG draws one path through points.
func TrajectoryToSVG(points []analysis.Point, size int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}
	b, _ := fit(points)

	var sb strings.Builder
	header(&sb, float64(size), float64(size))
	writePath(&sb, b, points, float64(size), strokeColor)
	sb.WriteString("</svg>")
	return sb.String()
}

func writePath(sb *strings.Builder, b bounds, points []analysis.Point, size float64, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i, p := range points {
		x, y := b.project(p, size)
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// TrajectorySVG renders every particle's orbit projected onto plane, with
// a shared scale. Each particle gets a path and a dot at its last
// position. Particles are coloured by order of first appearance.
func TrajectorySVG(frames []dynamo.Frame, plane analysis.Plane, size int) string {
	var order []uint64
	paths := make(map[uint64][]analysis.Point)
	var all []analysis.Point
	for _, f := range frames {
		for _, body := range f.Bodies {
			if !dynamo.IsFinite(body.Position) {
				continue
			}
			if _, ok := paths[body.ID]; !ok {
				order = append(order, body.ID)
			}
			x, y := plane.Project(body.Position)
			p := analysis.Point{X: x, Y: y}
			paths[body.ID] = append(paths[body.ID], p)
			all = append(all, p)
		}
	}

	b, ok := fit(all)
	if !ok {
		return ""
	}

	s := float64(size)
	var sb strings.Builder
	header(&sb, s, s)
	fmt.Fprintf(&sb, "<!-- plane %s, %d particles, %d frames -->\n", plane, len(order), len(frames))
	for i, id := range order {
		color := Palette[i%len(Palette)]
		path := paths[id]
		fmt.Fprintf(&sb, "<g id=\"particle-%d\">\n", id)
		if len(path) > 1 {
			writePath(&sb, b, path, s, color)
		}
		x, y := b.project(path[len(path)-1], s)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", x, y, color)
		sb.WriteString("</g>\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// PerspectiveSVG renders the last frame and its trails through a viz camera
// fitted to the final positions, then converts the braille canvas to SVG.
func PerspectiveSVG(frames []dynamo.Frame, cam *viz.Camera, cols, rows int, scale float64) string {
	if len(frames) == 0 {
		return ""
	}
	trails := viz.NewTrails(len(frames))
	for _, f := range frames {
		trails.Record(f.Bodies)
	}
	last := frames[len(frames)-1]
	if cam == nil {
		cam = viz.NewCamera()
		cam.Fit(last.Bodies)
	}
	canvas := viz.NewCanvas(cols, rows)
	viz.Render3D(canvas, viz.Scene(last.Bodies, trails), cam)
	return CanvasToSVG(canvas, scale)
}
