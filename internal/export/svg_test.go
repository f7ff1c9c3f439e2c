package export

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func lineFrames() []dynamo.Frame {
	frames := make([]dynamo.Frame, 3)
	for i := range frames {
		x := float64(i)
		frames[i] = dynamo.Frame{Index: i, Bodies: []dynamo.Body{
			{ID: 1, Mass: 1, Position: r3.Vec{X: x}},
			{ID: 2, Mass: 1, Position: r3.Vec{X: x, Y: 2}},
		}}
	}
	return frames
}

func TestTrajectorySVG(t *testing.T) {
	svg := TrajectorySVG(lineFrames(), analysis.PlaneXY, 240)
	require.NotEmpty(t, svg)

	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, `width="240" height="240"`)
	assert.Equal(t, 2, strings.Count(svg, "<path"))
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, `<g id="particle-1">`)
	assert.Contains(t, svg, `<g id="particle-2">`)
	assert.Contains(t, svg, `stroke="`+Palette[0]+`"`)
	assert.Contains(t, svg, `stroke="`+Palette[1]+`"`)

	// 10% padding around a 2x2 box on a 240px square
	assert.Contains(t, svg, `d="M20.0,220.0 L120.0,220.0 L220.0,220.0"`)
	assert.Contains(t, svg, `<circle cx="220.0" cy="20.0" r="3"`)
}

func TestTrajectorySVGPlane(t *testing.T) {
	frames := []dynamo.Frame{
		{Bodies: []dynamo.Body{{ID: 1, Position: r3.Vec{X: 5, Z: 0}}}},
		{Bodies: []dynamo.Body{{ID: 1, Position: r3.Vec{X: 5, Z: 1}}}},
	}
	svg := TrajectorySVG(frames, analysis.PlaneXZ, 100)
	// a vertical segment in the xz plane stays centred horizontally
	assert.Contains(t, svg, `d="M50.0,91.7 L50.0,8.3"`)
	assert.Contains(t, svg, "plane xz")
}

func TestTrajectorySVGSkipsNonFinite(t *testing.T) {
	frames := lineFrames()
	frames[2].Bodies[1].Position = r3.Vec{X: math.Inf(1)}

	svg := TrajectorySVG(frames, analysis.PlaneXY, 240)
	assert.NotContains(t, svg, "Inf")
	assert.NotContains(t, svg, "NaN")
	assert.Equal(t, 2, strings.Count(svg, "<path"))

	assert.Empty(t, TrajectorySVG(nil, analysis.PlaneXY, 240))
}

func TestTrajectoryToSVG(t *testing.T) {
	assert.Empty(t, TrajectoryToSVG([]analysis.Point{{X: 1, Y: 1}}, 100, "#fff"))

	svg := TrajectoryToSVG([]analysis.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, 120, "#00ff00")
	assert.Contains(t, svg, `stroke="#00ff00"`)
	assert.Contains(t, svg, `d="M10.0,110.0 L110.0,10.0"`)
}

func TestCanvasToSVG(t *testing.T) {
	assert.Empty(t, CanvasToSVG(nil, 2))

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2)

	assert.Contains(t, svg, `width="8" height="8"`)
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, `<circle cx="1.0" cy="1.0" r="0.8"/>`)
	assert.Contains(t, svg, `<circle cx="7.0" cy="7.0" r="0.8"/>`)
}

func TestPerspectiveSVG(t *testing.T) {
	assert.Empty(t, PerspectiveSVG(nil, nil, 40, 20, 2))

	svg := PerspectiveSVG(lineFrames(), nil, 40, 20, 2)
	assert.Contains(t, svg, `width="160" height="160"`)
	assert.Greater(t, strings.Count(svg, "<circle"), 10)
}
