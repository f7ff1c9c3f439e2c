package gui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/gravsim/internal/dynamo"
)

// radius scales sphere size with the cube root of mass relative to the
// heaviest body.
func radius(mass, maxMass float64) float32 {
	if maxMass <= 0 {
		return 0.5
	}
	return float32(0.3 + 0.9*math.Cbrt(mass/maxMass))
}

func (a *App) drawSim() {
	bodies := a.Sim.Bodies()

	rl.BeginMode3D(a.Camera)
	if a.ShowTrails {
		a.drawTrails(bodies)
	}
	a.drawBodies(bodies)
	rl.EndMode3D()
}

func (a *App) drawBodies(bodies []dynamo.Body) {
	maxMass := 0.0
	for _, b := range bodies {
		maxMass = math.Max(maxMass, b.Mass)
	}
	for _, b := range bodies {
		pos := a.toScene(b.Position)
		r := radius(b.Mass, maxMass)
		rl.DrawSphere(pos, r, ColStar)
		rl.DrawSphereWires(pos, r*1.6, 8, 8, rl.ColorAlpha(ColStar, 0.15))
	}
}

// drawTrails fades each trail from transparent at its tail to solid at the
// body.
func (a *App) drawTrails(bodies []dynamo.Body) {
	for _, b := range bodies {
		path := a.Trails.Path(b.ID)
		n := len(path)
		for i := 1; i < n; i++ {
			alpha := float32(i) / float32(n)
			rl.DrawLine3D(a.toScene(path[i-1]), a.toScene(path[i]), rl.ColorAlpha(ColStar, alpha*0.8))
		}
	}
}

func (a *App) CustomGrid(slices int, spacing float32) {
	halfSize := float32(slices) * spacing / 2
	rl.BeginMode3D(a.Camera)
	for i := -slices / 2; i <= slices/2; i++ {
		pos := float32(i) * spacing
		rl.DrawLine3D(rl.NewVector3(pos, 0, -halfSize), rl.NewVector3(pos, 0, halfSize), ColGrid)
		rl.DrawLine3D(rl.NewVector3(-halfSize, 0, pos), rl.NewVector3(halfSize, 0, pos), ColGrid)
	}
	rl.EndMode3D()
}

// DrawTelemetry plots the relative energy drift history as a line strip.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 600
	width, height := 400, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal, maxVal = math.Min(minVal, v), math.Max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("dE/E: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
