package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
	ColStar    = rl.NewColor(
		uint8(255*storage.StarColor[0]),
		uint8(255*storage.StarColor[1]),
		uint8(255*storage.StarColor[2]),
		255,
	)
)

const (
	screenWidth  = 1280
	screenHeight = 720
	// sceneRadius is the radius, in scene units, the fitted bodies span.
	sceneRadius = 20.0
	trailLength = 240
)

type App struct {
	Sim          *sim.Simulation
	Name         string
	Dt           float64
	Limit        int
	Camera       rl.Camera3D
	Running      bool
	Trails       *viz.Trails
	ShowTrails   bool
	ShowGrid     bool
	Energy       *metrics.EnergyDrift
	Telemetry    []float64 // ring buffer of relative energy drift
	MaxTelemetry int
	Font         rl.Font

	center r3.Vec
	scale  float64
	quit   bool
	err    error
}

// initWindow opens a 1280x720 window at 60 FPS and disables the default
// exit key.
func initWindow(title string) {
	rl.InitWindow(screenWidth, screenHeight, title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// loadFont loads Liberation Mono from the system path, falling back to the
// raylib default font.
func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	if font.Texture.ID == 0 {
		return rl.GetFontDefault()
	}
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp prepares a window session for s. The window must already be open.
func NewApp(s *sim.Simulation, dt float64, frames int, name string) *App {
	a := &App{
		Sim:          s,
		Name:         name,
		Dt:           dt,
		Limit:        frames,
		Running:      true,
		Trails:       viz.NewTrails(trailLength),
		ShowTrails:   true,
		Energy:       metrics.NewEnergyDrift(s.Options().G),
		Telemetry:    make([]float64, 0, 400),
		MaxTelemetry: 400,
		Font:         loadFont(),
	}
	a.fit()
	a.observe(s.Snapshot())
	return a
}

// Run opens a window and animates s one frame of length dt per rendered
// frame. frames bounds the run; zero runs until the window is closed.
// It blocks until the window closes and returns the error that stopped
// the simulation, if any.
func Run(s *sim.Simulation, dt float64, frames int, name string) error {
	initWindow("gravsim :: " + name)
	defer rl.CloseWindow()
	app := NewApp(s, dt, frames, name)
	app.RunLoop()
	return app.err
}

func (a *App) RunLoop() {
	for !a.quit && !rl.WindowShouldClose() {
		a.Update()
		a.Draw()
	}
}

// fit centres the scene on the centre of mass and scales it so the
// farthest body sits sceneRadius units out. The camera orbits that centre.
func (a *App) fit() {
	cam := viz.NewCamera()
	cam.Fit(a.Sim.Bodies())
	a.center = cam.Center
	a.scale = sceneRadius / cam.Extent
	a.Camera = rl.NewCamera3D(
		rl.NewVector3(0, sceneRadius, 2.5*sceneRadius),
		rl.NewVector3(0, 0, 0),
		rl.NewVector3(0, 1, 0),
		45.0,
		rl.CameraPerspective,
	)
}

func (a *App) toScene(p r3.Vec) rl.Vector3 {
	q := r3.Scale(a.scale, r3.Sub(p, a.center))
	return rl.NewVector3(float32(q.X), float32(q.Y), float32(q.Z))
}

func (a *App) done() bool {
	return a.Limit > 0 && a.Sim.FrameIndex() >= a.Limit
}

func (a *App) step() {
	if err := a.Sim.Frame(a.Dt); err != nil {
		a.err, a.Running = err, false
		return
	}
	f := a.Sim.Snapshot()
	if !f.IsValid() {
		a.err = &dynamo.SimulationError{Frame: f.Index, Time: f.Time, Wrapped: dynamo.ErrUnstable}
		a.Running = false
		return
	}
	a.observe(f)
	if a.done() {
		a.Running = false
	}
}

func (a *App) observe(f dynamo.Frame) {
	a.Energy.Observe(f)
	a.Telemetry = append(a.Telemetry, a.Energy.Relative())
	if len(a.Telemetry) > a.MaxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
	if a.ShowTrails {
		a.Trails.Record(f.Bodies)
	}
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		a.quit = true
		return
	}
	if rl.IsKeyPressed(rl.KeySpace) && a.err == nil && !a.done() {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyN) && !a.Running && a.err == nil && !a.done() {
		a.step()
	}
	if rl.IsKeyPressed(rl.KeyT) {
		a.ShowTrails = !a.ShowTrails
		a.Trails.Clear()
	}
	if rl.IsKeyPressed(rl.KeyG) {
		a.ShowGrid = !a.ShowGrid
	}
	if rl.IsKeyPressed(rl.KeyF) {
		a.fit()
		a.Trails.Clear()
	}

	rl.UpdateCamera(&a.Camera, rl.CameraOrbital)

	if a.Running {
		a.step()
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.ShowGrid {
		a.CustomGrid(20, sceneRadius/5)
	}
	a.drawSim()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	a.drawText("gravsim", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Name), 150, 34, 16, ColText)

	status, col := "RUNNING", ColSelect
	switch {
	case a.err != nil:
		status, col = "STOPPED", rl.Red
	case a.done():
		status, col = "DONE", ColAccent
	case !a.Running:
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, 1150, 30, 16, col)

	y := 80
	line := func(format string, args ...any) {
		a.drawText(fmt.Sprintf(format, args...), 30, y, 14, ColText)
		y += 20
	}
	line("t      %.2fs", a.Sim.Time())
	line("frame  %d", a.Sim.FrameIndex())
	line("mode   %s", a.Sim.Mode())
	line("bodies %d", a.Sim.Len())
	line("energy %.4e J", a.Energy.Current())
	if a.err != nil {
		a.drawText(a.err.Error(), 30, y+10, 14, rl.Red)
	}

	a.DrawTelemetry()

	a.drawText("[SPACE] PAUSE  [N] STEP  [T] TRAILS  [G] GRID  [F] FIT  [Q] QUIT", 640, 680, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 680, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}
