package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

const (
	width           = 60
	height          = 24
	panelWidth      = 46
	historyCapacity = 600
	trailLength     = 120
	maxTableRows    = 8
)

type TickMsg time.Time

// Model drives a simulation one frame per tick and renders it on a braille
// canvas next to a stats panel.
type Model struct {
	sim        *sim.Simulation
	dt         float64
	name       string
	limit      int
	canvas     *Canvas
	camera     *Camera
	trails     *Trails
	energy     *metrics.EnergyDrift
	drift      []float64
	theme      Theme
	running    bool
	showTrails bool
	showAxes   bool
	err        error
}

// NewModel wraps s for interactive display. Each tick advances s by one
// frame of length dt.
func NewModel(s *sim.Simulation, dt float64, name string) Model {
	m := Model{
		sim:        s,
		dt:         dt,
		name:       name,
		canvas:     NewCanvas(width, height),
		camera:     NewCamera(),
		trails:     NewTrails(trailLength),
		energy:     metrics.NewEnergyDrift(s.Options().G),
		drift:      make([]float64, 0, historyCapacity),
		theme:      ThemeStar,
		running:    true,
		showTrails: true,
	}
	if err := physics.ValidateTimestep(dt); err != nil {
		m.err, m.running = err, false
	}
	f := s.Snapshot()
	m.camera.Fit(f.Bodies)
	m.observe(f)
	return m
}

// WithLimit stops the model after frames frames. Zero runs until quit.
func (m Model) WithLimit(frames int) Model {
	m.limit = frames
	return m
}

func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	return m
}

// Err returns the error that stopped the simulation, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) tick() tea.Cmd {
	interval := time.Duration(m.dt * float64(time.Second))
	if interval < time.Millisecond || interval > time.Second {
		interval = time.Second / 60
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running && m.err == nil && !m.done()
		case "n":
			if !m.running && m.err == nil && !m.done() {
				m.step()
			}
		case "left", "h":
			m.camera.RotateY(-0.1)
		case "right", "l":
			m.camera.RotateY(0.1)
		case "up", "k":
			m.camera.RotateX(-0.1)
		case "down", "j":
			m.camera.RotateX(0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "f":
			m.camera.Fit(m.sim.Bodies())
		case "t":
			m.showTrails = !m.showTrails
			m.trails.Clear()
		case "a":
			m.showAxes = !m.showAxes
		case "c":
			m.theme = NextTheme(m.theme)
		}
	case tea.WindowSizeMsg:
		w := max(20, msg.Width-panelWidth-6)
		h := max(8, msg.Height-4)
		m.canvas = NewCanvas(w, h)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) done() bool {
	return m.limit > 0 && m.sim.FrameIndex() >= m.limit
}

// step advances the simulation by one frame and records the result.
func (m *Model) step() {
	if err := m.sim.Frame(m.dt); err != nil {
		m.err, m.running = err, false
		return
	}
	f := m.sim.Snapshot()
	if !f.IsValid() {
		m.err = &dynamo.SimulationError{Frame: f.Index, Time: f.Time, Wrapped: dynamo.ErrUnstable}
		m.running = false
		return
	}
	m.observe(f)
	if m.done() {
		m.running = false
	}
}

func (m *Model) observe(f dynamo.Frame) {
	m.energy.Observe(f)
	m.drift = append(m.drift, m.energy.Relative())
	if len(m.drift) > historyCapacity {
		m.drift = m.drift[1:]
	}
	if m.showTrails {
		m.trails.Record(f.Bodies)
	}
}

func (m *Model) draw(bodies []dynamo.Body) {
	m.canvas.Clear()
	var trails *Trails
	if m.showTrails {
		trails = m.trails
	}
	scene := Scene(bodies, trails)
	if m.showAxes {
		scene.Merge(AxesWireframe(m.camera.Center, m.camera.Extent/2))
	}
	Render3D(m.canvas, scene, m.camera)
}

// View renders the canvas and the stats panel side by side.
func (m Model) View() string {
	bodies := m.sim.Bodies()
	m.draw(bodies)
	canvas := lipgloss.NewStyle().Foreground(m.theme.Secondary).Render(m.canvas.String())
	canvasView := canvasStyle.Render(canvas)

	header := lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true).MarginBottom(1)
	var s strings.Builder
	s.WriteString(header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.drift) > 1 {
		chart := asciigraph.Plot(m.drift, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy drift"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	if m.limit > 0 {
		pct := float64(m.sim.FrameIndex()) / float64(m.limit)
		s.WriteString(ProgressBar(pct, 30) + fmt.Sprintf(" %3.0f%%\n\n", pct*100))
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.sim.Time()))
	row("Frame", fmt.Sprintf("%d", m.sim.FrameIndex()))
	row("Mode", m.sim.Mode().String())
	row("Bodies", fmt.Sprintf("%d", len(bodies)))
	row("Energy", fmt.Sprintf("%.4e J", m.energy.Current()))

	s.WriteString("\n" + m.table(bodies))

	if m.err != nil {
		s.WriteString("\n" + errStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause N:Step Q:Quit\n←→↑↓:Rotate +/-:Zoom F:Fit\nT:Trails A:Axes C:Theme"))

	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return errStyle.Render("STOPPED")
	case m.done():
		return StatusPaused.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) table(bodies []dynamo.Body) string {
	var b strings.Builder
	accent := lipgloss.NewStyle().Foreground(m.theme.Accent)
	b.WriteString(accent.Render(fmt.Sprintf("%-4s %9s %9s %9s", "id", "x", "y", "z")) + "\n")
	for i, body := range bodies {
		if i == maxTableRows {
			b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render(fmt.Sprintf("… %d more", len(bodies)-i)) + "\n")
			break
		}
		p := body.Position
		b.WriteString(valueStyle.Render(fmt.Sprintf("%-4d %9.3g %9.3g %9.3g", body.ID, p.X, p.Y, p.Z)) + "\n")
	}
	return b.String()
}

// Run starts an interactive program for m and returns the final model's
// error, if the simulation stopped on one.
func Run(m Model) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
