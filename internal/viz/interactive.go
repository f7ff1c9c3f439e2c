package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
)

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// Scenario is one entry of the picker menu.
type Scenario struct {
	Name        string
	Description string
}

// BuildFunc creates a fresh simulation for the named scenario and returns
// it with the frame length to drive it at.
type BuildFunc func(name string, mode dynamo.UpdateMode) (*sim.Simulation, float64, error)

const (
	stateMenu = iota
	stateSim
)

// Picker lists scenarios and opens the selected one in a live view.
type Picker struct {
	state     int
	cursor    int
	scenarios []Scenario
	mode      dynamo.UpdateMode
	build     BuildFunc
	live      Model
	err       error
	size      *tea.WindowSizeMsg
}

func NewPicker(scenarios []Scenario, build BuildFunc) Picker {
	return Picker{scenarios: scenarios, build: build, mode: dynamo.ModeSequential}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.size = &msg
		if p.state == stateSim {
			return p.forward(msg)
		}
	case tea.KeyMsg:
		if p.state == stateSim {
			if msg.String() == "esc" {
				p.state = stateMenu
				return p, nil
			}
			return p.forward(msg)
		}
		return p.menuKey(msg)
	case TickMsg:
		if p.state == stateSim {
			return p.forward(msg)
		}
	}
	return p, nil
}

func (p Picker) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := p.live.Update(msg)
	p.live = next.(Model)
	return p, cmd
}

func (p Picker) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.scenarios)-1 {
			p.cursor++
		}
	case "m":
		if p.mode == dynamo.ModeSequential {
			p.mode = dynamo.ModeSnapshot
		} else {
			p.mode = dynamo.ModeSequential
		}
	case "enter", " ":
		return p.start()
	}
	return p, nil
}

func (p Picker) start() (tea.Model, tea.Cmd) {
	if len(p.scenarios) == 0 {
		return p, nil
	}
	name := p.scenarios[p.cursor].Name
	s, dt, err := p.build(name, p.mode)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", name, err)
		return p, nil
	}
	p.err = nil
	p.live = NewModel(s, dt, name)
	if p.size != nil {
		next, _ := p.live.Update(*p.size)
		p.live = next.(Model)
	}
	p.state = stateSim
	return p, p.live.Init()
}

func (p Picker) View() string {
	if p.state == stateSim {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("GRAVSIM", ThemeStar.Primary, ThemeStar.Accent) + "\n")
	b.WriteString("    " + dimStyle.Render("n-body gravity") + "\n")
	b.WriteString("    " + dimStyle.Render("─────────────────────────") + "\n\n")
	for i, sc := range p.scenarios {
		desc := sc.Description
		if len([]rune(desc)) > 40 {
			desc = string([]rune(desc)[:37]) + "..."
		}
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), nameStyle.Render(fmt.Sprintf("%-12s", sc.Name)), descStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", dimStyle.Render(fmt.Sprintf("%-12s", sc.Name)), dimStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + dimStyle.Render("mode ") + nameStyle.Render(p.mode.String()) + "\n")
	if p.err != nil {
		b.WriteString("\n    " + errStyle.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyStyle.Render("j/k") + dimStyle.Render(" navigate  ") +
		keyStyle.Render("m") + dimStyle.Render(" mode  ") +
		keyStyle.Render("enter") + dimStyle.Render(" start  ") +
		keyStyle.Render("esc") + dimStyle.Render(" back  ") +
		keyStyle.Render("q") + dimStyle.Render(" quit") + "\n")
	return b.String()
}

// RunPicker opens the scenario menu in the terminal.
func RunPicker(scenarios []Scenario, build BuildFunc) error {
	_, err := tea.NewProgram(NewPicker(scenarios, build), tea.WithAltScreen()).Run()
	return err
}
