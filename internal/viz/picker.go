package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7fd67f")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#667766"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#cce6cc"))
	menuIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#556655"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// Picker is a menu of named choices. After the program exits, Chosen
// reports the selection, or "" when the user quit.
type Picker struct {
	title  string
	names  []string
	desc   map[string]string
	cursor int
	chosen string
}

func NewPicker(title string, names []string, desc map[string]string) Picker {
	return Picker{title: title, names: names, desc: desc}
}

func (p Picker) Chosen() string { return p.chosen }

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.names)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.names) > 0 {
			p.chosen = p.names[p.cursor]
		}
		return p, tea.Quit
	}
	return p, nil
}

func (p Picker) View() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(p.title)) + "\n")
	b.WriteString("    " + menuSub.Render("daily patch water, carbon and nitrogen") + "\n")
	b.WriteString("    " + menuSub.Render("──────────────────────────────────────") + "\n\n")
	for i, name := range p.names {
		if i == p.cursor {
			fmt.Fprintf(&b, "    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-12s", name)), menuDesc.Render(p.desc[name]))
		} else {
			fmt.Fprintf(&b, "      %s  %s\n", menuIdle.Render(fmt.Sprintf("%-12s", name)), menuIdle.Render(p.desc[name]))
		}
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuSub.Render(" navigate  ") +
		menuKey.Render("enter") + menuSub.Render(" select  ") +
		menuKey.Render("q") + menuSub.Render(" quit") + "\n")
	return b.String()
}
