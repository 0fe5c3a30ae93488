package confirm

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/gha-reaper/internal/ui"
)

type ResultMsg struct {
	Confirmed bool
}

// Model is a yes/no gate. It defaults to "No".
type Model struct {
	Title   string
	Details []string
	active  bool
	yes     bool
}

func New(title string, details ...string) Model {
	return Model{Title: title, Details: details, active: true}
}

func (m Model) IsActive() bool { return m.active }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, ui.Keys.Confirm):
		return m.resolve(true)
	case key.Matches(keyMsg, ui.Keys.Decline):
		return m.resolve(false)
	}
	switch keyMsg.String() {
	case "enter":
		return m.resolve(m.yes)
	case "tab", "left", "right", "h", "l":
		m.yes = !m.yes
	}
	return m, nil
}

func (m Model) resolve(confirmed bool) (Model, tea.Cmd) {
	m.active = false
	return m, func() tea.Msg { return ResultMsg{Confirmed: confirmed} }
}

func (m Model) View() string {
	if !m.active {
		return ""
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorWarning).
		Padding(1, 2).
		Width(60)

	title := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorWarning).Render(m.Title)

	yes := lipgloss.NewStyle().Padding(0, 1)
	no := lipgloss.NewStyle().Padding(0, 1)
	if m.yes {
		yes = yes.Bold(true).Background(ui.ColorSuccess).Foreground(lipgloss.Color("#F9FAFB"))
		no = no.Foreground(ui.ColorMuted)
	} else {
		yes = yes.Foreground(ui.ColorMuted)
		no = no.Bold(true).Background(ui.ColorFailure).Foreground(lipgloss.Color("#F9FAFB"))
	}

	var b strings.Builder
	b.WriteString(title + "\n\n")
	for _, d := range m.Details {
		b.WriteString(d + "\n")
	}
	b.WriteString("\n" + yes.Render("Yes") + "  " + no.Render("No") + "\n\n")
	b.WriteString(ui.StyleMuted.Render("y/n to answer, tab to switch, enter to choose"))
	return box.Render(b.String())
}
