// Package tui is the interactive front end: a confirmation gate followed
// by live progress of a reap.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/gha-reaper/internal/model"
	"github.com/altinukshini/gha-reaper/internal/report"
	"github.com/altinukshini/gha-reaper/internal/tui/confirm"
	"github.com/altinukshini/gha-reaper/internal/ui"
)

type Options struct {
	// Scope names what is being reaped, e.g. "app my-reaper".
	Scope string
	// Details are shown in the confirmation dialog.
	Details []string
	// Run performs the reap. It is called once, after confirmation, from
	// a command goroutine.
	Run func() error
	// Abort cancels a Run in flight.
	Abort func()
}

type phase int

const (
	phaseConfirm phase = iota
	phaseRunning
	phaseDone
)

type App struct {
	opts    Options
	job     *job
	phase   phase
	confirm confirm.Model
	spinner spinner.Model
	table   table.Model

	rows       []model.AuditRow
	repos      int
	fetched    int
	candidates int
	skipped    int
	current    string
	confirmed  bool
	err        error

	width  int
	height int
}

var columns = []table.Column{
	{Title: "Repository", Width: 28},
	{Title: "Workflow Title", Width: 32},
	{Title: "Run", Width: 7},
	{Title: "Run Id", Width: 12},
	{Title: "Elapsed", Width: 10},
	{Title: "Outcome", Width: 8},
}

func NewApp(opts Options) App {
	km := table.DefaultKeyMap()
	km.LineUp = ui.Keys.Up
	km.LineDown = ui.Keys.Down
	km.PageUp = ui.Keys.PageUp
	km.PageDown = ui.Keys.PageDown

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithKeyMap(km),
		table.WithHeight(10),
	)

	return App{
		opts:    opts,
		job:     newJob(opts.Run),
		confirm: confirm.New("Cancel stale workflow runs?", opts.Details...),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ui.StyleInfo)),
		table:   t,
	}
}

func (a App) Init() tea.Cmd { return nil }

// Confirmed reports whether the user let the reap start.
func (a App) Confirmed() bool { return a.confirmed }

// Err is the reap's fatal error as shown on screen, if any.
func (a App) Err() error { return a.err }

// Wait blocks until a confirmed reap has returned, even when the program
// quit first, and returns its error. It must only be called after the
// program has exited.
func (a App) Wait() error {
	if !a.confirmed {
		return nil
	}
	return a.job.wait()
}

func (a App) runCmd() tea.Cmd {
	j := a.job
	return func() tea.Msg {
		return ui.ReapDoneMsg{Err: j.run()}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.table.SetHeight(max(a.height-6, 3))
		a.table.SetWidth(a.width)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, ui.Keys.Quit) && (a.phase != phaseConfirm || msg.String() == "ctrl+c") {
			if a.phase == phaseRunning && a.opts.Abort != nil {
				a.opts.Abort()
			}
			return a, tea.Quit
		}
		if a.phase == phaseConfirm {
			var cmd tea.Cmd
			a.confirm, cmd = a.confirm.Update(msg)
			return a, cmd
		}
		var cmd tea.Cmd
		a.table, cmd = a.table.Update(msg)
		return a, cmd

	case confirm.ResultMsg:
		if !msg.Confirmed {
			return a, tea.Quit
		}
		a.confirmed = true
		a.phase = phaseRunning
		return a, tea.Batch(a.spinner.Tick, a.runCmd())

	case spinner.TickMsg:
		if a.phase != phaseRunning {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case ui.RepositoryStartedMsg:
		a.repos++
		a.current = msg.Repository
	case ui.RunsFetchedMsg:
		a.fetched += msg.Count
	case ui.CandidatesSelectedMsg:
		a.candidates += msg.Count
		a.skipped += msg.Skipped
	case ui.RowAppendedMsg:
		a.rows = append(a.rows, msg.Row)
		a.table.SetRows(append(a.table.Rows(), rowFor(msg.Row)))
	case ui.ReapDoneMsg:
		a.phase = phaseDone
		a.err = msg.Err
		a.current = ""
	}
	return a, nil
}

func rowFor(row model.AuditRow) table.Row {
	return table.Row{
		row.Repository,
		row.DisplayTitle,
		"#" + strconv.Itoa(row.RunNumber),
		strconv.FormatInt(row.RunID, 10),
		report.Elapsed(row.ElapsedSeconds),
		report.Outcome(row),
	}
}

func (a App) status() (string, bool) {
	switch a.phase {
	case phaseRunning:
		s := fmt.Sprintf("%s %d repositories, %d runs, %d candidates", a.spinner.View(), a.repos, a.fetched, a.candidates)
		if a.current != "" {
			s += " | " + a.current
		}
		return s, false
	case phaseDone:
		if a.err != nil {
			return "stopped early: " + a.err.Error(), true
		}
		s := fmt.Sprintf("done: %d repositories, %d runs, %d candidates", a.repos, a.fetched, a.candidates)
		if a.skipped > 0 {
			s += fmt.Sprintf(", %d unreadable start times", a.skipped)
		}
		return s, false
	default:
		return "waiting for confirmation", false
	}
}

func (a App) View() string {
	width := a.width
	if width == 0 {
		width = 100
	}

	if a.phase == phaseConfirm {
		return lipgloss.Place(width, max(a.height, 12), lipgloss.Center, lipgloss.Center, a.confirm.View())
	}

	s := report.Summarize(a.rows)
	var b strings.Builder
	b.WriteString(RenderHeader(a.opts.Scope, s.Stopped, s.Failed, s.DryRun, width))
	b.WriteString("\n")
	if len(a.rows) == 0 {
		b.WriteString(ui.StyleMuted.Render("  no runs cancelled yet"))
	} else {
		b.WriteString(ui.StylePane.Render(a.table.View()))
	}
	b.WriteString("\n")
	status, failed := a.status()
	b.WriteString(RenderStatusBar(status, failed, "q quit", width))
	return b.String()
}
