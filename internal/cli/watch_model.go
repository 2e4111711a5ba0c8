package cli

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/efficiency/internal/cli/formatter"
	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/service"
	"github.com/alexanderramin/efficiency/internal/timer"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type watchKeyMap struct {
	Toggle key.Binding
	Quit   key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultWatchKeys() watchKeyMap {
	return watchKeyMap{
		Toggle: key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause/resume")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// tickMsg carries the generation of the tick chain that produced it, so a
// chain started before a pause cannot keep ticking after a resume.
type tickMsg struct {
	gen int
}

type commandDoneMsg struct {
	res service.CommandResult
	err error
}

// watchModel is the full-screen live view. It re-reads the elapsed time from
// the timer on each tick and only ticks while the session is Running.
type watchModel struct {
	timer    service.TimerService
	interval time.Duration
	keys     watchKeyMap
	help     help.Model

	status timer.Status
	gen    int
	err    error
	width  int
}

func newWatchModel(ts service.TimerService, interval time.Duration) *watchModel {
	if interval <= 0 {
		interval = timer.DefaultRefreshInterval
	}
	return &watchModel{
		timer:    ts,
		interval: interval,
		keys:     defaultWatchKeys(),
		help:     help.New(),
		status:   ts.Status(context.Background()),
	}
}

func (m *watchModel) Init() tea.Cmd {
	return m.scheduleTick()
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			return m, m.toggle()
		}
		return m, nil

	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.status = m.timer.Status(context.Background())
		return m, m.nextTick()

	case commandDoneMsg:
		m.err = msg.err
		m.status = msg.res.Status
		return m, m.scheduleTick()
	}
	return m, nil
}

// scheduleTick starts a new tick chain when Running and retires any older one.
func (m *watchModel) scheduleTick() tea.Cmd {
	m.gen++
	return m.nextTick()
}

func (m *watchModel) nextTick() tea.Cmd {
	if m.status.State != domain.StateRunning {
		return nil
	}
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m *watchModel) toggle() tea.Cmd {
	ts := m.timer
	switch m.status.State {
	case domain.StateRunning:
		return func() tea.Msg {
			res, err := ts.Pause(context.Background())
			return commandDoneMsg{res: res, err: err}
		}
	case domain.StatePaused:
		return func() tea.Msg {
			res, err := ts.Resume(context.Background())
			return commandDoneMsg{res: res, err: err}
		}
	}
	return nil
}

func (m *watchModel) View() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(formatter.FormatStatusLine(m.status))
	b.WriteString("\n")
	if len(m.status.Suspended) > 0 {
		b.WriteString("\n")
		b.WriteString(formatter.FormatStack(m.status.Suspended, m.status.At))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(formatter.Cross(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n  ")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
