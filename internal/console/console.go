// Package console draws the live pad grid in the terminal.
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PixPMusic/gopher-linkb/internal/keys"
	"github.com/PixPMusic/gopher-linkb/internal/keystate"
)

const refreshInterval = 100 * time.Millisecond

var (
	accent = lipgloss.Color("#39FF14")
	muted  = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C0C0C0"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent)
)

// Source provides grid snapshots. engine.Engine implements it.
type Source interface {
	Snapshot(ctx context.Context) (keystate.Snapshot, error)
}

// Model is the bubbletea model of the console view.
type Model struct {
	ctx     context.Context
	source  Source
	lastKey func() string

	snap  keystate.Snapshot
	ready bool
	err   error
	width int
}

type tickMsg time.Time

type snapshotMsg struct {
	snap keystate.Snapshot
	err  error
}

// New creates a console model. lastKey may be nil.
func New(ctx context.Context, source Source, lastKey func() string) Model {
	return Model{ctx: ctx, source: source, lastKey: lastKey}
}

func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.source.Snapshot(m.ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		return m, m.fetch()

	case snapshotMsg:
		m.err = msg.err
		if msg.err == nil {
			m.snap = msg.snap
			m.ready = true
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("LinKB"))
	if m.ready {
		b.WriteString(statusStyle.Render(m.status()))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	if m.ready {
		b.WriteString(boxStyle.Render(m.grid()))
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.footer()))
	}

	b.WriteString(helpStyle.Render("q: quit"))
	return b.String()
}

func (m Model) status() string {
	events := "on"
	if !m.snap.KeyEvents {
		events = "paused"
	}
	return fmt.Sprintf("%s  key events %s  repeat %v / %v",
		m.snap.Layer, events, m.snap.RepeatDelay, m.snap.RepeatRate)
}

func (m Model) cellWidth() int {
	if m.snap.Width == 0 || m.width == 0 {
		return 6
	}
	w := (m.width-2)/m.snap.Width - 1
	return max(3, min(w, 10))
}

// grid renders rows top row first, one key name per cell in its LED colour.
// Keys that come from a layer other than Layer1 are underlined.
func (m Model) grid() string {
	w := m.cellWidth()
	lines := make([]string, 0, m.snap.Height)
	for row := m.snap.Height - 1; row >= 0; row-- {
		cells := make([]string, 0, m.snap.Width)
		for col := 0; col < m.snap.Width; col++ {
			cells = append(cells, renderCell(m.snap.At(col, row), w))
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func renderCell(c keystate.Cell, width int) string {
	name := ""
	if c.Key != keys.Undefined && c.Key != keys.Blocker {
		name = c.Key.Name()
	}
	if len(name) > width {
		name = name[:width]
	}

	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color(c.Color.Hex()))
	if c.FoundOn != keys.Layer1 {
		style = style.Underline(true)
	}
	if c.PadDown {
		style = style.Reverse(true).Bold(true)
	}
	return style.Render(name)
}

func (m Model) footer() string {
	names := make([]string, 0, len(m.snap.Pressed))
	for _, k := range m.snap.Pressed {
		names = append(names, k.Name())
	}
	line := "pressed: " + strings.Join(names, " ")
	if m.lastKey != nil {
		if last := m.lastKey(); last != "" {
			line += "   keyboard: " + last
		}
	}
	return line
}

// Run shows the console until the user quits or ctx is cancelled.
func Run(ctx context.Context, source Source, lastKey func() string) error {
	p := tea.NewProgram(New(ctx, source, lastKey), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
