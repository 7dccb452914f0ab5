// Package tui is the interactive console communicator: a scrollback
// viewport above a one-line prompt, with history recall and command name
// completion.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/nucmd/internal/history"
	"github.com/msto63/nucmd/internal/processor"
	"github.com/msto63/nucmd/pkg/core/logging"
	"github.com/msto63/nucmd/pkg/core/version"
)

// chrome is the number of rows taken by header, input box and status bar
const chrome = 6

// entryKind selects how a scrollback entry is rendered
type entryKind int

const (
	entryCommand entryKind = iota
	entryOutput
	entryError
	entryCandidates
)

type entry struct {
	kind entryKind
	text string
}

// Model is the console model
type Model struct {
	ctx     context.Context
	d       processor.Dispatcher
	store   history.Store
	logger  *logging.Logger
	prompt  string
	maxRows int

	width  int
	height int
	ready  bool
	busy   bool

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	entries []entry

	// recall is oldest first; pos == len(recall) means editing a new line
	recall []string
	pos    int
	draft  string
}

// ModelOptions configures a Model
type ModelOptions struct {
	Prompt  string
	History history.Store
	Logger  *logging.Logger
	// Scrollback caps the kept entries, 0 keeps 1000
	Scrollback int
}

// NewModel creates a console model dispatching to d
func NewModel(ctx context.Context, d processor.Dispatcher, opts ModelOptions) Model {
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("nucmd-console")
	}
	if opts.Scrollback <= 0 {
		opts.Scrollback = 1000
	}

	ti := textinput.New()
	ti.Prompt = opts.Prompt
	ti.Placeholder = "type a command, Tab completes, help lists commands"
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	m := Model{
		ctx:      ctx,
		d:        d,
		store:    opts.History,
		logger:   opts.Logger,
		prompt:   opts.Prompt,
		maxRows:  opts.Scrollback,
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(80, 20),
	}
	m.loadRecall()
	return m
}

func (m *Model) loadRecall() {
	if m.store == nil {
		return
	}
	recent, err := m.store.Recent(m.ctx, 500)
	if err != nil {
		m.logger.Warn("could not read history", "error", err)
		return
	}
	for i := len(recent) - 1; i >= 0; i-- {
		m.recall = append(m.recall, recent[i].Line)
	}
	m.pos = len(m.recall)
}

// resultMsg carries the reply of a dispatched line
type resultMsg struct {
	line  string
	reply processor.Reply
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line == "" {
				return m, nil
			}
			m.push(entry{kind: entryCommand, text: m.prompt + line})
			m.remember(line)
			m.busy = true
			return m, tea.Batch(m.run(line), m.spinner.Tick)

		case tea.KeyTab:
			c := Complete(m.input.Value(), m.d.Commands())
			m.input.SetValue(c.Value)
			m.input.CursorEnd()
			if len(c.Candidates) > 0 {
				m.push(entry{kind: entryCandidates, text: strings.Join(c.Candidates, "  ")})
			}
			return m, nil

		case tea.KeyUp:
			m.recallPrev()
			return m, nil

		case tea.KeyDown:
			m.recallNext()
			return m, nil

		case tea.KeyCtrlL:
			m.entries = nil
			m.refresh()
			return m, nil

		case tea.KeyPgUp, tea.KeyPgDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chrome)
		m.input.Width = max(10, msg.Width-len(m.prompt)-6)
		m.ready = true
		m.refresh()

	case resultMsg:
		m.busy = false
		m.show(msg.reply)
		if m.ctx.Err() != nil {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.busy {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// run dispatches line off the update loop
func (m Model) run(line string) tea.Cmd {
	ctx, d, store, logger := m.ctx, m.d, m.store, m.logger
	return func() tea.Msg {
		if store != nil {
			e := history.Entry{Timestamp: time.Now(), Source: "console", Line: line}
			if err := store.Append(ctx, e); err != nil {
				logger.Warn("could not record history", "error", err)
			}
		}
		return resultMsg{line: line, reply: d.Run(ctx, line)}
	}
}

func (m *Model) show(reply processor.Reply) {
	if reply.Output == "" {
		return
	}
	kind := entryOutput
	if reply.Err != nil || !reply.Found {
		kind = entryError
	}
	m.push(entry{kind: kind, text: reply.Output})
}

func (m *Model) push(e entry) {
	m.entries = append(m.entries, e)
	if over := len(m.entries) - m.maxRows; over > 0 {
		m.entries = append([]entry(nil), m.entries[over:]...)
	}
	m.refresh()
}

func (m *Model) remember(line string) {
	if n := len(m.recall); n == 0 || m.recall[n-1] != line {
		m.recall = append(m.recall, line)
	}
	m.pos = len(m.recall)
	m.draft = ""
}

func (m *Model) recallPrev() {
	if m.pos == 0 {
		return
	}
	if m.pos == len(m.recall) {
		m.draft = m.input.Value()
	}
	m.pos--
	m.input.SetValue(m.recall[m.pos])
	m.input.CursorEnd()
}

func (m *Model) recallNext() {
	if m.pos >= len(m.recall) {
		return
	}
	m.pos++
	if m.pos == len(m.recall) {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(m.recall[m.pos])
	}
	m.input.CursorEnd()
}

func (m *Model) refresh() {
	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		switch e.kind {
		case entryCommand:
			b.WriteString(CommandStyle.Render(e.text))
		case entryError:
			b.WriteString(RenderError(e.text))
		case entryCandidates:
			b.WriteString(CandidateStyle.Render(e.text))
		default:
			b.WriteString(OutputStyle.Render(e.text))
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var s strings.Builder
	s.WriteString(RenderTitle("nucmd " + version.Platform))
	s.WriteString("\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	s.WriteString(FocusedInputStyle.Render(m.input.View()))
	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m Model) renderFooter() string {
	help := "Enter: run • Tab: complete • ↑/↓: history • Ctrl+L: clear • Ctrl+C: quit"
	state := fmt.Sprintf("%d commands", len(m.d.Commands()))
	if m.busy {
		state = m.spinner.View() + " running"
	}
	gap := max(0, m.width-lipgloss.Width(help)-lipgloss.Width(state)-4)
	return StatusBarStyle.Width(m.width).Render(help + strings.Repeat(" ", gap) + state)
}
