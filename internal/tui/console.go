package tui

import (
	"context"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/msto63/nucmd/internal/history"
	"github.com/msto63/nucmd/internal/processor"
	"github.com/msto63/nucmd/pkg/core/logging"
)

// Options configures a Console
type Options struct {
	Prompt  string
	History history.Store
	Logger  *logging.Logger
	// Input and Output default to the terminal
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

// Console runs the model as a processor communicator
type Console struct {
	opts Options

	mu      sync.Mutex
	program *tea.Program
	stopped bool
}

// New creates a console communicator
func New(opts Options) *Console {
	return &Console{opts: opts}
}

// Name implements processor.Communicator
func (c *Console) Name() string { return "console" }

// Start runs the console until the user quits, ctx is done or Stop is
// called.
func (c *Console) Start(ctx context.Context, d processor.Dispatcher) error {
	model := NewModel(ctx, d, ModelOptions{
		Prompt:  c.opts.Prompt,
		History: c.opts.History,
		Logger:  c.opts.Logger,
	})

	var programOpts []tea.ProgramOption
	if c.opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(c.opts.Input))
	}
	if c.opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(c.opts.Output))
	}
	if c.opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(model, programOpts...)

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.program = p
	c.mu.Unlock()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.Quit()
		case <-done:
		}
	}()

	_, err := p.Run()
	return err
}

// Stop quits a running console. It does not block.
func (c *Console) Stop() error {
	c.mu.Lock()
	c.stopped = true
	p := c.program
	c.mu.Unlock()
	if p != nil {
		p.Quit()
	}
	return nil
}
