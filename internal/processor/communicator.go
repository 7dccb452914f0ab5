package processor

import (
	"context"
	"time"
)

// Reply is the rendered outcome of one dispatch
type Reply struct {
	InvocationID string
	Command      string
	Output       string
	// Found is false when the command is not registered
	Found    bool
	Err      error
	Duration time.Duration
}

// Dispatcher is the view of the processor communicators work with
type Dispatcher interface {
	// Run parses and dispatches one command line
	Run(ctx context.Context, line string) Reply
	// Process dispatches positional arguments
	Process(ctx context.Context, name string, args []string) Reply
	// ProcessNamed dispatches named arguments
	ProcessNamed(ctx context.Context, name string, args map[string]string) Reply
	// Commands lists the registered command names
	Commands() []string
}

// Communicator is a front-end that reads commands and writes their output.
// Start blocks until ctx is done, Stop is called or the front-end ends on
// its own.
type Communicator interface {
	Name() string
	Start(ctx context.Context, d Dispatcher) error
	Stop() error
}
