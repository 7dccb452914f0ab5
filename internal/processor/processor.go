package processor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	mdwerror "github.com/msto63/nucmd/foundation/core/error"
	"github.com/msto63/nucmd/foundation/core/log"
	"github.com/msto63/nucmd/foundation/utils/stringx"
	"github.com/msto63/nucmd/internal/args"
	"github.com/msto63/nucmd/internal/command"
)

const tracerName = "github.com/msto63/nucmd/internal/processor"

// Rendered replies for lines that never reach the registry
const (
	SyntaxErrorText  = "Syntax error."
	ShuttingDownText = "Shutting Down."
)

// Options configures a Processor
type Options struct {
	Logger *log.Logger
	// Tracer defaults to the global otel tracer provider
	Tracer trace.Tracer
	// Args controls how Run classifies tokens; defaults to args.InlineOptions
	Args args.Options
	// Registry to use; a fresh one is created when nil
	Registry *command.Registry
}

// Processor dispatches commands into a single shared registry
type Processor struct {
	registry *command.Registry
	logger   *log.Logger
	tracer   trace.Tracer
	argOpts  args.Options

	builtins map[string]struct{}

	mu       sync.Mutex
	comms    []Communicator
	cancel   context.CancelFunc
	stopping bool
}

// New creates a processor and registers its built-in commands
func New(opts Options) (*Processor, error) {
	if opts.Logger == nil {
		opts.Logger = log.GetDefault()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}
	if opts.Args.NamePrefix == 0 {
		opts.Args = args.InlineOptions()
	}
	if opts.Registry == nil {
		opts.Registry = command.New(command.Options{Logger: opts.Logger})
	}

	p := &Processor{
		registry: opts.Registry,
		logger:   opts.Logger.WithField("component", "processor"),
		tracer:   opts.Tracer,
		argOpts:  opts.Args,
		builtins: make(map[string]struct{}),
	}

	b := &builtins{p: p}
	for _, def := range b.Commands() {
		p.builtins[def.Name] = struct{}{}
	}
	if err := p.registry.RegisterObject(b); err != nil {
		return nil, mdwerror.Wrap(err, "failed to register built-in commands")
	}
	return p, nil
}

// Registry returns the shared registry
func (p *Processor) Registry() *command.Registry { return p.registry }

// RegisterObject registers the commands of a provider
func (p *Processor) RegisterObject(provider command.Provider) error {
	return p.registry.RegisterObject(provider)
}

// Load registers several providers, continuing past failures
func (p *Processor) Load(providers ...command.Provider) error {
	return p.registry.Load(providers...)
}

// RemoveCommands removes the named commands
func (p *Processor) RemoveCommands(names ...string) {
	for _, name := range names {
		p.registry.RemoveCommand(name)
	}
}

// Commands lists the registered command names in registration order
func (p *Processor) Commands() []string {
	return p.registry.GetCommands()
}

// IsBuiltin reports whether name is one of the processor's own commands
func (p *Processor) IsBuiltin(name string) bool {
	_, ok := p.builtins[name]
	return ok
}

// BuiltinCount is the number of distinct built-in command names
func (p *Processor) BuiltinCount() int { return len(p.builtins) }

// Run parses line and dispatches it. Lines carrying named arguments use
// named dispatch, where flags count as "true"; mixing named and unnamed
// values is a syntax error. Every other line dispatches its tokens
// positionally.
func (p *Processor) Run(ctx context.Context, line string) Reply {
	parsed, err := args.ParseLine(line, p.argOpts)
	if err != nil {
		return Reply{Output: err.Error(), Found: true, Err: err}
	}
	if parsed.Command == "" {
		return Reply{Found: true}
	}

	if parsed.HasNamed() {
		if len(parsed.Unnamed) > 0 {
			return Reply{Command: parsed.Command, Output: SyntaxErrorText, Found: true}
		}
		named := make(map[string]string, len(parsed.Named)+len(parsed.Flags))
		for _, flag := range parsed.Flags {
			named[flag] = "true"
		}
		for k, v := range parsed.Named {
			named[k] = v
		}
		return p.ProcessNamed(ctx, parsed.Command, named)
	}
	return p.Process(ctx, parsed.Command, parsed.Raw)
}

// Process dispatches positional arguments
func (p *Processor) Process(ctx context.Context, name string, ordered []string) Reply {
	return p.dispatch(ctx, name, command.OrderedArgs(ordered))
}

// ProcessNamed dispatches named arguments
func (p *Processor) ProcessNamed(ctx context.Context, name string, named map[string]string) Reply {
	return p.dispatch(ctx, name, command.NamedArgs(named))
}

func (p *Processor) dispatch(ctx context.Context, name string, a command.Args) Reply {
	id := uuid.NewString()
	mode := "ordered"
	if a.IsNamed() {
		mode = "named"
	}
	if Restricted(ctx, name) {
		p.logger.WithInvocation(name, id).Warn("command refused", log.Fields{"dispatch": mode})
		return Reply{InvocationID: id, Command: name, Output: NotAllowedText, Found: true, Err: notAllowed(name)}
	}

	ctx, span := p.tracer.Start(ctx, "command "+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("command.name", name),
			attribute.String("command.invocation_id", id),
			attribute.String("command.dispatch", mode),
			attribute.Int("command.args", a.Len()),
		))
	defer span.End()

	start := time.Now()
	res := p.registry.DispatchContext(ctx, name, a)
	reply := Reply{
		InvocationID: id,
		Command:      name,
		Output:       res.Output,
		Found:        res.Found,
		Err:          res.Err,
		Duration:     time.Since(start),
	}
	if !res.Found {
		reply.Output = command.BadCommandText
	}

	span.SetAttributes(attribute.Bool("command.found", reply.Found))
	if reply.Err != nil {
		span.RecordError(reply.Err)
		span.SetStatus(codes.Error, mdwerror.GetCode(reply.Err).String())
	}

	logger := p.logger.WithInvocation(name, id)
	fields := log.Fields{
		"dispatch": mode,
		"args":     a.Len(),
		"found":    reply.Found,
		"duration": reply.Duration.String(),
	}
	switch {
	case !reply.Found:
		logger.Debug("unknown command", fields)
	case errors.Is(reply.Err, command.ErrHandler):
		logger.WarnWithErr("command failed", reply.Err, fields)
	case reply.Err != nil:
		logger.Debug("command rejected", fields.With("code", mdwerror.GetCode(reply.Err).String()))
	default:
		logger.Info("command executed", fields)
	}
	return reply
}

// Attach adds a communicator started by Start
func (p *Processor) Attach(c Communicator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.comms = append(p.comms, c)
}

// Start runs every attached communicator and blocks until all have
// returned. When one communicator ends, ctx is cancelled or the exit
// command runs, the others are stopped as well.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return mdwerror.New("processor already started").WithCode(mdwerror.CodeInternal)
	}
	comms := append([]Communicator(nil), p.comms...)
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.stopping = false
	p.mu.Unlock()

	if len(comms) == 0 {
		cancel()
		p.reset()
		return mdwerror.New("no communicator attached").WithCode(mdwerror.CodeInvalidInput)
	}

	p.logger.Info("processor starting", log.Fields{
		"communicators": len(comms),
		"commands":      len(p.Commands()),
	})

	var (
		wg   sync.WaitGroup
		errs = make([]error, len(comms))
	)
	for i, c := range comms {
		wg.Add(1)
		go func(i int, c Communicator) {
			defer wg.Done()
			if err := c.Start(ctx, p); err != nil && !errors.Is(err, context.Canceled) {
				errs[i] = mdwerror.Wrap(err, c.Name()+" communicator failed")
			}
			cancel()
		}(i, c)
	}

	<-ctx.Done()
	for _, c := range comms {
		if err := c.Stop(); err != nil {
			p.logger.WarnWithErr("communicator stop failed", err, log.Fields{"communicator": c.Name()})
		}
	}
	wg.Wait()
	p.reset()

	p.logger.Info("processor stopped")
	return errors.Join(errs...)
}

// Stop asks a running Start to stop all communicators. It does not wait.
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil && !p.stopping {
		p.stopping = true
		p.cancel()
	}
}

func (p *Processor) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancel = nil
	p.stopping = false
}

// CommandNames returns registered names starting with prefix, ignoring case
func (p *Processor) CommandNames(prefix string) []string {
	var out []string
	for _, name := range p.Commands() {
		if stringx.HasPrefixIgnoreCase(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}
