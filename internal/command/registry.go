package command

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	mdwerror "github.com/msto63/nucmd/foundation/core/error"
	"github.com/msto63/nucmd/foundation/core/log"
	"github.com/msto63/nucmd/foundation/utils/stringx"
)

// Options configures a Registry
type Options struct {
	Logger *log.Logger
}

// Registry maps command names to commands. All methods are safe for
// concurrent use; handlers run outside the registry lock.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	order    []string
	logger   *log.Logger
}

// New creates an empty registry
func New(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = log.GetDefault()
	}
	return &Registry{
		commands: make(map[string]*Command),
		logger:   opts.Logger.WithField("component", "command-registry"),
	}
}

// Register adds usage to the command called name, creating the command on
// first use. A delegate usage whose required count is already taken by the
// command is rejected.
func (r *Registry) Register(name string, usage *Usage) error {
	if err := prepare(name, usage); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cmd, exists := r.commands[name]; exists && conflicts(cmd.snapshot(), usage) {
		return duplicateUsage(name, usage.RequiredCount())
	}
	r.insertLocked(name, usage)
	return nil
}

// prepare checks name and usage and fills in a missing signature
func prepare(name string, usage *Usage) error {
	if stringx.IsBlank(name) {
		return registrationError("command name cannot be empty")
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return registrationError("command name %q contains whitespace", name)
	}
	if usage == nil || usage.invocable == nil {
		return registrationError("usage for %q has no invocable", name)
	}
	if stringx.IsBlank(usage.signature) {
		usage.signature = strings.TrimSpace(name + " " + usage.invocable.Signature())
	}
	return nil
}

// conflicts reports whether usage may not join existing: delegates need a
// required count of their own.
func conflicts(existing []*Usage, usage *Usage) bool {
	if !usage.invocable.IsDelegate() {
		return false
	}
	for _, u := range existing {
		if u.RequiredCount() == usage.RequiredCount() {
			return true
		}
	}
	return false
}

// insertLocked adds a usage already checked for conflicts; r.mu is held
func (r *Registry) insertLocked(name string, usage *Usage) {
	if cmd, exists := r.commands[name]; exists {
		cmd.add(usage)
	} else {
		r.commands[name] = newCommand(name, usage)
		r.order = append(r.order, name)
	}

	r.logger.Info("command usage registered", log.Fields{
		"command":   name,
		"signature": usage.signature,
		"required":  usage.RequiredCount(),
		"optional":  usage.OptionalCount(),
		"delegate":  usage.invocable.IsDelegate(),
	})
}

// GetCommands returns the command names in registration order
func (r *Registry) GetCommands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// GetCommand returns the command called name
func (r *Registry) GetCommand(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// HasCommand reports whether name is registered
func (r *Registry) HasCommand(name string) bool {
	_, ok := r.GetCommand(name)
	return ok
}

// HasUsage reports whether name has a usage accepting exactly keys
func (r *Registry) HasUsage(name string, keys []string) bool {
	cmd, ok := r.GetCommand(name)
	if !ok {
		return false
	}
	for _, u := range cmd.snapshot() {
		if u.MatchesNamed(keys) {
			return true
		}
	}
	return false
}

// HasOrderedUsage reports whether name has a usage accepting n positional
// arguments
func (r *Registry) HasOrderedUsage(name string, n int) bool {
	cmd, ok := r.GetCommand(name)
	if !ok {
		return false
	}
	for _, u := range cmd.snapshot() {
		if u.MatchesPositional(n) {
			return true
		}
	}
	return false
}

// RemoveCommand deletes name and all its usages. Removing an unknown name is
// a no-op.
func (r *Registry) RemoveCommand(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.commands[name]; !ok {
		return
	}
	delete(r.commands, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Info("command removed", log.Fields{"command": name})
}

// ResolveNamed selects the usage of name that fits the given keys and binds
// args to it. Among fitting usages the first in registration order that
// binds wins; if none binds, the first candidate's error is returned.
func (r *Registry) ResolveNamed(name string, args map[string]any) (*Usage, []reflect.Value, error) {
	cmd, ok := r.GetCommand(name)
	if !ok {
		return nil, nil, unknownCommand(name)
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var firstErr error
	for _, u := range cmd.snapshot() {
		if !u.MatchesNamed(keys) {
			continue
		}
		values, err := u.invocable.BindNamed(args)
		if err == nil {
			return u, values, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}
	return nil, nil, noMatchingUsage(name)
}

// ResolveOrdered is ResolveNamed for positional arguments; usages are
// filtered by arity.
func (r *Registry) ResolveOrdered(name string, args []any) (*Usage, []reflect.Value, error) {
	cmd, ok := r.GetCommand(name)
	if !ok {
		return nil, nil, unknownCommand(name)
	}

	var firstErr error
	for _, u := range cmd.snapshot() {
		if !u.MatchesPositional(len(args)) {
			continue
		}
		values, err := u.invocable.BindOrdered(args)
		if err == nil {
			return u, values, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}
	return nil, nil, noMatchingUsage(name)
}

// Args carries the arguments of one dispatch, either named or ordered.
type Args struct {
	Named   map[string]any
	Ordered []any
	named   bool
}

// NamedArgs wraps textual named arguments
func NamedArgs(m map[string]string) Args {
	named := make(map[string]any, len(m))
	for k, v := range m {
		named[k] = v
	}
	return Args{Named: named, named: true}
}

// NamedValues wraps named arguments that may already be typed
func NamedValues(m map[string]any) Args {
	if m == nil {
		m = map[string]any{}
	}
	return Args{Named: m, named: true}
}

// OrderedArgs wraps textual positional arguments
func OrderedArgs(s []string) Args {
	ordered := make([]any, len(s))
	for i, v := range s {
		ordered[i] = v
	}
	return Args{Ordered: ordered}
}

// OrderedValues wraps positional arguments that may already be typed
func OrderedValues(s []any) Args {
	return Args{Ordered: s}
}

// IsNamed reports whether the arguments are named
func (a Args) IsNamed() bool { return a.named }

// Len returns the number of arguments
func (a Args) Len() int {
	if a.named {
		return len(a.Named)
	}
	return len(a.Ordered)
}

// Result is the outcome of one dispatch.
type Result struct {
	Output string
	Found  bool
	Usage  *Usage
	// Err is the dispatch or handler failure behind Output, if any.
	Err error
}

// Dispatch resolves and invokes name. Failures are rendered into Output;
// Found is false only when name is not registered.
func (r *Registry) Dispatch(name string, args Args) Result {
	return r.DispatchContext(context.Background(), name, args)
}

// DispatchContext is Dispatch passing ctx to handlers that take a context.
func (r *Registry) DispatchContext(ctx context.Context, name string, args Args) Result {
	var (
		usage  *Usage
		values []reflect.Value
		err    error
	)
	if args.named {
		usage, values, err = r.ResolveNamed(name, args.Named)
	} else {
		usage, values, err = r.ResolveOrdered(name, args.Ordered)
	}

	if err != nil {
		if errors.Is(err, ErrUnknownCommand) {
			r.logger.Debug("unknown command", log.Fields{"command": name})
			return Result{Found: false, Err: err}
		}
		r.logger.Debug("command resolution failed", log.Fields{
			"command": name,
			"args":    args.Len(),
			"code":    mdwerror.GetCode(err).String(),
			"error":   err,
		})
		return Result{Output: err.Error(), Found: true, Err: err}
	}

	out, err := usage.invocable.CallContext(ctx, values)
	if err != nil {
		r.logger.WarnWithErr("command handler failed", err, log.Fields{
			"command":   name,
			"signature": usage.signature,
		})
		return Result{Output: err.Error(), Found: true, Usage: usage, Err: err}
	}
	return Result{Output: out, Found: true, Usage: usage}
}

// Invoke dispatches name with textual named arguments.
func (r *Registry) Invoke(name string, args map[string]string) (string, bool) {
	res := r.Dispatch(name, NamedArgs(args))
	return res.Output, res.Found
}

// InvokeValues dispatches name with named arguments; values already of the
// parameter's Go type pass through without conversion.
func (r *Registry) InvokeValues(name string, args map[string]any) (string, bool) {
	res := r.Dispatch(name, NamedValues(args))
	return res.Output, res.Found
}

// InvokeOrdered dispatches name with textual positional arguments.
func (r *Registry) InvokeOrdered(name string, args []string) (string, bool) {
	res := r.Dispatch(name, OrderedArgs(args))
	return res.Output, res.Found
}
