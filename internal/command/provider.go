package command

import (
	"errors"
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/msto63/nucmd/foundation/core/log"
)

// Definition declares one usage of a command for RegisterObject. Either
// Handler (with Params) or Delegate (with Arity) must be set.
type Definition struct {
	// Name of the command. When empty it is derived from the handler's
	// function name, e.g. (*Dice).Roll becomes "roll".
	Name      string
	Signature string
	Help      string

	Handler any
	Params  []Param

	Delegate Delegate
	Arity    int
}

// Define builds a handler-backed definition
func Define(name, help string, handler any, params ...Param) Definition {
	return Definition{Name: name, Help: help, Handler: handler, Params: params}
}

// DefineDelegate builds a delegate-backed definition
func DefineDelegate(name, signature, help string, arity int, fn Delegate) Definition {
	return Definition{Name: name, Signature: signature, Help: help, Delegate: fn, Arity: arity}
}

// Provider exposes a set of command definitions.
type Provider interface {
	Commands() []Definition
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func() []Definition

// Commands implements Provider
func (f ProviderFunc) Commands() []Definition { return f() }

// RegisterObject registers every definition exposed by p. All definitions
// are validated before any is registered; an invalid definition aborts the
// whole provider.
func (r *Registry) RegisterObject(p Provider) error {
	if p == nil {
		return registrationError("provider cannot be nil")
	}

	defs := p.Commands()
	names := make([]string, len(defs))
	usages := make([]*Usage, len(defs))
	for i, def := range defs {
		name, usage, err := buildUsage(def)
		if err != nil {
			return err
		}
		if err := prepare(name, usage); err != nil {
			return err
		}
		names[i] = name
		usages[i] = usage
	}

	r.mu.Lock()
	pending := make(map[string][]*Usage)
	for i, usage := range usages {
		var existing []*Usage
		if cmd, ok := r.commands[names[i]]; ok {
			existing = append(existing, cmd.Usages()...)
		}
		existing = append(existing, pending[names[i]]...)
		if conflicts(existing, usage) {
			r.mu.Unlock()
			return duplicateUsage(names[i], usage.RequiredCount())
		}
		pending[names[i]] = append(pending[names[i]], usage)
	}
	for i, usage := range usages {
		r.insertLocked(names[i], usage)
	}
	r.mu.Unlock()

	r.logger.Debug("provider registered", log.Fields{
		"provider":    providerName(p),
		"definitions": len(defs),
	})
	return nil
}

// Load registers every provider, continuing past failures. The returned
// error joins all registration errors.
func (r *Registry) Load(providers ...Provider) error {
	var errs []error
	for _, p := range providers {
		if err := r.RegisterObject(p); err != nil {
			r.logger.ErrorWithErr("provider registration failed", err, log.Fields{
				"provider": providerName(p),
			})
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildUsage(def Definition) (string, *Usage, error) {
	name := def.Name
	if strings.TrimSpace(name) == "" {
		derived, ok := handlerName(def.Handler)
		if !ok {
			return "", nil, registrationError("definition has no name and none can be derived from its handler")
		}
		name = derived
	}

	var (
		inv *Invocable
		err error
	)
	switch {
	case def.Delegate != nil && def.Handler != nil:
		return "", nil, registrationError("command %q declares both a handler and a delegate", name)
	case def.Delegate != nil:
		inv, err = NewDelegate(name, def.Arity, def.Delegate)
	default:
		inv, err = NewInvocable(def.Handler, def.Params...)
	}
	if err != nil {
		return "", nil, registrationError("unable to register %q", name).WithCause(err)
	}
	return name, NewUsage(def.Signature, def.Help, inv), nil
}

var closureName = regexp.MustCompile(`^(func)?\d+$`)

// handlerName derives a command name from a named function or method value.
func handlerName(handler any) (string, bool) {
	if handler == nil {
		return "", false
	}
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "", false
	}
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return "", false
	}
	full := strings.TrimSuffix(fn.Name(), "-fm")
	short := full[strings.LastIndex(full, ".")+1:]
	if short == "" || closureName.MatchString(short) {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(short)
	return string(unicode.ToLower(r)) + short[size:], true
}

func providerName(p Provider) string {
	if p == nil {
		return "<nil>"
	}
	return reflect.TypeOf(p).String()
}
