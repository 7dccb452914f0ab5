package command

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	mdwerror "github.com/msto63/nucmd/foundation/core/error"
)

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// Delegate is the raw handler form used by built-in style commands. It
// receives the command name and the positional arguments as text.
type Delegate func(command string, args []string) string

// Invocable binds a Go function to the ordered list of parameters it takes.
// It is immutable after construction and safe for concurrent use.
type Invocable struct {
	fn           reflect.Value
	fnType       reflect.Type
	returnsError bool
	// takesContext is set when the handler's first argument is a
	// context.Context; it is not a declared parameter
	takesContext bool

	delegate     Delegate
	delegateName string

	params   []Param
	defaults []reflect.Value
	required int
}

// NewInvocable validates handler against params. The handler must be a
// non-variadic function taking exactly one argument per param, each
// assignable from the param's Go type, and returning string or
// (string, error). It may take a leading context.Context, which receives
// the dispatch context.
func NewInvocable(handler any, params ...Param) (*Invocable, error) {
	if handler == nil {
		return nil, registrationError("handler cannot be nil")
	}
	fn := reflect.ValueOf(handler)
	fnType := fn.Type()
	if fnType.Kind() != reflect.Func {
		return nil, registrationError("handler must be a function, got %s", fnType)
	}
	if fn.IsNil() {
		return nil, registrationError("handler cannot be nil")
	}
	if fnType.IsVariadic() {
		return nil, registrationError("variadic handler %s is not supported", fnType)
	}

	returnsError := false
	switch fnType.NumOut() {
	case 1:
		if fnType.Out(0).Kind() != reflect.String {
			return nil, unsupportedReturnType(fnType)
		}
	case 2:
		if fnType.Out(0).Kind() != reflect.String || fnType.Out(1) != errorType {
			return nil, unsupportedReturnType(fnType)
		}
		returnsError = true
	default:
		return nil, unsupportedReturnType(fnType)
	}

	if err := validateParams(params); err != nil {
		return nil, err
	}
	offset := 0
	if fnType.NumIn() > 0 && fnType.In(0) == contextType {
		offset = 1
	}
	if fnType.NumIn()-offset != len(params) {
		return nil, registrationError("handler %s takes %d argument(s), %d parameter(s) declared",
			fnType, fnType.NumIn()-offset, len(params))
	}
	for i, p := range params {
		if !p.Type.goType.AssignableTo(fnType.In(i + offset)) {
			return nil, registrationError("parameter %q of type %s cannot be passed as %s",
				p.Name, p.Type.goType, fnType.In(i+offset))
		}
	}

	inv := &Invocable{
		fn:           fn,
		fnType:       fnType,
		returnsError: returnsError,
		takesContext: offset == 1,
	}
	if err := inv.setParams(params); err != nil {
		return nil, err
	}
	return inv, nil
}

// NewDelegate wraps a raw delegate that takes arity positional string
// arguments named arg1..argN.
func NewDelegate(name string, arity int, fn Delegate) (*Invocable, error) {
	if fn == nil {
		return nil, registrationError("delegate for %q cannot be nil", name)
	}
	if arity < 0 {
		return nil, registrationError("delegate for %q has negative arity", name)
	}
	params := make([]Param, arity)
	for i := range params {
		params[i] = Required(fmt.Sprintf("arg%d", i+1), String)
	}
	inv := &Invocable{delegate: fn, delegateName: name}
	if err := inv.setParams(params); err != nil {
		return nil, err
	}
	return inv, nil
}

func (inv *Invocable) setParams(params []Param) error {
	inv.params = append([]Param(nil), params...)
	inv.defaults = make([]reflect.Value, len(params))
	for i, p := range params {
		if p.Required {
			inv.required++
			continue
		}
		if p.Default == nil {
			inv.defaults[i] = reflect.Zero(p.Type.goType)
			continue
		}
		v, err := Coerce(p.Type, p.Default)
		if err != nil {
			return registrationError("default of parameter %q: %v", p.Name, err)
		}
		inv.defaults[i] = v
	}
	return nil
}

// Params returns a copy of the declared parameters
func (inv *Invocable) Params() []Param {
	return append([]Param(nil), inv.params...)
}

// RequiredCount returns the number of required parameters
func (inv *Invocable) RequiredCount() int { return inv.required }

// OptionalCount returns the number of optional parameters
func (inv *Invocable) OptionalCount() int { return len(inv.params) - inv.required }

// IsDelegate reports whether inv wraps a raw Delegate
func (inv *Invocable) IsDelegate() bool { return inv.delegate != nil }

// Signature renders the parameter list, e.g. "<sides:int> [count:int=1]".
func (inv *Invocable) Signature() string {
	parts := make([]string, len(inv.params))
	for i, p := range inv.params {
		parts[i] = p.Signature()
	}
	return strings.Join(parts, " ")
}

// BindNamed coerces named arguments into the handler's argument list.
// Omitted optional parameters take their defaults. Keys that name no
// parameter are ignored; shape matching is the caller's concern.
func (inv *Invocable) BindNamed(args map[string]any) ([]reflect.Value, error) {
	values := make([]reflect.Value, len(inv.params))
	for i, p := range inv.params {
		raw, ok := args[p.Name]
		if !ok {
			if p.Required {
				return nil, missingParameter(p.Name)
			}
			values[i] = inv.defaults[i]
			continue
		}
		v, err := bindOne(p, raw)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// BindOrdered coerces positional arguments, assigning them to parameters in
// declaration order. Trailing optional parameters take their defaults.
func (inv *Invocable) BindOrdered(args []any) ([]reflect.Value, error) {
	if len(args) < inv.required || len(args) > len(inv.params) {
		return nil, arityError(len(args), inv.required, len(inv.params))
	}
	values := make([]reflect.Value, len(inv.params))
	for i, p := range inv.params {
		if i >= len(args) {
			if p.Required {
				return nil, missingParameter(p.Name)
			}
			values[i] = inv.defaults[i]
			continue
		}
		v, err := bindOne(p, args[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func bindOne(p Param, raw any) (reflect.Value, error) {
	v, err := Coerce(p.Type, raw)
	if err != nil {
		if e, ok := err.(*mdwerror.Error); ok {
			e.WithDetail("parameter", p.Name)
		}
		return reflect.Value{}, err
	}
	return v, nil
}

// Call runs the handler with values produced by BindNamed or BindOrdered. A
// returned error or a panic inside the handler is reported as a handler
// error; Call itself never panics.
func (inv *Invocable) Call(values []reflect.Value) (string, error) {
	return inv.CallContext(context.Background(), values)
}

// CallContext is Call with the context handed to handlers that take one.
func (inv *Invocable) CallContext(ctx context.Context, values []reflect.Value) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = handlerError(fmt.Errorf("panic: %v", r))
		}
	}()

	if len(values) != len(inv.params) {
		return "", arityError(len(values), len(inv.params), len(inv.params))
	}

	if inv.delegate != nil {
		args := make([]string, len(values))
		for i, v := range values {
			args[i] = v.String()
		}
		return inv.delegate(inv.delegateName, args), nil
	}

	if inv.takesContext {
		if ctx == nil {
			ctx = context.Background()
		}
		values = append([]reflect.Value{reflect.ValueOf(&ctx).Elem()}, values...)
	}
	results := inv.fn.Call(values)
	out = results[0].String()
	if inv.returnsError {
		if callErr, _ := results[1].Interface().(error); callErr != nil {
			return "", handlerError(callErr)
		}
	}
	return out, nil
}
