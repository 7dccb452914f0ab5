package command

import (
	"fmt"
	"reflect"
	"strings"

	mdwerror "github.com/msto63/nucmd/foundation/core/error"
)

// Output rendered for dispatch outcomes that carry no handler text.
const (
	BadCommandText        = "Bad command."
	InvalidParametersText = "Invalid parameters."
)

// Sentinels for errors.Is. Matching compares codes, so every error built by
// this package is equal to the sentinel of its category.
var (
	ErrUnknownCommand        = mdwerror.New("unknown command").WithCode(mdwerror.CodeUnknownCommand)
	ErrNoMatchingUsage       = mdwerror.New(InvalidParametersText).WithCode(mdwerror.CodeNoMatchingUsage)
	ErrTypeError             = mdwerror.New("type error").WithCode(mdwerror.CodeTypeError)
	ErrMissingParameter      = mdwerror.New("missing parameter").WithCode(mdwerror.CodeMissingParameter)
	ErrArity                 = mdwerror.New("wrong number of arguments").WithCode(mdwerror.CodeArityError)
	ErrHandler               = mdwerror.New("handler error").WithCode(mdwerror.CodeHandlerError)
	ErrRegistration          = mdwerror.New("registration error").WithCode(mdwerror.CodeRegistration)
	ErrUnsupportedReturnType = mdwerror.New("unsupported return type").WithCode(mdwerror.CodeUnsupportedReturnType)
	ErrDuplicateUsage        = mdwerror.New("duplicate usage").WithCode(mdwerror.CodeDuplicateUsage)
)

func unknownCommand(name string) *mdwerror.Error {
	return mdwerror.Newf("unknown command %q", name).
		WithCode(mdwerror.CodeUnknownCommand).
		WithDetail("command", name)
}

func noMatchingUsage(name string) *mdwerror.Error {
	return mdwerror.New(InvalidParametersText).
		WithCode(mdwerror.CodeNoMatchingUsage).
		WithDetail("command", name)
}

func typeError(value any, t Type) *mdwerror.Error {
	return mdwerror.Newf("Type Error: Cannot convert '%v' to a(n) '%s'", value, t.name).
		WithCode(mdwerror.CodeTypeError).
		WithDetail("type", t.name)
}

func enumIntegerError(value string, t Type) *mdwerror.Error {
	return mdwerror.Newf("Type Error: Cannot convert the integer '%s' to the enum '%s', use one of %s",
		value, t.name, strings.Join(t.symbols, ", ")).
		WithCode(mdwerror.CodeTypeError).
		WithDetail("type", t.name)
}

func missingParameter(name string) *mdwerror.Error {
	return mdwerror.Newf("Missing parameter '%s'", name).
		WithCode(mdwerror.CodeMissingParameter).
		WithDetail("parameter", name)
}

func arityError(got, min, max int) *mdwerror.Error {
	var msg string
	if min == max {
		msg = fmt.Sprintf("Expected %d argument(s), got %d", min, got)
	} else {
		msg = fmt.Sprintf("Expected %d to %d arguments, got %d", min, max, got)
	}
	return mdwerror.New(msg).
		WithCode(mdwerror.CodeArityError).
		WithDetail("got", got)
}

func handlerError(cause error) *mdwerror.Error {
	return mdwerror.New("Handler Error").
		WithCode(mdwerror.CodeHandlerError).
		WithCause(cause)
}

func registrationError(format string, args ...any) *mdwerror.Error {
	return mdwerror.Newf(format, args...).WithCode(mdwerror.CodeRegistration)
}

func unsupportedReturnType(fnType reflect.Type) *mdwerror.Error {
	return mdwerror.Newf("handler %s must return string or (string, error)", fnType).
		WithCode(mdwerror.CodeUnsupportedReturnType)
}

func duplicateUsage(name string, required int) *mdwerror.Error {
	return mdwerror.Newf("command %q already has a usage with %d required parameter(s)", name, required).
		WithCode(mdwerror.CodeDuplicateUsage).
		WithDetail("command", name)
}
