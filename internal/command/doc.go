// ============================================================================
// nucmd - Command Registry and Invocation Engine
// ============================================================================
//
// Package:     command
// Description: Overloaded command registry with named and positional dispatch
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

/*
Package command registers named, possibly overloaded operations and invokes
them from string arguments.

A Command groups one or more Usages. Each Usage wraps an Invocable: a Go
function plus the ordered list of Params it takes. Callers supply either a set
of named arguments or an ordered list; the Registry picks the Usage whose
parameter shape fits, coerces the raw values into the declared types and calls
the function.

	reg := command.New(command.Options{})
	err := reg.RegisterObject(command.ProviderFunc(func() []command.Definition {
		return []command.Definition{
			command.Define("echo", "returns what is passed.",
				func(msg string) string { return msg },
				command.Required("msg", command.String)),
			command.Define("echo", "adds two numbers.",
				func(a, b int) string { return strconv.Itoa(a + b) },
				command.Required("a", command.Int), command.Required("b", command.Int)),
		}
	}))

	out, found := reg.Invoke("echo", map[string]string{"a": "1", "b": "2"}) // "3", true

Resolution is a two-phase filter for both dispatch paths: usages whose
parameter names (named dispatch) or arity band (positional dispatch) fit the
call are tried in registration order, and the first one whose arguments
coerce cleanly wins.

Per-call failures never escape as Go errors from Invoke: an unknown name
reports found=false, every other failure is rendered as output text. Only
registration returns errors.
*/
package command
