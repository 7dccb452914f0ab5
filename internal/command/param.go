package command

import (
	"fmt"
	"strings"
)

// Param describes one parameter of an Invocable.
type Param struct {
	Name     string
	Type     Type
	Required bool
	// Default is used when an optional parameter is not supplied. A string
	// default is coerced like any argument; nil means the zero value.
	Default any
	Help    string
}

// Required declares a required parameter.
func Required(name string, t Type) Param {
	return Param{Name: name, Type: t, Required: true}
}

// Optional declares an optional parameter with a default value.
func Optional(name string, t Type, def any) Param {
	return Param{Name: name, Type: t, Default: def}
}

// WithHelp returns a copy of p with the given help text.
func (p Param) WithHelp(help string) Param {
	p.Help = help
	return p
}

// Signature renders p as <name:type> when required and [name:type=default]
// when optional.
func (p Param) Signature() string {
	if p.Required {
		return fmt.Sprintf("<%s:%s>", p.Name, p.Type.describe())
	}
	if p.Default == nil {
		return fmt.Sprintf("[%s:%s]", p.Name, p.Type.describe())
	}
	return fmt.Sprintf("[%s:%s=%v]", p.Name, p.Type.describe(), p.Default)
}

func validateParams(params []Param) error {
	seen := make(map[string]struct{}, len(params))
	for i, p := range params {
		if strings.TrimSpace(p.Name) == "" {
			return registrationError("parameter %d has no name", i)
		}
		if strings.ContainsAny(p.Name, " \t\r\n") {
			return registrationError("parameter name %q contains whitespace", p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return registrationError("parameter %q declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
		if !p.Type.valid() {
			return registrationError("parameter %q has no valid type", p.Name)
		}
	}
	return nil
}
