package command

import (
	"reflect"
	"strings"
	"time"
)

// Kind classifies the semantic type of a parameter.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindDuration
	KindEnum
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDuration:
		return "duration"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Type is the semantic type tag of a parameter together with the Go type the
// handler receives.
type Type struct {
	kind    Kind
	name    string
	goType  reflect.Type
	symbols []string
}

// Built-in parameter types.
var (
	String   = Type{kind: KindString, name: "string", goType: reflect.TypeOf("")}
	Int      = Type{kind: KindInt, name: "int", goType: reflect.TypeOf(int(0))}
	Float    = Type{kind: KindFloat, name: "float", goType: reflect.TypeOf(float64(0))}
	Bool     = Type{kind: KindBool, name: "bool", goType: reflect.TypeOf(false)}
	Duration = Type{kind: KindDuration, name: "duration", goType: reflect.TypeOf(time.Duration(0))}
)

// Enum declares an enumeration backed by an integer type. The symbol at index
// i names the value T(i). Only symbols are accepted from text.
func Enum[T ~int](name string, symbols ...string) Type {
	return Type{
		kind:    KindEnum,
		name:    name,
		goType:  reflect.TypeFor[T](),
		symbols: append([]string(nil), symbols...),
	}
}

// Kind returns the semantic kind
func (t Type) Kind() Kind { return t.kind }

// Name returns the display name of the type
func (t Type) Name() string { return t.name }

// String implements fmt.Stringer
func (t Type) String() string { return t.name }

// GoType returns the Go type handed to the handler
func (t Type) GoType() reflect.Type { return t.goType }

// IsEnum reports whether t is an enumeration
func (t Type) IsEnum() bool { return t.kind == KindEnum }

// Symbols returns the enumeration symbols in ordinal order
func (t Type) Symbols() []string {
	return append([]string(nil), t.symbols...)
}

// Symbol returns the name of the enum ordinal v
func (t Type) Symbol(v int) (string, bool) {
	if t.kind != KindEnum || v < 0 || v >= len(t.symbols) {
		return "", false
	}
	return t.symbols[v], true
}

func (t Type) valid() bool {
	if t.goType == nil {
		return false
	}
	if t.kind == KindEnum {
		return len(t.symbols) > 0
	}
	return true
}

// describe renders the type for signatures, listing enum symbols
func (t Type) describe() string {
	if t.kind == KindEnum {
		return t.name + "{" + strings.Join(t.symbols, "|") + "}"
	}
	return t.name
}
