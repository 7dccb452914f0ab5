package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func roll(sides, count int) string {
	return fmt.Sprintf("%dd%d", count, sides)
}

func interfaces(values []reflect.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v.Interface()
	}
	return out
}

func TestNewInvocableValidation(t *testing.T) {
	tests := []struct {
		name    string
		handler any
		params  []Param
		wantErr error
	}{
		{"valid", func(s string) string { return s }, []Param{Required("s", String)}, nil},
		{"valid with error", func() (string, error) { return "", nil }, nil, nil},
		{"nil handler", nil, nil, ErrRegistration},
		{"typed nil func", (func() string)(nil), nil, ErrRegistration},
		{"not a function", "hello", nil, ErrRegistration},
		{"variadic", func(s ...string) string { return "" }, nil, ErrRegistration},
		{"int result", func() int { return 0 }, nil, ErrUnsupportedReturnType},
		{"no result", func() {}, nil, ErrUnsupportedReturnType},
		{"two strings", func() (string, string) { return "", "" }, nil, ErrUnsupportedReturnType},
		{"arity mismatch", func(a, b int) string { return "" }, []Param{Required("a", Int)}, ErrRegistration},
		{"type mismatch", func(s string) string { return s }, []Param{Required("s", Int)}, ErrRegistration},
		{"duplicate names", func(a, b int) string { return "" },
			[]Param{Required("a", Int), Required("a", Int)}, ErrRegistration},
		{"blank name", func(a int) string { return "" }, []Param{Required(" ", Int)}, ErrRegistration},
		{"bad default", func(a int) string { return "" }, []Param{Optional("a", Int, "x")}, ErrRegistration},
		{"zero type", func(a int) string { return "" }, []Param{{Name: "a", Required: true}}, ErrRegistration},
		{"interface parameter", func(v any) string { return "" }, []Param{Required("v", Int)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := NewInvocable(tt.handler, tt.params...)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewInvocable() error = %v", err)
				}
				if inv == nil {
					t.Fatal("NewInvocable() returned nil invocable")
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewInvocable() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBindNamedDefaults(t *testing.T) {
	inv, err := NewInvocable(func(i int, s string) string { return "" },
		Required("i", Int), Optional("s", String, ""))
	if err != nil {
		t.Fatal(err)
	}

	values, err := inv.BindNamed(map[string]any{"i": "1"})
	if err != nil {
		t.Fatalf("BindNamed() error = %v", err)
	}
	got := interfaces(values)
	want := []any{1, ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BindNamed() = %v, want %v", got, want)
	}
}

func TestBindNamedErrors(t *testing.T) {
	inv, err := NewInvocable(roll, Required("sides", Int), Optional("count", Int, 1))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := inv.BindNamed(map[string]any{"count": "2"}); !errors.Is(err, ErrMissingParameter) {
		t.Errorf("missing sides: error = %v, want missing parameter", err)
	}
	if _, err := inv.BindNamed(map[string]any{"sides": "six"}); !errors.Is(err, ErrTypeError) {
		t.Errorf("bad sides: error = %v, want type error", err)
	}
}

func TestBindOrdered(t *testing.T) {
	inv, err := NewInvocable(roll, Required("sides", Int), Optional("count", Int, "1"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []any
		want    []any
		wantErr error
	}{
		{"defaults trailing optional", []any{"6"}, []any{6, 1}, nil},
		{"all supplied", []any{"6", "3"}, []any{6, 3}, nil},
		{"typed values", []any{20, 2}, []any{20, 2}, nil},
		{"too few", []any{}, nil, ErrArity},
		{"too many", []any{"1", "2", "3"}, nil, ErrArity},
		{"bad type", []any{"x"}, nil, ErrTypeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := inv.BindOrdered(tt.args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("BindOrdered(%v) error = %v, want %v", tt.args, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BindOrdered(%v) error = %v", tt.args, err)
			}
			if got := interfaces(values); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BindOrdered(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestBindOrderedOptionalBeforeRequired(t *testing.T) {
	inv, err := NewInvocable(func(a, b string) string { return a + b },
		Optional("a", String, "x"), Required("b", String))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := inv.BindOrdered([]any{"1"}); !errors.Is(err, ErrMissingParameter) {
		t.Errorf("BindOrdered() error = %v, want missing parameter", err)
	}
	values, err := inv.BindOrdered([]any{"1", "2"})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := inv.Call(values); got != "12" {
		t.Errorf("Call() = %q, want 12", got)
	}
}

func TestCall(t *testing.T) {
	t.Run("output", func(t *testing.T) {
		inv, _ := NewInvocable(roll, Required("sides", Int), Required("count", Int))
		values, _ := inv.BindOrdered([]any{"6", "2"})
		got, err := inv.Call(values)
		if err != nil || got != "2d6" {
			t.Errorf("Call() = %q, %v, want 2d6, nil", got, err)
		}
	})

	t.Run("returned error", func(t *testing.T) {
		inv, _ := NewInvocable(func() (string, error) { return "ignored", errors.New("boom") })
		got, err := inv.Call(nil)
		if !errors.Is(err, ErrHandler) {
			t.Fatalf("Call() error = %v, want handler error", err)
		}
		if got != "" {
			t.Errorf("Call() output = %q, want empty", got)
		}
		if err.Error() != "Handler Error: boom" {
			t.Errorf("Call() error text = %q", err.Error())
		}
	})

	t.Run("panic", func(t *testing.T) {
		inv, _ := NewInvocable(func() string { panic("kaboom") })
		_, err := inv.Call(nil)
		if !errors.Is(err, ErrHandler) || !strings.Contains(err.Error(), "kaboom") {
			t.Errorf("Call() error = %v, want recovered handler error", err)
		}
	})

	t.Run("wrong value count", func(t *testing.T) {
		inv, _ := NewInvocable(roll, Required("sides", Int), Required("count", Int))
		if _, err := inv.Call(nil); !errors.Is(err, ErrArity) {
			t.Errorf("Call(nil) error = %v, want arity error", err)
		}
	})

	t.Run("context", func(t *testing.T) {
		type key struct{}
		inv, err := NewInvocable(func(ctx context.Context, name string) string {
			v, _ := ctx.Value(key{}).(string)
			return v + " " + name
		}, Required("name", String))
		if err != nil {
			t.Fatalf("NewInvocable() error = %v", err)
		}
		if n := len(inv.Params()); n != 1 {
			t.Errorf("len(Params()) = %d, want 1", n)
		}
		values, _ := inv.BindOrdered([]any{"world"})
		ctx := context.WithValue(context.Background(), key{}, "hello")
		if got, err := inv.CallContext(ctx, values); err != nil || got != "hello world" {
			t.Errorf("CallContext() = %q, %v, want %q", got, err, "hello world")
		}
		if got, _ := inv.Call(values); got != " world" {
			t.Errorf("Call() = %q, want %q", got, " world")
		}
	})
}

func TestDelegate(t *testing.T) {
	var gotName string
	var gotArgs []string
	inv, err := NewDelegate("say", 2, func(command string, args []string) string {
		gotName, gotArgs = command, args
		return strings.Join(args, "+")
	})
	if err != nil {
		t.Fatal(err)
	}
	if !inv.IsDelegate() || inv.RequiredCount() != 2 {
		t.Fatalf("IsDelegate() = %v, RequiredCount() = %d", inv.IsDelegate(), inv.RequiredCount())
	}

	values, err := inv.BindOrdered([]any{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := inv.Call(values)
	if err != nil || out != "a+b" {
		t.Errorf("Call() = %q, %v, want a+b", out, err)
	}
	if gotName != "say" || !reflect.DeepEqual(gotArgs, []string{"a", "b"}) {
		t.Errorf("delegate saw %q %v", gotName, gotArgs)
	}

	if _, err := NewDelegate("x", 0, nil); !errors.Is(err, ErrRegistration) {
		t.Errorf("NewDelegate(nil) error = %v, want registration error", err)
	}
}

func TestInvocableSignature(t *testing.T) {
	inv, _ := NewInvocable(roll, Required("sides", Int), Optional("count", Int, 1))
	if got, want := inv.Signature(), "<sides:int> [count:int=1]"; got != want {
		t.Errorf("Signature() = %q, want %q", got, want)
	}

	paint, _ := NewInvocable(func(c color) string { return "" }, Required("color", colorType))
	if got, want := paint.Signature(), "<color:color{Red|Green|Blue}>"; got != want {
		t.Errorf("Signature() = %q, want %q", got, want)
	}
}
