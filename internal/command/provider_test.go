package command

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

type dice struct {
	faces int
}

func (d *dice) Roll(count int) string {
	return fmt.Sprintf("%dd%d", count, d.faces)
}

func (d *dice) Commands() []Definition {
	return []Definition{
		{Handler: d.Roll, Params: []Param{Optional("count", Int, 1)}, Help: "rolls the dice"},
		Define("faces", "number of faces", func() string { return fmt.Sprint(d.faces) }),
	}
}

func TestRegisterObject(t *testing.T) {
	r := newTestRegistry()
	if err := r.RegisterObject(&dice{faces: 6}); err != nil {
		t.Fatalf("RegisterObject() error = %v", err)
	}

	if got := r.GetCommands(); !reflect.DeepEqual(got, []string{"roll", "faces"}) {
		t.Errorf("GetCommands() = %v, want [roll faces]", got)
	}
	if got, _ := r.InvokeOrdered("roll", nil); got != "1d6" {
		t.Errorf("roll = %q, want 1d6", got)
	}
	if got, _ := r.Invoke("roll", map[string]string{"count": "3"}); got != "3d6" {
		t.Errorf("roll count=3 = %q, want 3d6", got)
	}

	cmd, _ := r.GetCommand("roll")
	if help := cmd.Usages()[0].Help(); help != "rolls the dice" {
		t.Errorf("Help() = %q", help)
	}
}

func TestRegisterObjectIsAtomic(t *testing.T) {
	r := newTestRegistry()
	p := ProviderFunc(func() []Definition {
		return []Definition{
			Define("good", "", func() string { return "ok" }),
			Define("bad", "", func() int { return 1 }),
		}
	})

	err := r.RegisterObject(p)
	if !errors.Is(err, ErrRegistration) || !errors.Is(err, ErrUnsupportedReturnType) {
		t.Fatalf("RegisterObject() error = %v, want registration error caused by return type", err)
	}
	if r.HasCommand("good") {
		t.Error("no definition of a rejected provider should be registered")
	}
}

func TestRegisterObjectDuplicateDelegates(t *testing.T) {
	noop := func(string, []string) string { return "" }

	t.Run("within the provider", func(t *testing.T) {
		r := newTestRegistry()
		p := ProviderFunc(func() []Definition {
			return []Definition{
				Define("good", "", func() string { return "ok" }),
				DefineDelegate("dup", "dup", "", 0, noop),
				DefineDelegate("dup", "dup", "", 0, noop),
			}
		})
		if err := r.RegisterObject(p); !errors.Is(err, ErrDuplicateUsage) {
			t.Fatalf("RegisterObject() error = %v, want duplicate usage", err)
		}
		for _, name := range []string{"good", "dup"} {
			if r.HasCommand(name) {
				t.Errorf("HasCommand(%q) = true after a rejected provider", name)
			}
		}
	})

	t.Run("against the registry", func(t *testing.T) {
		r := newTestRegistry()
		if err := r.RegisterObject(ProviderFunc(func() []Definition {
			return []Definition{DefineDelegate("dup", "dup", "", 0, noop)}
		})); err != nil {
			t.Fatalf("RegisterObject() error = %v", err)
		}
		p := ProviderFunc(func() []Definition {
			return []Definition{
				Define("good", "", func() string { return "ok" }),
				DefineDelegate("dup", "dup", "", 0, noop),
			}
		})
		if err := r.RegisterObject(p); !errors.Is(err, ErrDuplicateUsage) {
			t.Fatalf("RegisterObject() error = %v, want duplicate usage", err)
		}
		if r.HasCommand("good") {
			t.Error("HasCommand(good) = true after a rejected provider")
		}
		if got := r.GetCommands(); len(got) != 1 || got[0] != "dup" {
			t.Errorf("GetCommands() = %v, want [dup]", got)
		}
	})

	t.Run("distinct arities", func(t *testing.T) {
		r := newTestRegistry()
		p := ProviderFunc(func() []Definition {
			return []Definition{
				DefineDelegate("list", "list", "", 0, noop),
				DefineDelegate("list", "list <x>", "", 1, noop),
			}
		})
		if err := r.RegisterObject(p); err != nil {
			t.Fatalf("RegisterObject() error = %v", err)
		}
		if cmd, _ := r.GetCommand("list"); cmd.Len() != 2 {
			t.Errorf("usages = %d, want 2", cmd.Len())
		}
	})
}

func TestRegisterObjectValidation(t *testing.T) {
	tests := []struct {
		name string
		defs []Definition
	}{
		{"closure without name", []Definition{{Handler: func() string { return "" }}}},
		{"nothing to call", []Definition{{Name: "empty"}}},
		{"handler and delegate", []Definition{{
			Name:     "both",
			Handler:  func() string { return "" },
			Delegate: func(string, []string) string { return "" },
		}}},
		{"params do not fit", []Definition{Define("x", "", func(a int) string { return "" })}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry()
			defs := tt.defs
			err := r.RegisterObject(ProviderFunc(func() []Definition { return defs }))
			if !errors.Is(err, ErrRegistration) {
				t.Errorf("RegisterObject() error = %v, want registration error", err)
			}
		})
	}

	if err := newTestRegistry().RegisterObject(nil); !errors.Is(err, ErrRegistration) {
		t.Errorf("RegisterObject(nil) error = %v", err)
	}
}

func TestRegisterObjectDelegate(t *testing.T) {
	r := newTestRegistry()
	err := r.RegisterObject(ProviderFunc(func() []Definition {
		return []Definition{
			DefineDelegate("greet", "greet <who>", "says hello", 1,
				func(command string, args []string) string { return command + " " + args[0] }),
		}
	}))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := r.InvokeOrdered("greet", []string{"bob"}); got != "greet bob" {
		t.Errorf("greet = %q", got)
	}
}

func TestLoadContinuesPastFailures(t *testing.T) {
	r := newTestRegistry()
	bad := ProviderFunc(func() []Definition {
		return []Definition{Define("broken", "", "not a function")}
	})

	err := r.Load(bad, &dice{faces: 20})
	if !errors.Is(err, ErrRegistration) {
		t.Errorf("Load() error = %v, want registration error", err)
	}
	if !r.HasCommand("roll") || r.HasCommand("broken") {
		t.Errorf("GetCommands() = %v", r.GetCommands())
	}
	if err := newTestRegistry().Load(&dice{faces: 4}); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}

func TestHandlerName(t *testing.T) {
	d := &dice{}
	if got, ok := handlerName(d.Roll); !ok || got != "roll" {
		t.Errorf("handlerName(d.Roll) = %q, %v, want roll", got, ok)
	}
	if got, ok := handlerName(roll); !ok || got != "roll" {
		t.Errorf("handlerName(roll) = %q, %v", got, ok)
	}
	if _, ok := handlerName(func() string { return "" }); ok {
		t.Error("closures have no usable name")
	}
}
