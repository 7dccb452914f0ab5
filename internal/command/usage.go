package command

// Usage is one callable shape of a command: an Invocable plus its display
// signature and help text.
type Usage struct {
	signature string
	help      string
	invocable *Invocable

	required map[string]struct{}
	optional map[string]struct{}
}

// NewUsage creates a usage around inv. An empty signature is rendered from
// the parameter list when the usage is registered.
func NewUsage(signature, help string, inv *Invocable) *Usage {
	u := &Usage{
		signature: signature,
		help:      help,
		invocable: inv,
		required:  make(map[string]struct{}),
		optional:  make(map[string]struct{}),
	}
	if inv != nil {
		for _, p := range inv.params {
			if p.Required {
				u.required[p.Name] = struct{}{}
			} else {
				u.optional[p.Name] = struct{}{}
			}
		}
	}
	return u
}

// NewDelegateUsage creates a usage around a raw Delegate taking arity
// positional arguments.
func NewDelegateUsage(name, signature, help string, arity int, fn Delegate) (*Usage, error) {
	inv, err := NewDelegate(name, arity, fn)
	if err != nil {
		return nil, err
	}
	return NewUsage(signature, help, inv), nil
}

// Signature returns the display signature
func (u *Usage) Signature() string { return u.signature }

// Help returns the help text
func (u *Usage) Help() string { return u.help }

// Invocable returns the wrapped invocable
func (u *Usage) Invocable() *Invocable { return u.invocable }

// RequiredCount returns the number of required parameters
func (u *Usage) RequiredCount() int { return len(u.required) }

// OptionalCount returns the number of optional parameters
func (u *Usage) OptionalCount() int { return len(u.optional) }

// MatchesNamed reports whether keys fit this usage: every key names a
// declared parameter and every required parameter is present.
func (u *Usage) MatchesNamed(keys []string) bool {
	present := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		_, req := u.required[k]
		_, opt := u.optional[k]
		if !req && !opt {
			return false
		}
		present[k] = struct{}{}
	}
	for name := range u.required {
		if _, ok := present[name]; !ok {
			return false
		}
	}
	return true
}

// MatchesPositional reports whether n arguments fall within the usage's
// required to required+optional band.
func (u *Usage) MatchesPositional(n int) bool {
	return n >= len(u.required) && n <= len(u.required)+len(u.optional)
}
