package processor

import (
	"context"

	mdwerror "github.com/msto63/nucmd/foundation/core/error"
)

// NotAllowedText is the reply to a command refused by a restriction
const NotAllowedText = "Not allowed."

// ErrNotAllowed matches replies refused by Restrict
var ErrNotAllowed = mdwerror.New("command not allowed").WithCode(mdwerror.CodeNotAllowed)

type restrictKey struct{}

// Restrict returns a context under which the named commands are refused.
// The restriction follows the context into nested dispatches, so a script
// started under it cannot run them either. Restrictions accumulate.
func Restrict(ctx context.Context, names ...string) context.Context {
	if len(names) == 0 {
		return ctx
	}
	prev, _ := ctx.Value(restrictKey{}).(map[string]struct{})
	set := make(map[string]struct{}, len(prev)+len(names))
	for name := range prev {
		set[name] = struct{}{}
	}
	for _, name := range names {
		set[name] = struct{}{}
	}
	return context.WithValue(ctx, restrictKey{}, set)
}

// Restricted reports whether name is refused under ctx
func Restricted(ctx context.Context, name string) bool {
	set, _ := ctx.Value(restrictKey{}).(map[string]struct{})
	_, ok := set[name]
	return ok
}

func notAllowed(name string) error {
	return mdwerror.Newf("command %q is not allowed here", name).
		WithCode(mdwerror.CodeNotAllowed).
		WithDetail("command", name)
}

// RemoteRestrictions lists the commands refused to remote clients: exit
// unless allowExit is set, followed by extra.
func RemoteRestrictions(allowExit bool, extra ...string) []string {
	var names []string
	if !allowExit {
		names = append(names, "exit")
	}
	return append(names, extra...)
}
