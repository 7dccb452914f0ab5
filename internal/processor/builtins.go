package processor

import (
	"fmt"
	"strings"

	"github.com/msto63/nucmd/foundation/utils/stringx"
	"github.com/msto63/nucmd/internal/command"
)

const helpHeader = "\n HELP FORMAT:\n" +
	" <command>\n" +
	"   <calling convention>: <help text>\n"

const helpWidth = 72

// builtins are the processor's own commands, registered like any provider
type builtins struct {
	p *Processor
}

func (b *builtins) Commands() []command.Definition {
	return []command.Definition{
		command.DefineDelegate("exit", "exit", "Exits the session of the shell.", 0, b.exit),
		command.DefineDelegate("help", "help", "Displays help for all commands.", 0, b.help),
		command.DefineDelegate("help", "help <command>", "Displays the help for <command>.", 1, b.help),
		command.DefineDelegate("list", "list", "Displays all commands.", 0, b.list),
		command.DefineDelegate("list", "list <partial_command_name>|-i|-e",
			"If <partial_command_name> is given, all commands containing it are displayed. "+
				"With -i all internal commands are displayed, with -e all external commands.", 1, b.list),
		command.DefineDelegate("list", "list -i|-e <partial_command_name>",
			"Lists the internal (-i) or external (-e) commands containing <partial_command_name>.", 2, b.list),
	}
}

func (b *builtins) exit(string, []string) string {
	b.p.Stop()
	return ShuttingDownText
}

func (b *builtins) help(_ string, params []string) string {
	if len(params) == 0 {
		var sb strings.Builder
		sb.WriteString(helpHeader)
		for _, name := range b.p.Commands() {
			sb.WriteString(b.describe(name))
		}
		return sb.String()
	}

	name := params[0]
	if !b.p.registry.HasCommand(name) {
		return fmt.Sprintf("Could not find command (%s).", name)
	}
	return helpHeader + b.describe(name)
}

func (b *builtins) describe(name string) string {
	cmd, ok := b.p.registry.GetCommand(name)
	if !ok {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n %s\n", name)
	for _, usage := range cmd.Usages() {
		fmt.Fprintf(&sb, "   %s: %s\n", usage.Signature(), stringx.WordWrap(usage.Help(), helpWidth, "       "))
		for _, param := range usage.Invocable().Params() {
			if stringx.IsBlank(param.Help) {
				continue
			}
			fmt.Fprintf(&sb, "       %s: %s\n", param.Name, stringx.WordWrap(param.Help, helpWidth, "         "))
		}
	}
	return sb.String()
}

type listScope int

const (
	scopeAll listScope = iota
	scopeInternal
	scopeExternal
)

func parseScope(s string) (listScope, bool) {
	switch s {
	case "-i":
		return scopeInternal, true
	case "-e":
		return scopeExternal, true
	default:
		return scopeAll, false
	}
}

func (b *builtins) list(_ string, params []string) string {
	scope, partial := scopeAll, ""
	switch len(params) {
	case 1:
		if s, ok := parseScope(params[0]); ok {
			scope = s
		} else {
			partial = params[0]
		}
	case 2:
		s, ok := parseScope(params[0])
		if !ok {
			return fmt.Sprintf("Unknown list option (%s), use -i or -e.", params[0])
		}
		scope, partial = s, params[1]
	}

	var names []string
	for _, name := range b.p.Commands() {
		builtin := b.p.IsBuiltin(name)
		if (scope == scopeInternal && !builtin) || (scope == scopeExternal && builtin) {
			continue
		}
		if partial != "" && !stringx.ContainsIgnoreCase(name, partial) {
			continue
		}
		names = append(names, name)
	}
	return strings.Join(names, "\n")
}
