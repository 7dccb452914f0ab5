package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/msto63/nucmd/internal/command"
)

// CommandNames lists the commands Commands defines
func CommandNames() []string {
	return []string{"loadScript", "runScript", "showScripts", "showScript", "saveHistoryAsScript"}
}

// Commands exposes the script operations as shell commands
func (m *Manager) Commands() []command.Definition {
	file := command.Required("filename", command.String)
	name := command.Required("script", command.String)

	return []command.Definition{
		command.Define("loadScript", "Loads a script for execution.", m.loadScript, file),
		command.Define("runScript", "Runs a loaded script.", m.runScript, name),
		command.Define("showScripts", "Shows all loaded scripts.", m.showScripts),
		command.Define("showScript", "Shows the contents of a script.", m.showScript, name),
		command.Define("saveHistoryAsScript", "Saves all commands in the history as a script.",
			m.saveHistory, file),
	}
}

func (m *Manager) loadScript(filename string) string {
	if _, err := m.Load(filename); err != nil {
		switch {
		case errors.Is(err, ErrOutsideDir):
			return fmt.Sprintf("The file, '%s', is outside the script directory.", filename)
		case errors.Is(err, os.ErrNotExist):
			path, _ := m.resolve(filename)
			return fmt.Sprintf("The file, '%s', does not exist.", path)
		}
		return fmt.Sprintf("Could not load '%s': %v", filename, err)
	}
	return "Done."
}

func (m *Manager) runScript(ctx context.Context, name string) (string, error) {
	if _, ok := m.Get(name); !ok {
		return fmt.Sprintf("Script, '%s', was not loaded.", name), nil
	}
	return m.Run(ctx, name)
}

func (m *Manager) showScripts() string {
	return strings.Join(m.Names(), "\n")
}

func (m *Manager) showScript(name string) string {
	s, ok := m.Get(name)
	if !ok {
		return fmt.Sprintf("Script, %s has not been loaded.", name)
	}
	return strings.Join(s.Lines, "\n")
}

func (m *Manager) saveHistory(ctx context.Context, filename string) (string, error) {
	n, err := m.SaveHistory(ctx, filename)
	switch {
	case errors.Is(err, ErrOutsideDir):
		return fmt.Sprintf("The file, '%s', is outside the script directory.", filename), nil
	case errors.Is(err, os.ErrExist):
		return fmt.Sprintf("File, %s already exists.", filename), nil
	case err != nil:
		return "", err
	}
	return fmt.Sprintf("%d commands have been written to %s", n, filename), nil
}
