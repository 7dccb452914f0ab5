// Package script loads command scripts from disk and runs them through the
// processor. A script is a text file with one command line per line, or a
// YAML manifest listing its commands.
package script

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/msto63/nucmd/foundation/core/log"
	"github.com/msto63/nucmd/internal/history"
	"github.com/msto63/nucmd/internal/processor"
)

// maxDepth bounds scripts that run other scripts
const maxDepth = 8

// ErrOutsideDir is returned for file names that leave the script directory
var ErrOutsideDir = errors.New("path is outside the script directory")

type depthKey struct{}

// depth returns how many script runs enclose ctx
func depth(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

// Manifest is the YAML form of a script
type Manifest struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Commands    []string `yaml:"commands"`
}

// Script is a loaded script
type Script struct {
	Name        string
	Description string
	Path        string
	Lines       []string
}

// Runner executes one command line
type Runner interface {
	Run(ctx context.Context, line string) processor.Reply
}

// Options configures a Manager
type Options struct {
	// Dir resolves relative file names; defaults to the working directory
	Dir     string
	Runner  Runner
	History history.Store
	Logger  *log.Logger
}

// Manager keeps the loaded scripts
type Manager struct {
	dir     string
	runner  Runner
	history history.Store
	logger  *log.Logger

	mu      sync.RWMutex
	scripts map[string]*Script
	order   []string
}

// NewManager creates a script manager
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = log.GetDefault()
	}
	return &Manager{
		dir:     opts.Dir,
		runner:  opts.Runner,
		history: opts.History,
		logger:  opts.Logger.WithField("component", "script"),
		scripts: make(map[string]*Script),
	}
}

// resolve maps a file name given to a script command into the script
// directory. Names that clean to a path outside it are refused.
func (m *Manager) resolve(filename string) (string, error) {
	dir := m.dir
	if dir == "" {
		dir = "."
	}
	path := filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, filename)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", filename, ErrOutsideDir)
	}
	return path, nil
}

// Parse reads a script. Files ending in .yaml or .yml are manifests; any
// other file holds one command per line. Blank lines and lines starting
// with '#' are skipped.
func Parse(path string, data []byte) (*Script, error) {
	s := &Script{Name: filepath.Base(path), Path: path}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var mf Manifest
		if err := yaml.Unmarshal(data, &mf); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
		if strings.TrimSpace(mf.Name) != "" {
			s.Name = mf.Name
		}
		s.Description = mf.Description
		for _, line := range mf.Commands {
			if keep(line) {
				s.Lines = append(s.Lines, strings.TrimSpace(line))
			}
		}
	default:
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			if line := scanner.Text(); keep(line) {
				s.Lines = append(s.Lines, strings.TrimSpace(line))
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read script: %w", err)
		}
	}
	return s, nil
}

func keep(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && !strings.HasPrefix(trimmed, "#")
}

// Load reads filename from the script directory and stores it under its
// name, replacing an earlier script of the same name.
func (m *Manager) Load(filename string) (*Script, error) {
	path, err := m.resolve(filename)
	if err != nil {
		return nil, err
	}
	return m.LoadFile(path)
}

// LoadFile is Load for a path chosen by the operator, e.g. on the command
// line. It is not limited to the script directory.
func (m *Manager) LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, exists := m.scripts[s.Name]; !exists {
		m.order = append(m.order, s.Name)
	}
	m.scripts[s.Name] = s
	m.mu.Unlock()

	m.logger.Info("script loaded", log.Fields{"script": s.Name, "path": path, "lines": len(s.Lines)})
	return s, nil
}

// Get returns a loaded script
func (m *Manager) Get(name string) (*Script, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scripts[name]
	return s, ok
}

// Names returns the loaded script names in load order
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Run executes every line of a loaded script and joins the non-empty
// outputs with newlines. Nesting is counted along ctx, so only scripts
// started from within each other share a limit.
func (m *Manager) Run(ctx context.Context, name string) (string, error) {
	s, ok := m.Get(name)
	if !ok {
		return "", fmt.Errorf("script %q not loaded", name)
	}
	if m.runner == nil {
		return "", fmt.Errorf("no runner configured")
	}

	d := depth(ctx)
	if d >= maxDepth {
		return "", fmt.Errorf("script nesting deeper than %d", maxDepth)
	}
	ctx = context.WithValue(ctx, depthKey{}, d+1)

	var outputs []string
	for _, line := range s.Lines {
		if err := ctx.Err(); err != nil {
			return strings.Join(outputs, "\n"), err
		}
		reply := m.runner.Run(ctx, line)
		if reply.Output != "" {
			outputs = append(outputs, reply.Output)
		}
	}
	m.logger.Info("script executed", log.Fields{"script": name, "lines": len(s.Lines)})
	return strings.Join(outputs, "\n"), nil
}

// SaveHistory writes the recorded history to filename, oldest line first.
// A .yaml or .yml name produces a manifest. Existing files are never
// overwritten. Returns the number of lines written.
func (m *Manager) SaveHistory(ctx context.Context, filename string) (int, error) {
	path, err := m.resolve(filename)
	if err != nil {
		return 0, err
	}
	if m.history == nil {
		return 0, fmt.Errorf("no history available")
	}
	if _, err := os.Stat(path); err == nil {
		return 0, os.ErrExist
	}

	entries, err := m.history.All(ctx)
	if err != nil {
		return 0, err
	}
	lines := history.Lines(entries)

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		data, err = yaml.Marshal(Manifest{Name: name, Commands: lines})
		if err != nil {
			return 0, err
		}
	default:
		if len(lines) > 0 {
			data = []byte(strings.Join(lines, "\n") + "\n")
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return 0, err
	}
	return len(lines), f.Close()
}
