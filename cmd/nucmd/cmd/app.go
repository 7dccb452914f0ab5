package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	mdwlog "github.com/msto63/nucmd/foundation/core/log"
	"github.com/msto63/nucmd/internal/args"
	"github.com/msto63/nucmd/internal/command"
	"github.com/msto63/nucmd/internal/demo"
	"github.com/msto63/nucmd/internal/history"
	"github.com/msto63/nucmd/internal/processor"
	"github.com/msto63/nucmd/internal/script"
	"github.com/msto63/nucmd/pkg/core/config"
	"github.com/msto63/nucmd/pkg/core/health"
	"github.com/msto63/nucmd/pkg/core/logging"
	"github.com/msto63/nucmd/pkg/core/telemetry"
	"github.com/msto63/nucmd/pkg/core/version"
)

// app bundles everything a front-end needs
type app struct {
	cfg       *config.Config
	logger    *mdwlog.Logger
	history   history.Store
	processor *processor.Processor
	scripts   *script.Manager

	closers           []io.Closer
	shutdownTelemetry telemetry.ShutdownFunc
}

// appOptions tunes newApp per front-end
type appOptions struct {
	// logToFile sends logs to a file even without log_file, so they do
	// not draw over the console
	logToFile bool
	// persistHistory opens the SQLite history unless --no-history is set
	persistHistory bool
	// noScriptCommands keeps the script commands out of the processor; the
	// manager still loads scripts named by the operator
	noScriptCommands bool
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a := &app{cfg: cfg}

	if err := a.setupLogger(opts.logToFile); err != nil {
		a.Close()
		return nil, err
	}
	mdwlog.SetDefault(a.logger)

	a.shutdownTelemetry, err = telemetry.SetupFromEnv(ctx, cfg.General.Name)
	if err != nil {
		a.logger.WarnWithErr("tracing disabled", err)
	}

	if opts.persistHistory && !noHistory {
		store, err := history.NewSQLiteStore(history.SQLiteConfig{
			Path:  cfg.Shell.HistoryPath,
			Limit: cfg.Shell.HistoryLimit,
		})
		if err != nil {
			a.logger.WarnWithErr("history kept in memory", err, mdwlog.Fields{"path": cfg.Shell.HistoryPath})
			a.history = history.NewMemoryStore(cfg.Shell.HistoryLimit)
		} else {
			a.history = store
		}
	} else {
		a.history = history.NewMemoryStore(cfg.Shell.HistoryLimit)
	}
	a.closers = append(a.closers, a.history)

	prefix, _ := utf8.DecodeRuneInString(cfg.Shell.NamePrefix)
	a.processor, err = processor.New(processor.Options{
		Logger: a.logger,
		Args:   args.Options{NamePrefix: prefix, Delimiter: '='},
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.scripts = script.NewManager(script.Options{
		Dir:     cfg.Shell.ScriptDir,
		Runner:  a.processor,
		History: a.history,
		Logger:  a.logger,
	})
	providers := []command.Provider{demo.New(0)}
	if !opts.noScriptCommands {
		providers = append(providers, a.scripts)
	}
	if err := a.processor.Load(providers...); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) setupLogger(logToFile bool) error {
	level := a.cfg.General.LogLevel
	if verbose {
		level = "debug"
	}

	var output io.Writer = os.Stderr
	path := a.cfg.General.LogFile
	if path == "" && logToFile {
		path = filepath.Join(a.cfg.General.DataDir, "nucmd.log")
	}
	if path != "" {
		f, err := logging.OpenLogFile(path)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, f)
		output = f
	}

	a.logger = logging.NewLogger(logging.LoggerConfig{
		ServiceName: a.cfg.General.Name,
		Level:       level,
		Format:      a.cfg.General.LogFormat,
		Output:      output,
	})
	return nil
}

// healthChecks reports on the registered commands and the history store
func (a *app) healthChecks() *health.Registry {
	reg := health.NewRegistry(a.cfg.General.Name, version.Get().Version)
	reg.Register(health.Commands("commands", a.processor.Commands, a.processor.BuiltinCount()))
	reg.Register(health.Probe("history", func(ctx context.Context) error {
		_, err := a.history.Recent(ctx, 1)
		return err
	}))
	return reg
}

// kv returns a key/value logger for components that log that way
func (a *app) kv(name string) *logging.Logger {
	return logging.Wrap(a.logger, name)
}

// Close releases the history store, log file and tracer
func (a *app) Close() {
	if a.shutdownTelemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.shutdownTelemetry(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			printError("flushing traces", err)
		}
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}
