package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msto63/nucmd/internal/tui"
)

var (
	shellServe   bool
	shellScripts []string
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Starts the interactive console",
	Long: `Starts the interactive console.

Keys:
  Enter     - run the line
  Tab       - complete the command name
  Up/Down   - walk the history
  Ctrl+L    - clear the scrollback
  Ctrl+C    - quit (as does the exit command)

With --serve the websocket and gRPC services run alongside the console
and share its commands.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().BoolVar(&shellServe, "serve", false, "also start the websocket and gRPC services")
	shellCmd.Flags().StringSliceVar(&shellScripts, "load", nil, "scripts to load at startup")
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{logToFile: true, persistHistory: true})
	if err != nil {
		printError("startup", err)
		return err
	}
	defer a.Close()

	for _, file := range shellScripts {
		if _, err := a.scripts.LoadFile(file); err != nil {
			printError("loading script "+file, err)
		}
	}

	a.processor.Attach(tui.New(tui.Options{
		Prompt:    a.cfg.Shell.Prompt,
		History:   a.history,
		Logger:    a.kv("nucmd-console"),
		AltScreen: true,
	}))
	if shellServe {
		attachServices(a, true, true, remotePolicy{})
	}

	if err := a.processor.Start(ctx); err != nil {
		printError("console", err)
		return err
	}
	return nil
}
