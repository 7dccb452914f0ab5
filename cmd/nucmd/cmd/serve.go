package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msto63/nucmd/internal/rpc"
	"github.com/msto63/nucmd/internal/script"
	"github.com/msto63/nucmd/internal/server"
)

var (
	serveWebsocket    bool
	serveGRPC         bool
	serveAllowExit    bool
	serveAllowScripts bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the commands over websocket and gRPC",
	Long: `Serves the registered commands remotely until interrupted.

Services:
  websocket  - JSON messages on ws://<server.host>:<server.port><server.path>
  grpc       - nucmd.v1.CommandService on <grpc.host>:<grpc.port>

Examples:
  nucmd serve                  # both services
  nucmd serve --grpc=false     # websocket only

The script commands read and write files in shell.script_dir and are not
served unless --allow-scripts is given. Remote clients never run exit, not
even from a script, unless --allow-exit is given.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveWebsocket, "websocket", true, "start the websocket service")
	serveCmd.Flags().BoolVar(&serveGRPC, "grpc", true, "start the gRPC service")
	serveCmd.Flags().BoolVar(&serveAllowExit, "allow-exit", false, "let remote clients run the exit command")
	serveCmd.Flags().BoolVar(&serveAllowScripts, "allow-scripts", false, "serve the script commands")
}

func runServe(cmd *cobra.Command, args []string) error {
	if !serveWebsocket && !serveGRPC {
		return errors.New("nothing to serve: enable --websocket or --grpc")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{persistHistory: true, noScriptCommands: !serveAllowScripts})
	if err != nil {
		printError("startup", err)
		return err
	}
	defer a.Close()

	attachServices(a, serveWebsocket, serveGRPC, remotePolicy{allowExit: serveAllowExit, allowScripts: serveAllowScripts})
	a.logger.Info("serving commands")

	if err := a.processor.Start(ctx); err != nil {
		printError("serve", err)
		return err
	}
	return nil
}

// remotePolicy decides which commands remote clients may run
type remotePolicy struct {
	allowExit    bool
	allowScripts bool
}

// restricted lists the commands refused beyond exit
func (rp remotePolicy) restricted() []string {
	if rp.allowScripts {
		return nil
	}
	return script.CommandNames()
}

// attachServices adds the remote communicators to the processor
func attachServices(a *app, websocket, grpc bool, policy remotePolicy) {
	if websocket {
		a.processor.Attach(server.New(server.Options{
			Config:     a.cfg.Server,
			Logger:     a.kv("nucmd-websocket"),
			AllowExit:  policy.allowExit,
			Restricted: policy.restricted(),
			Health:     a.healthChecks(),
		}))
	}
	if grpc {
		a.processor.Attach(rpc.NewServer(rpc.Options{
			Config:     a.cfg.GRPC,
			Logger:     a.kv("nucmd-grpc"),
			AllowExit:  policy.allowExit,
			Restricted: policy.restricted(),
		}))
	}
}
