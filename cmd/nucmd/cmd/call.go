package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/nucmd/foundation/core/log"
	"github.com/msto63/nucmd/internal/args"
	"github.com/msto63/nucmd/internal/rpc"
	"github.com/msto63/nucmd/pkg/core/logging"
)

var (
	callTarget  string
	callTimeout time.Duration
	callList    bool
)

var callCmd = &cobra.Command{
	Use:   "call [command] [args...]",
	Short: "Runs one command on a remote gRPC service",
	Long: `Runs one command on a running "nucmd serve" and prints its output.

Arguments follow the same rules as "nucmd run".

Examples:
  nucmd call echo hello
  nucmd call --target 10.0.0.5:9765 roll -sides=20
  nucmd call --list`,
	SilenceErrors: true,
	RunE:          runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringVarP(&callTarget, "target", "t", "", "service address (default: grpc.host:grpc.port from the config)")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 30*time.Second, "call timeout")
	callCmd.Flags().BoolVarP(&callList, "list", "l", false, "list the remote commands")
}

func runCall(cmd *cobra.Command, argv []string) error {
	if len(argv) == 0 && !callList {
		return cmd.Help()
	}

	target := callTarget
	if target == "" {
		cfg, err := loadConfig()
		if err != nil {
			printError("config", err)
			return err
		}
		target = cfg.GRPCAddress()
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := logging.Wrap(logging.NewLogger(logging.LoggerConfig{
		ServiceName: "nucmd-call",
		Level:       level,
		Format:      log.FormatText.String(),
	}), "nucmd-call")

	client, err := rpc.Dial(target, logger)
	if err != nil {
		printError("connect", err)
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()

	if callList {
		names, err := client.Commands(ctx)
		if err != nil {
			printError("list", err)
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
		return nil
	}

	req, err := callRequest(argv)
	if err != nil {
		printError("arguments", err)
		return err
	}
	res, err := client.Invoke(ctx, req)
	if err != nil {
		printError("call", err)
		return err
	}
	if res.Output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.Output)
	}
	if res.Failed() {
		return errCommandFailed
	}
	return nil
}

// callRequest builds the remote request the way dispatchArgs dispatches
// locally
func callRequest(argv []string) (rpc.InvokeRequest, error) {
	name, rest := argv[0], argv[1:]
	parsed, err := args.Parse(rest, args.InlineOptions())
	if err != nil {
		return rpc.InvokeRequest{}, err
	}
	if !parsed.HasNamed() {
		params := make([]interface{}, len(rest))
		for i, v := range rest {
			params[i] = v
		}
		return rpc.InvokeRequest{Command: name, Params: params}, nil
	}
	if len(parsed.Unnamed) > 0 {
		return rpc.InvokeRequest{}, fmt.Errorf("named and positional arguments mixed")
	}
	named := make(map[string]interface{}, len(parsed.Named)+len(parsed.Flags))
	for _, flag := range parsed.Flags {
		named[flag] = "true"
	}
	for k, v := range parsed.Named {
		named[k] = v
	}
	return rpc.InvokeRequest{Command: name, Args: named}, nil
}
