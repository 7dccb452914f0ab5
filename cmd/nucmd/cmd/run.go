package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/nucmd/internal/args"
	"github.com/msto63/nucmd/internal/processor"
)

const shutdownTimeout = 5 * time.Second

// errCommandFailed makes the process exit non-zero after the output has
// already been printed
var errCommandFailed = errors.New("command failed")

var runScriptFile string

var runCmd = &cobra.Command{
	Use:   "run [command] [args...]",
	Short: "Runs one command and exits",
	Long: `Runs one command and prints its output.

Arguments are positional unless given as -name=value, e.g.
  nucmd run roll 6 2
  nucmd run roll -sides=6 -count=2
  nucmd run --script setup.txt

The exit status is non-zero for unknown commands and failed invocations.`,
	SilenceErrors: true,
	RunE:          runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runScriptFile, "script", "s", "", "run a script file")
}

func runRun(cmd *cobra.Command, argv []string) error {
	if len(argv) == 0 && runScriptFile == "" {
		return cmd.Help()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		printError("startup", err)
		return err
	}
	defer a.Close()

	if runScriptFile != "" {
		s, err := a.scripts.LoadFile(runScriptFile)
		if err != nil {
			printError("loading script", err)
			return err
		}
		out, err := a.scripts.Run(ctx, s.Name)
		if out != "" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		if err != nil {
			printError("running script", err)
			return err
		}
		if len(argv) == 0 {
			return nil
		}
	}

	reply, err := dispatchArgs(ctx, a.processor, argv)
	if err != nil {
		printError("arguments", err)
		return err
	}
	return report(cmd, reply)
}

// dispatchArgs runs process arguments: -name=value pairs dispatch by name,
// bare -flags count as true, everything else is positional.
func dispatchArgs(ctx context.Context, p *processor.Processor, argv []string) (processor.Reply, error) {
	name, rest := argv[0], argv[1:]
	parsed, err := args.Parse(rest, args.InlineOptions())
	if err != nil {
		return processor.Reply{}, err
	}
	if !parsed.HasNamed() {
		return p.Process(ctx, name, rest), nil
	}
	if len(parsed.Unnamed) > 0 {
		return processor.Reply{Command: name, Output: processor.SyntaxErrorText, Found: true,
			Err: errors.New("named and positional arguments mixed")}, nil
	}
	named := make(map[string]string, len(parsed.Named)+len(parsed.Flags))
	for _, flag := range parsed.Flags {
		named[flag] = "true"
	}
	for k, v := range parsed.Named {
		named[k] = v
	}
	return p.ProcessNamed(ctx, name, named), nil
}

func report(cmd *cobra.Command, reply processor.Reply) error {
	if reply.Output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), reply.Output)
	}
	if !reply.Found || reply.Err != nil {
		return errCommandFailed
	}
	return nil
}
