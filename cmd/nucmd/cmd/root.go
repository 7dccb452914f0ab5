package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	noHistory bool
)

var rootCmd = &cobra.Command{
	Use:   "nucmd",
	Short: "nucmd - command registry and invocation engine",
	Long: `nucmd registers typed commands and runs them from an interactive
console, a websocket server, a gRPC service or the command line.

Front-ends:
  shell    - interactive console with history and completion
  serve    - websocket (JSON) and gRPC command services
  run      - run one command and exit
  call     - run one command on a remote gRPC service`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, TOML or YAML (default: ./configs/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "keep command history in memory only")
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
