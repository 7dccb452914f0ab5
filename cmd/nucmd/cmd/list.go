package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [-i|-e] [partial]",
	Short: "Lists the available commands",
	Long: `Lists the registered commands, optionally filtered.

  -i   built-in commands only
  -e   external commands only
  partial filters names case-insensitively`,
	DisableFlagParsing: true,
	SilenceErrors:      true,
	RunE:               runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background(), appOptions{})
	if err != nil {
		printError("startup", err)
		return err
	}
	defer a.Close()

	return report(cmd, a.processor.Process(cmd.Context(), "list", args))
}
