package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/nucmd/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Shows the version",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "nucmd v%s\n", info.Version)
		fmt.Fprintf(out, "  Git Commit: %s\n", info.Commit)
		fmt.Fprintf(out, "  Build Date: %s\n", info.BuildDate)
		fmt.Fprintf(out, "  Go Version: %s\n", info.GoVersion)
		fmt.Fprintf(out, "  OS/Arch:    %s\n", info.Platform)
		fmt.Fprintf(out, "  Components: shell %s, websocket %s, grpc %s\n",
			version.ComponentVersion("shell"),
			version.ComponentVersion("websocket"),
			version.ComponentVersion("grpc"))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
