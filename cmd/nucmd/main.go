package main

import (
	"os"

	"github.com/msto63/nucmd/cmd/nucmd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
