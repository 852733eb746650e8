package main

import (
	"os"

	"github.com/gatehouse-sh/gatehouse/internal/cmd"
)

func main() {
	// Execute prints the failure itself; the exit code is all that is
	// left to set.
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
