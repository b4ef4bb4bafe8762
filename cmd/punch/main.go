package main

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"

	"github.com/runnerr0/punch/internal/cli"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		// go-flags already prints its own parse errors.
		if _, ok := err.(*goflags.Error); !ok {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
