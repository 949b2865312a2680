package main

import (
	"os"
)

// Version information set by ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
