// Package main is the entry point for the teampulse CLI.
package main

import (
	"os"

	"github.com/teampulse/teampulse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
