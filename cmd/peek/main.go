// Package main is the peek entry point.
package main

import (
	"os"

	"github.com/peekdb/peek/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
