// Package main starts the council command line.
package main

import (
	"os"

	"github.com/Iron-Ham/council/internal/cmd"
)

func main() {
	// cobra has already printed the error.
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
