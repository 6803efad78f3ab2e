// Package main provides the entry point for the syncd CLI.
package main

import (
	"os"

	"github.com/aman-cerp/syncd/cmd/syncd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
