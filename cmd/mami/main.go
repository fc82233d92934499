// Package main is the entry point for the mami CLI.
package main

import (
	"fmt"
	"os"

	"github.com/opsee/mami/cmd/mami/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
