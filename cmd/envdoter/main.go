// Package main is the entry point for the envdoter CLI.
package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/unrss/envdoter/internal/cmd"
)

//go:embed version.txt
var version string

func main() {
	if err := cmd.Execute(cmd.Assets{
		Version: version,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "envdoter:", err)
		os.Exit(1)
	}
}
