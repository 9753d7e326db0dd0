package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "diffx",
	Short: "Semantic diff for structured data",
	Long: `diffx compares structured data files (JSON, YAML, TOML, CSV, INI, XML)
by meaning rather than by text, reporting added, removed, modified and
type-changed elements.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errDifferencesFound marks a successful comparison that found differences.
// Exit codes follow the diff(1) convention: 0 identical, 1 differences,
// 2 error.
var errDifferencesFound = errors.New("differences found")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errDifferencesFound) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
