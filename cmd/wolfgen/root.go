// Command wolfgen is the CLI front end spec.md §6 names as optional and
// non-core: it builds (or loads) a library and cache, runs the generator
// once, and prints the resulting puzzle.
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var logger = hclog.New(&hclog.LoggerOptions{
	Name:  "wolfgen",
	Level: hclog.Info,
})

var rootCmd = &cobra.Command{
	Use:           "wolfgen",
	Short:         "Generate a Werewolf logic puzzle with a guaranteed unique solution",
	RunE:          runGenerate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wolfgen:", err)
		os.Exit(exitCodeFor(err))
	}
}

func main() {
	Execute()
}
