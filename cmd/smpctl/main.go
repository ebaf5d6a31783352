// Command smpctl is a thin external driver that exercises the simulator's
// public API the way the teacher's test/*/main.go programs exercise
// core/api: it is not part of the core runtime, only a demonstration of how
// one would be wired together.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	manifestPath string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "smpctl",
	Short: "Drive an ECSS-SMP simulator from a bootstrap manifest",
	Long: `smpctl loads a YAML bootstrap manifest (libraries plus an initial
component tree), advances the simulator through its lifecycle, and exposes
inspection commands over the running component hierarchy.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "path to the bootstrap manifest YAML file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
