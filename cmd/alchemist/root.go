package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "alchemist",
	Short: "Data Alchemist - validation and consistency engine for scheduling data",
	Long: `Data Alchemist checks client, worker and task spreadsheets before they are
used for resource allocation.

It normalizes loosely typed cells, then reports:
  - Structural problems such as missing columns and duplicate IDs
  - Field rule violations such as out-of-range priorities and malformed lists
  - Cross-entity problems such as unknown task references and missing skills

Many findings carry an automatic fix. A run may proceed only when all three
entity sets are present and no error remains.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
