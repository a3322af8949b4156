package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON    bool
	flagNoColor bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the redactable CLI.
var rootCmd = &cobra.Command{
	Use:           "redactable",
	Short:         "Plan and inspect schema-directed redaction",
	Long:          "Redactable loads YAML schema documents, runs the redaction planner over them and reports per-field strategies, capability bounds and planning diagnostics.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the redactable version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "redactable", version)
	},
}
