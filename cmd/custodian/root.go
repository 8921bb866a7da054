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
	Use:   "custodian",
	Short: "Custodian - ticket intake and retention lifecycle tool",
	Long: `Custodian manages the lifecycle of IT help desk ticket files, from
guided intake through retention-driven archival and deletion.

It provides:
  - An interactive triage wizard that writes technician-ready tickets
  - Retention sweeps that archive, verify, and delete expired tickets
  - An append-only audit trail (JSONL or SQLite) for every action
  - Legal holds that exempt tickets from deletion, optionally git-synced
  - A scheduler daemon with Prometheus metrics and health probes

For more information, visit: https://github.com/helpdesk-hq/custodian`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
