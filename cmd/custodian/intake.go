package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"helpdesk-hq/custodian/pkg/cli"
	"helpdesk-hq/custodian/pkg/config"
	"helpdesk-hq/custodian/pkg/intake"
	"helpdesk-hq/custodian/pkg/store"
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Record a new ticket interactively",
	Long: `Walk through the triage wizard and write a technician-ready ticket.

The wizard asks for the reporter's details, the issue category, and the
category's follow-up questions, then shows the finished summary for
confirmation. Confirmed tickets are written to the configured store root
under today's date partition.

Examples:
  # Record a ticket with the default config
  custodian intake

  # Record a ticket into a different store
  custodian intake --config /etc/custodian/config.yaml`,
	RunE: runIntake,
}

func init() {
	rootCmd.AddCommand(intakeCmd)
}

func runIntake(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	logger, err := setupLogging(cfg)
	if err != nil {
		return cli.NewCommandError("intake", err)
	}

	st, err := store.NewStore(cfg.Store.Root)
	if err != nil {
		return cli.NewCommandError("intake", err)
	}

	wizard, err := intake.New(intake.Options{
		Input:  os.Stdin,
		Output: os.Stdout,
		Store:  st,
		Logger: logger.Slog(),
	})
	if err != nil {
		return cli.NewCommandError("intake", err)
	}

	_, _, err = wizard.Run()
	switch {
	case errors.Is(err, intake.ErrDiscarded):
		// Declining the confirmation is a normal outcome, not a failure.
		fmt.Println("Ticket discarded.")
		return nil
	case err != nil:
		return cli.NewCommandError("intake", err)
	}
	return nil
}
