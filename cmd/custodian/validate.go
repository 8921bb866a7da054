package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"helpdesk-hq/custodian/pkg/cli"
	"helpdesk-hq/custodian/pkg/config"
	"helpdesk-hq/custodian/pkg/holds"
	"helpdesk-hq/custodian/pkg/lifecycle"
	"helpdesk-hq/custodian/pkg/store"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and data paths",
	Long: `Load the configuration, check every field, and probe the data paths.

Validation is read-only: no directory, audit log, or database is created.
Paths that don't exist yet are reported but not treated as problems, since
intake and sweep create them on first use. A configured hold registry that
cannot be loaded is a problem: sweeps refuse to run without it.

Examples:
  # Validate the default config
  custodian validate

  # Validate a candidate config before rollout
  custodian validate --config /etc/custodian/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating configuration: %s\n\n", cfgFile)

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Println("✗ Configuration invalid:")
			for _, fe := range verr.Errors {
				fmt.Printf("    %s: %s\n", fe.Field, fe.Message)
			}
			return cli.NewCommandError("validate", fmt.Errorf("%d invalid fields", len(verr.Errors)))
		}
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	fmt.Println("✓ Configuration valid")

	problems := 0
	fail := func(what string, err error) {
		fmt.Printf("✗ %s: %v\n", what, err)
		problems++
	}

	// Store root: missing is fine (intake creates it), unreadable is not.
	st, err := store.NewStore(cfg.Store.Root)
	if err != nil {
		fail("Store root", err)
	} else if err := st.CheckAccess(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Printf("✓ Store root %s (not created yet)\n", cfg.Store.Root)
		} else {
			fail("Store root", err)
		}
	} else {
		fmt.Printf("✓ Store root %s\n", st.Root())
	}

	// Archive root: probe writability only when it already exists, so
	// that validation never creates it.
	if _, err := os.Stat(cfg.Archive.Root); errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("✓ Archive root %s (not created yet)\n", cfg.Archive.Root)
	} else if err != nil {
		fail("Archive root", err)
	} else {
		sink, err := lifecycle.NewDirSink(cfg.Archive.Root)
		if err != nil {
			fail("Archive root", err)
		} else if err := sink.CheckAccess(context.Background()); err != nil {
			fail("Archive root", err)
		} else {
			fmt.Printf("✓ Archive root %s (writable)\n", cfg.Archive.Root)
		}
	}

	// Append-open probes writability without creating or truncating.
	checkWritableFile := func(what, path string) {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			fmt.Printf("✓ %s %s (not created yet)\n", what, path)
		case err != nil:
			fail(what, err)
		default:
			f.Close()
			fmt.Printf("✓ %s %s\n", what, path)
		}
	}

	switch cfg.Audit.Backend {
	case "jsonl", "":
		checkWritableFile("Audit log", cfg.Audit.LogPath)
	case "sqlite":
		checkWritableFile("Audit database", cfg.Audit.SQLite.Path)
	case "both":
		checkWritableFile("Audit log", cfg.Audit.LogPath)
		checkWritableFile("Audit database", cfg.Audit.SQLite.Path)
	}

	if cfg.Catalog.Path != "" {
		checkWritableFile("Catalog database", cfg.Catalog.Path)
	}

	switch {
	case cfg.Holds.Git.Enabled:
		// Probing the remote would be a network side effect; the daemon
		// and sweep report sync failures themselves.
		fmt.Printf("✓ Hold registry synced from git (%s)\n", cfg.Holds.Git.Repository)
	case cfg.Holds.Path != "":
		registry := holds.NewRegistry(cfg.Holds.Path, nil)
		if err := registry.Load(); err != nil {
			fail("Hold registry", err)
		} else {
			fmt.Printf("✓ Hold registry %s (%d holds)\n", cfg.Holds.Path, registry.Len())
		}
	}

	fmt.Println()
	if problems > 0 {
		return cli.NewCommandError("validate", fmt.Errorf("%d problems found", problems))
	}
	fmt.Println("Configuration OK")
	return nil
}
