/*
Package cli provides command-line interface utilities for Custodian.

The cli package includes output formatters, progress reporters, and common
CLI helpers used by the custodian command.

Output Formatting:

Commands accept --format text|json. The text formatter knows how to render
sweep reports, audit entries, and archive checks; everything renders to JSON
unchanged:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	formatter := cli.NewFormatter(format)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Progress Reporting:

For long-running operations such as re-verifying archived partitions, use
the progress reporter:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(int64(len(partitions)))
	for i, p := range partitions {
		// Digest and compare
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

The daemon shuts down gracefully on SIGINT/SIGTERM; a second signal exits
immediately:

	ctx := cli.SetupSignalHandler()
	// Use ctx for the scheduler and admin server
*/
package cli
