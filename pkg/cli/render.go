package cli

import (
	"fmt"
	"io"
	"time"

	"helpdesk-hq/custodian/pkg/audit"
	"helpdesk-hq/custodian/pkg/lifecycle"
)

// renderReport writes the operator-facing summary of one sweep run.
func renderReport(w io.Writer, r *lifecycle.Report) error {
	if r.DryRun {
		fmt.Fprintf(w, "Sweep %s (dry run)\n", r.RunID)
	} else {
		fmt.Fprintf(w, "Sweep %s\n", r.RunID)
	}
	fmt.Fprintf(w, "Started:  %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", r.Duration().Round(time.Millisecond))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Partitions: %d evaluated, %d eligible, %d skipped, %d removed\n",
		r.PartitionsEvaluated, r.PartitionsEligible, r.PartitionsSkipped, r.PartitionsRemoved)
	fmt.Fprintf(w, "Files:      %d examined, %d archived, %d verified, %d deleted, %d held, %d skipped\n",
		r.FilesExamined, r.FilesArchived, r.FilesVerified, r.FilesDeleted, r.FilesHeld, r.FilesSkipped)
	if r.DryRun {
		fmt.Fprintf(w, "Would delete: %d\n", r.WouldDelete)
	}
	fmt.Fprintf(w, "Archived:   %s\n", formatBytes(r.BytesArchived))

	if len(r.Results) > 0 {
		fmt.Fprintln(w)
		for _, res := range r.Results {
			fmt.Fprintf(w, "  %s/%s: %s", res.Partition, res.File, res.State)
			if res.Reason != "" {
				fmt.Fprintf(w, " (%s)", res.Reason)
			}
			if res.Error != "" {
				fmt.Fprintf(w, ": %s", res.Error)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w)
	if r.Clean() {
		fmt.Fprintln(w, "✓ Sweep completed cleanly")
		return nil
	}
	fmt.Fprintf(w, "✗ Sweep completed with faults: %d copy, %d read, %d mismatch, %d policy\n",
		r.CopyFailures, r.ReadFailures, r.VerifyMismatches, r.PolicyErrors)
	for _, msg := range r.Errors {
		fmt.Fprintf(w, "  %s\n", msg)
	}
	return nil
}

// renderEntries writes audit entries one per line, in append order.
func renderEntries(w io.Writer, entries []*audit.Entry) error {
	fmt.Fprintf(w, "Total entries: %d\n", len(entries))
	if len(entries) == 0 {
		return nil
	}
	fmt.Fprintln(w)

	for _, e := range entries {
		target := "-"
		if e.Partition != "" {
			target = e.Partition + "/" + e.File
		}
		fmt.Fprintf(w, "%s  %-18s %-8s %s",
			e.Timestamp.Format(time.RFC3339), e.Action, e.Outcome, target)
		if e.DryRun {
			fmt.Fprint(w, "  [dry run]")
		}
		if detail, ok := e.Detail["error"]; ok {
			fmt.Fprintf(w, "  %s", detail)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// renderChecks writes re-verification results, one partition per block.
func renderChecks(w io.Writer, checks []*lifecycle.PartitionCheck) error {
	problems := 0
	for _, c := range checks {
		if c.OK() {
			fmt.Fprintf(w, "✓ %s: %d/%d objects match manifest\n", c.Partition, c.Matched, c.Listed)
			continue
		}
		problems += len(c.Problems)
		fmt.Fprintf(w, "✗ %s: %d/%d objects match manifest\n", c.Partition, c.Matched, c.Listed)
		for _, p := range c.Problems {
			fmt.Fprintf(w, "    %s: %s\n", p.Path, p.Reason)
			if p.Want != "" && p.Got != "" {
				fmt.Fprintf(w, "      want %s\n      got  %s\n", p.Want, p.Got)
			}
		}
	}

	fmt.Fprintln(w)
	if problems == 0 {
		fmt.Fprintf(w, "✓ %d partitions verified\n", len(checks))
	} else {
		fmt.Fprintf(w, "✗ %d problems across %d partitions\n", problems, len(checks))
	}
	return nil
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
