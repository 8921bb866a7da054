package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"helpdesk-hq/custodian/pkg/audit"
	"helpdesk-hq/custodian/pkg/catalog"
	"helpdesk-hq/custodian/pkg/lifecycle"
)

func sampleSweepReport() *lifecycle.Report {
	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &lifecycle.Report{
		RunID:               "run-42",
		StartedAt:           started,
		FinishedAt:          started.Add(1500 * time.Millisecond),
		PartitionsEvaluated: 3,
		PartitionsEligible:  2,
		PartitionsSkipped:   1,
		PartitionsRemoved:   1,
		FilesExamined:       5,
		FilesArchived:       4,
		FilesVerified:       4,
		FilesDeleted:        3,
		FilesHeld:           1,
		FilesSkipped:        1,
		BytesArchived:       2048,
		Results: []lifecycle.FileResult{
			{Partition: "2024-01-01", File: "ticket1.json", State: catalog.StateDeleted, Size: 1024},
			{Partition: "2024-01-02", File: "ticket2.json", State: catalog.StateHeld, Reason: catalog.ReasonLegalHold},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "text", want: FormatText},
		{input: "json", want: FormatJSON},
		{input: "", want: FormatText},
		{input: "csv", wantErr: true},
		{input: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("input_"+tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFormat(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextFormatter_SweepReport(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, sampleSweepReport()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Sweep run-42",
		"Duration: 1.5s",
		"3 evaluated, 2 eligible, 1 skipped, 1 removed",
		"5 examined, 4 archived, 4 verified, 3 deleted, 1 held, 1 skipped",
		"Archived:   2.0 KiB",
		"2024-01-01/ticket1.json: deleted",
		"2024-01-02/ticket2.json: held (legal_hold)",
		"✓ Sweep completed cleanly",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "dry run") {
		t.Errorf("live report should not mention dry run:\n%s", output)
	}
}

func TestTextFormatter_SweepReportFaults(t *testing.T) {
	report := sampleSweepReport()
	report.CopyFailures = 1
	report.VerifyMismatches = 2
	report.Errors = []string{"manifest write failed: disk full"}

	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, report); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "✗ Sweep completed with faults: 1 copy, 0 read, 2 mismatch, 0 policy") {
		t.Errorf("output missing fault summary:\n%s", output)
	}
	if !strings.Contains(output, "manifest write failed: disk full") {
		t.Errorf("output missing contained error:\n%s", output)
	}
	if strings.Contains(output, "✓ Sweep completed cleanly") {
		t.Errorf("faulted report rendered as clean:\n%s", output)
	}
}

func TestTextFormatter_SweepReportDryRun(t *testing.T) {
	report := sampleSweepReport()
	report.DryRun = true
	report.WouldDelete = 3
	report.FilesDeleted = 0

	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, report); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Sweep run-42 (dry run)") {
		t.Errorf("output missing dry run marker:\n%s", output)
	}
	if !strings.Contains(output, "Would delete: 3") {
		t.Errorf("output missing would-delete count:\n%s", output)
	}
}

func TestTextFormatter_AuditEntries(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []*audit.Entry{
		{Timestamp: ts, RunID: "run-42", Action: audit.ActionRunStarted, Outcome: audit.OutcomeOK},
		{
			Timestamp: ts.Add(time.Second), RunID: "run-42",
			Partition: "2024-01-01", File: "ticket1.json",
			Action: audit.ActionArchived, Outcome: audit.OutcomeOK,
		},
		{
			Timestamp: ts.Add(2 * time.Second), RunID: "run-42",
			Partition: "2024-01-01", File: "ticket1.json",
			Action: audit.ActionVerified, Outcome: audit.OutcomeMatch, DryRun: true,
		},
		{
			Timestamp: ts.Add(3 * time.Second), RunID: "run-42",
			Partition: "2024-01-02", File: "ticket2.json",
			Action: audit.ActionCopyFailed, Outcome: audit.OutcomeFailed,
			Detail: map[string]string{"error": "no space left on device"},
		},
	}

	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, entries); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Total entries: 4",
		"run_started",
		"2024-01-01/ticket1.json",
		"[dry run]",
		"no space left on device",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestTextFormatter_AuditEntriesEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, []*audit.Entry{}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Total entries: 0") {
		t.Errorf("output = %q, want total of 0", buf.String())
	}
}

func TestTextFormatter_PartitionChecks(t *testing.T) {
	checks := []*lifecycle.PartitionCheck{
		{Partition: "2024-01-01", Listed: 2, Matched: 2},
		{Partition: "2024-01-02", Listed: 2, Matched: 1, Problems: []lifecycle.CheckProblem{
			{Path: "ticket9.json", Reason: lifecycle.ProblemMismatch, Want: "aaa", Got: "bbb"},
		}},
	}

	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, checks); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"✓ 2024-01-01: 2/2 objects match manifest",
		"✗ 2024-01-02: 1/2 objects match manifest",
		"ticket9.json: digest mismatch",
		"want aaa",
		"got  bbb",
		"✗ 1 problems across 2 partitions",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestTextFormatter_Fallback(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, "3 partitions checked"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "3 partitions checked\n" {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), "3 partitions checked\n")
	}
}

func TestTextFormatter_FormatMatchesFormatTo(t *testing.T) {
	formatter := &TextFormatter{}
	report := sampleSweepReport()

	direct, err := formatter.Format(report)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	buf := &bytes.Buffer{}
	if err := formatter.FormatTo(buf, report); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if string(direct) != buf.String() {
		t.Error("Format() and FormatTo() disagree")
	}
}

func TestJSONFormatter_SweepReport(t *testing.T) {
	formatter := &JSONFormatter{Indent: true}
	output, err := formatter.Format(sampleSweepReport())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded lifecycle.Report
	if err := json.Unmarshal(output, &decoded); err != nil {
		t.Fatalf("Format() produced invalid JSON: %v", err)
	}
	if decoded.RunID != "run-42" {
		t.Errorf("RunID = %q, want run-42", decoded.RunID)
	}
	if decoded.FilesDeleted != 3 {
		t.Errorf("FilesDeleted = %d, want 3", decoded.FilesDeleted)
	}
	if len(decoded.Results) != 2 {
		t.Errorf("len(Results) = %d, want 2", len(decoded.Results))
	}
}

func TestJSONFormatterWriter(t *testing.T) {
	formatter := &JSONFormatter{Indent: true}
	data := map[string]string{"partition": "2024-01-01"}
	buf := &bytes.Buffer{}

	if err := formatter.FormatTo(buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Errorf("FormatTo() produced invalid JSON: %v", err)
	}
	if result["partition"] != "2024-01-01" {
		t.Errorf("FormatTo() = %v, want %v", result, data)
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name   string
		format OutputFormat
		want   string
	}{
		{name: "text formatter", format: FormatText, want: "*cli.TextFormatter"},
		{name: "json formatter", format: FormatJSON, want: "*cli.JSONFormatter"},
		{name: "default to text", format: "unknown", want: "*cli.TextFormatter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := NewFormatter(tt.format)
			got := fmt.Sprintf("%T", formatter)
			if got != tt.want {
				t.Errorf("NewFormatter(%q) type = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{n: 0, want: "0 B"},
		{n: 512, want: "512 B"},
		{n: 1024, want: "1.0 KiB"},
		{n: 1536, want: "1.5 KiB"},
		{n: 1048576, want: "1.0 MiB"},
		{n: 5 * 1024 * 1024 * 1024, want: "5.0 GiB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
