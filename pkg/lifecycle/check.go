package lifecycle

import (
	"context"
	"sort"
	"strings"
)

// Problem reasons reported by CheckPartition.
const (
	ProblemMismatch   = "digest mismatch"
	ProblemMissing    = "listed in manifest but missing"
	ProblemUnlisted   = "archived but not listed in manifest"
	ProblemUnreadable = "unreadable"
)

// CheckProblem describes one archived object that failed re-verification.
type CheckProblem struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Want   string `json:"want,omitempty"`
	Got    string `json:"got,omitempty"`
}

// PartitionCheck summarizes the re-verification of one archive partition
// against its manifest.
type PartitionCheck struct {
	Partition string         `json:"partition"`
	Listed    int            `json:"listed"`
	Matched   int            `json:"matched"`
	Problems  []CheckProblem `json:"problems,omitempty"`
}

// OK reports whether every listed object matched and nothing unlisted was
// found.
func (c *PartitionCheck) OK() bool {
	return len(c.Problems) == 0
}

// CheckPartition re-reads every archived object of a partition and
// compares its digest against the manifest. It reports objects that no
// longer match, objects the manifest lists but the archive lost, and
// objects present without a manifest entry. An absent manifest is an
// error; a partition with copies but no manifest cannot be vouched for.
func CheckPartition(ctx context.Context, sink Sink, partition string) (*PartitionCheck, error) {
	m, err := ReadManifest(ctx, sink, partition)
	if err != nil {
		return nil, err
	}

	check := &PartitionCheck{Partition: partition, Listed: len(m.Files)}
	verifier := NewVerifier(sink)

	listed := make(map[string]bool, len(m.Files))
	for _, entry := range m.Files {
		listed[entry.Path] = true

		digest, err := verifier.ArchiveDigest(ctx, ObjectName(partition, entry.Path))
		if err != nil {
			reason := ProblemUnreadable
			if IsNotExist(err) {
				reason = ProblemMissing
			}
			check.Problems = append(check.Problems, CheckProblem{
				Path:   entry.Path,
				Reason: reason,
				Want:   entry.SHA256,
			})
			continue
		}
		if digest != entry.SHA256 {
			check.Problems = append(check.Problems, CheckProblem{
				Path:   entry.Path,
				Reason: ProblemMismatch,
				Want:   entry.SHA256,
				Got:    digest,
			})
			continue
		}
		check.Matched++
	}

	objects, err := sink.List(ctx, partition)
	if err != nil {
		return nil, err
	}
	for _, obj := range objects {
		rel := relativeObjectPath(partition, obj.Name)
		if rel == ManifestName || listed[rel] {
			continue
		}
		check.Problems = append(check.Problems, CheckProblem{Path: rel, Reason: ProblemUnlisted})
	}

	return check, nil
}

// ArchivedPartitions returns the partition names present in the sink,
// derived from object names, sorted.
func ArchivedPartitions(ctx context.Context, sink Sink) ([]string, error) {
	objects, err := sink.List(ctx, "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var partitions []string
	for _, obj := range objects {
		i := strings.IndexByte(obj.Name, '/')
		if i <= 0 {
			continue
		}
		name := obj.Name[:i]
		if !seen[name] {
			seen[name] = true
			partitions = append(partitions, name)
		}
	}
	sort.Strings(partitions)
	return partitions, nil
}
