package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// ManifestName is the bookkeeping object written into every archive
// partition alongside the copies.
const ManifestName = "manifest.json"

// ManifestEntry records one archived file: its name within the partition,
// its size, and the digest its copy was verified against.
type ManifestEntry struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
}

// Manifest lists every file archived from one partition, sorted by path.
// It lets the archive be audited on its own, without consulting the live
// store or the audit log.
type Manifest struct {
	Folder    string          `json:"folder"`
	CreatedAt time.Time       `json:"created_at"`
	Files     []ManifestEntry `json:"files"`
}

// Entry returns the manifest entry for path, if listed.
func (m *Manifest) Entry(path string) (ManifestEntry, bool) {
	for _, e := range m.Files {
		if e.Path == path {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

func manifestObjectName(partition string) string {
	return ObjectName(partition, ManifestName)
}

// ReadManifest loads a partition's manifest from the sink. An absent
// manifest surfaces as the sink's fs.ErrNotExist, unchanged.
func ReadManifest(ctx context.Context, sink Sink, partition string) (*Manifest, error) {
	rc, err := sink.Open(ctx, manifestObjectName(partition))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var m Manifest
	if err := json.NewDecoder(rc).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest for %s: %w", partition, err)
	}
	return &m, nil
}

// WriteManifest writes or refreshes a partition's manifest so that it
// lists every object currently archived under the partition. Entries from
// earlier runs are preserved by merging with the existing manifest; new
// entries win on conflict, so an overwritten copy is listed with its
// fresh digest. Objects present in the sink but absent from both the old
// manifest and entries (a manifest lost or corrupted) are re-digested and
// backfilled, which makes the written manifest complete regardless of
// what happened before.
//
// The manifest is bookkeeping, not data: callers treat a failed write as
// a warning, never as grounds to hold or re-copy files.
func (a *Archiver) WriteManifest(ctx context.Context, partition string, entries []ManifestEntry) (string, error) {
	merged := make(map[string]ManifestEntry)

	if existing, err := ReadManifest(ctx, a.sink, partition); err == nil {
		for _, e := range existing.Files {
			merged[e.Path] = e
		}
	}

	for _, e := range entries {
		merged[e.Path] = e
	}

	objects, err := a.sink.List(ctx, partition)
	if err != nil {
		return "", fmt.Errorf("list archive partition %s: %w", partition, err)
	}
	verifier := NewVerifier(a.sink)
	for _, obj := range objects {
		rel := relativeObjectPath(partition, obj.Name)
		if rel == ManifestName {
			continue
		}
		if _, ok := merged[rel]; ok {
			continue
		}
		digest, err := verifier.ArchiveDigest(ctx, obj.Name)
		if err != nil {
			return "", err
		}
		merged[rel] = ManifestEntry{Path: rel, SizeBytes: obj.Size, SHA256: digest}
	}

	m := Manifest{
		Folder:    partition,
		CreatedAt: a.clock.Now().UTC(),
		Files:     make([]ManifestEntry, 0, len(merged)),
	}
	for _, e := range merged {
		m.Files = append(m.Files, e)
	}
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path })

	data, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode manifest for %s: %w", partition, err)
	}
	data = append(data, '\n')

	location, err := a.sink.Put(ctx, manifestObjectName(partition), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("write manifest for %s: %w", partition, err)
	}
	return location, nil
}

// relativeObjectPath strips the partition prefix from a sink object name.
func relativeObjectPath(partition, name string) string {
	prefix := partition + "/"
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):]
	}
	return name
}
