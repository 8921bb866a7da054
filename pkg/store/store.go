// Package store provides access to the date-partitioned ticket store: a
// root directory holding one YYYY-MM-DD subdirectory per day, each with
// zero or more opaque ticket files. The store never inspects ticket
// content; every resolved path is checked to remain inside the root.
package store

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// PartitionLayout is the time layout for partition directory names.
// Lexicographic order of names equals calendar order.
const PartitionLayout = "2006-01-02"

// Partition is one date-named subdirectory of the store root.
type Partition struct {
	// Name is the directory name, always in YYYY-MM-DD form.
	Name string

	// Date is the parsed partition date (midnight UTC).
	Date time.Time
}

// ParsePartitionName parses a directory name as a partition date.
// Names that do not match YYYY-MM-DD exactly are rejected.
func ParsePartitionName(name string) (Partition, error) {
	date, err := time.Parse(PartitionLayout, name)
	if err != nil {
		return Partition{}, fmt.Errorf("not a date partition: %q", name)
	}
	// time.Parse accepts some non-canonical forms (e.g. "2024-1-02");
	// require the round-trip to match so enumeration and naming agree.
	if date.Format(PartitionLayout) != name {
		return Partition{}, fmt.Errorf("not a date partition: %q", name)
	}
	return Partition{Name: name, Date: date}, nil
}

// FileInfo describes one ticket file within a partition.
type FileInfo struct {
	Name string
	Size int64
}

// Store reads and mutates the ticket store rooted at a single directory.
type Store struct {
	root string
}

// NewStore creates a Store for the given root directory. The root is
// resolved to an absolute path; it does not need to exist yet (the intake
// wizard creates it on first write).
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving store root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute store root path.
func (s *Store) Root() string {
	return s.root
}

// CheckAccess verifies the store root exists and is a readable directory.
// Used at run start; an inaccessible root is a run-level failure.
func (s *Store) CheckAccess() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("store root inaccessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store root is not a directory: %s", s.root)
	}
	if _, err := os.ReadDir(s.root); err != nil {
		return fmt.Errorf("store root unreadable: %w", err)
	}
	return nil
}

// Partitions enumerates the store's date partitions sorted by name
// (equivalently, by date). Directory entries that do not parse as
// YYYY-MM-DD are returned in skipped for the caller to report; they are
// never processed. Regular files at the root are ignored silently.
func (s *Store) Partitions() (partitions []Partition, skipped []string, err error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading store root: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, perr := ParsePartitionName(entry.Name())
		if perr != nil {
			skipped = append(skipped, entry.Name())
			continue
		}
		partitions = append(partitions, p)
	}

	sort.Slice(partitions, func(i, j int) bool {
		return partitions[i].Name < partitions[j].Name
	})
	return partitions, skipped, nil
}

// Files enumerates the regular files of one partition, sorted by name.
// Subdirectories within a partition are not expected and are skipped.
func (s *Store) Files(partition string) ([]FileInfo, error) {
	dir, err := s.safePath(partition)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading partition %s: %w", partition, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s/%s: %w", partition, entry.Name(), err)
		}
		files = append(files, FileInfo{Name: entry.Name(), Size: info.Size()})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// FilePath resolves the absolute path of a file within a partition,
// rejecting any name that would escape the store root.
func (s *Store) FilePath(partition, name string) (string, error) {
	return s.safePath(partition, name)
}

// Open opens a ticket file for reading (digesting, copying).
func (s *Store) Open(partition, name string) (*os.File, error) {
	path, err := s.safePath(partition, name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Stat returns file metadata for a ticket file.
func (s *Store) Stat(partition, name string) (fs.FileInfo, error) {
	path, err := s.safePath(partition, name)
	if err != nil {
		return nil, err
	}
	return os.Stat(path)
}

// Exists reports whether a ticket file is present.
func (s *Store) Exists(partition, name string) (bool, error) {
	_, err := s.Stat(partition, name)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Delete removes a ticket file. The caller is responsible for verifying an
// archive copy first; the store performs only the path-safety check.
func (s *Store) Delete(partition, name string) error {
	path, err := s.safePath(partition, name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// RemovePartition removes a partition directory if it is empty. Callers
// treat failure as best-effort (logged, not fatal): a non-empty directory
// simply stays.
func (s *Store) RemovePartition(partition string) error {
	dir, err := s.safePath(partition)
	if err != nil {
		return err
	}
	return os.Remove(dir)
}

// IsEmpty reports whether a partition directory holds no entries.
func (s *Store) IsEmpty(partition string) (bool, error) {
	dir, err := s.safePath(partition)
	if err != nil {
		return false, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// WriteTicket writes ticket content into the partition for the given date,
// creating the partition directory as needed. The file is created
// exclusively; an existing file of the same name is an error, never
// overwritten. Returns the absolute path written.
func (s *Store) WriteTicket(date time.Time, name string, content []byte) (string, error) {
	partition := date.Format(PartitionLayout)
	dir, err := s.safePath(partition)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating partition %s: %w", partition, err)
	}

	path, err := s.safePath(partition, name)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating ticket file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing ticket file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return "", fmt.Errorf("syncing ticket file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing ticket file: %w", err)
	}
	return path, nil
}

// safePath joins parts under the store root and verifies the cleaned
// result stays inside it. Crafted names (.., absolute paths, separators
// inside file names) are rejected rather than resolved.
func (s *Store) safePath(parts ...string) (string, error) {
	joined := filepath.Join(append([]string{s.root}, parts...)...)
	rel, err := filepath.Rel(s.root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", NewUnsafePathError(s.root, filepath.Join(parts...))
	}
	return joined, nil
}
