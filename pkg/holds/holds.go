package holds

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"helpdesk-hq/custodian/pkg/store"
)

// Entry is one legal hold. Partition is required; an empty File holds the
// whole partition.
type Entry struct {
	Partition string    `yaml:"partition" json:"partition"`
	File      string    `yaml:"file,omitempty" json:"file,omitempty"`
	Reason    string    `yaml:"reason" json:"reason"`
	AddedBy   string    `yaml:"added_by,omitempty" json:"added_by,omitempty"`
	AddedAt   time.Time `yaml:"added_at,omitempty" json:"added_at,omitempty"`
}

// Key returns the match key: the partition name, or partition/file for a
// single-file hold.
func (e *Entry) Key() string {
	if e.File == "" {
		return e.Partition
	}
	return e.Partition + "/" + e.File
}

func (e *Entry) validate(i int) error {
	if e.Partition == "" {
		return fmt.Errorf("hold %d: partition is required", i)
	}
	if _, err := store.ParsePartitionName(e.Partition); err != nil {
		// A hold naming a partition that can never exist would silently
		// protect nothing.
		return fmt.Errorf("hold %d: %w", i, err)
	}
	if strings.ContainsAny(e.File, "/\\") {
		return fmt.Errorf("hold %d: file must be a bare name, got %q", i, e.File)
	}
	if e.Reason == "" {
		return fmt.Errorf("hold %d (%s): reason is required", i, e.Key())
	}
	return nil
}

// registryFile is the on-disk document shape.
type registryFile struct {
	Holds []Entry `yaml:"holds"`
}

// holdSet is one immutable loaded generation of the registry.
type holdSet struct {
	partitions map[string]*Entry
	files      map[string]*Entry
	entries    []Entry
	loadedAt   time.Time
}

var emptySet = &holdSet{
	partitions: map[string]*Entry{},
	files:      map[string]*Entry{},
}

// Registry answers hold lookups against the most recently loaded set.
// Load and Reload swap the whole set atomically, so concurrent Match calls
// during a reload see a consistent generation.
type Registry struct {
	path   string
	logger *slog.Logger
	set    atomic.Pointer[holdSet]
}

// NewRegistry creates a registry backed by the YAML file at path. The
// registry starts empty; call Load before the first sweep.
func NewRegistry(path string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default().With("component", "holds.registry")
	}
	r := &Registry{path: path, logger: logger}
	r.set.Store(emptySet)
	return r
}

// Path returns the registry file path.
func (r *Registry) Path() string {
	return r.path
}

// Load reads and validates the registry file and swaps it in. On any
// error the previously loaded set stays in force; a configured hold file
// that cannot be read is an error, not an empty set, because dropping
// holds silently would unprotect files.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("reading hold registry: %w", err)
	}

	var doc registryFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing hold registry %s: %w", r.path, err)
	}

	next := &holdSet{
		partitions: make(map[string]*Entry),
		files:      make(map[string]*Entry),
		entries:    doc.Holds,
		loadedAt:   time.Now(),
	}
	for i := range doc.Holds {
		e := &doc.Holds[i]
		if err := e.validate(i); err != nil {
			return fmt.Errorf("hold registry %s: %w", r.path, err)
		}
		if e.File == "" {
			if _, dup := next.partitions[e.Partition]; dup {
				r.logger.Warn("duplicate partition hold, later entry wins", "partition", e.Partition)
			}
			next.partitions[e.Partition] = e
		} else {
			key := e.Key()
			if _, dup := next.files[key]; dup {
				r.logger.Warn("duplicate file hold, later entry wins", "key", key)
			}
			next.files[key] = e
		}
	}

	r.set.Store(next)
	r.logger.Info("hold registry loaded",
		"path", r.path,
		"holds", len(doc.Holds),
		"partition_holds", len(next.partitions),
		"file_holds", len(next.files),
	)
	return nil
}

// Match reports whether a hold covers the partition file, and its reason.
// A file-level hold takes precedence over a partition-wide one only in
// which reason is reported; either blocks deletion.
func (r *Registry) Match(partition, file string) (string, bool) {
	set := r.set.Load()
	if e, ok := set.files[partition+"/"+file]; ok {
		return e.Reason, true
	}
	if e, ok := set.partitions[partition]; ok {
		return e.Reason, true
	}
	return "", false
}

// Entries returns a copy of the currently loaded holds.
func (r *Registry) Entries() []Entry {
	set := r.set.Load()
	out := make([]Entry, len(set.entries))
	copy(out, set.entries)
	return out
}

// Len returns the number of loaded holds.
func (r *Registry) Len() int {
	return len(r.set.Load().entries)
}

// LoadedAt returns when the current set was loaded; zero if never loaded.
func (r *Registry) LoadedAt() time.Time {
	return r.set.Load().loadedAt
}
