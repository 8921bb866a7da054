package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ObjectInfo describes one object stored in an archive sink.
type ObjectInfo struct {
	// Name is the sink-relative object name with forward slashes,
	// e.g. "2024-01-01/ticket_120000_ab12cd34.txt".
	Name string

	// Location is the physical location, suitable for audit detail and
	// for opening the object outside the sink (a filesystem path for the
	// directory sink).
	Location string

	// Size is the object size in bytes.
	Size int64
}

// Sink is the archive target: where verified copies of ticket files live.
// The shipped implementation is a local directory; the interface keeps the
// job indifferent to what stands behind the archive root.
//
// Put must not leave a partial object behind on error, and an existing
// object of the same name is overwritten (stale or partial copies from an
// interrupted run are replaced, not merged).
type Sink interface {
	// Put streams src into the sink under name and returns the object's
	// physical location.
	Put(ctx context.Context, name string, src io.Reader) (location string, err error)

	// Open opens an object for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Stat describes an object; absence surfaces as an fs.ErrNotExist.
	Stat(ctx context.Context, name string) (ObjectInfo, error)

	// Remove deletes an object.
	Remove(ctx context.Context, name string) error

	// List enumerates objects under a prefix (a partition name), sorted
	// by name.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// CheckAccess verifies the sink is usable; called at run start.
	CheckAccess(ctx context.Context) error
}

// IsNotExist reports whether err indicates an object absent from a Sink.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// DirSink archives into a local or locally-mounted directory, mirroring
// the store's partition layout underneath its root.
type DirSink struct {
	root string
}

// NewDirSink creates a sink rooted at the given directory. The directory
// is created if it does not exist.
func NewDirSink(root string) (*DirSink, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving archive root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive root: %w", err)
	}
	return &DirSink{root: abs}, nil
}

// Root returns the absolute archive root path.
func (s *DirSink) Root() string {
	return s.root
}

// CheckAccess verifies the archive root exists and is writable.
func (s *DirSink) CheckAccess(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("archive root inaccessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("archive root is not a directory: %s", s.root)
	}

	// Probe writability; permissions bits alone lie on some mounts.
	probe, err := os.CreateTemp(s.root, ".custodian-probe-*")
	if err != nil {
		return fmt.Errorf("archive root not writable: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// Put copies src to the object's path, creating parent directories. On a
// write failure the partial destination is removed before returning, so
// no orphaned partial copies remain. An existing object is overwritten.
func (s *DirSink) Put(ctx context.Context, name string, src io.Reader) (string, error) {
	path, err := s.safePath(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating archive file: %w", err)
	}

	buf := make([]byte, digestChunkSize)
	if _, err := io.CopyBuffer(dst, src, buf); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing archive file: %w", err)
	}

	// The copy must be durable before it can justify deleting a source.
	if err := dst.Sync(); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("syncing archive file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing archive file: %w", err)
	}
	return path, nil
}

// Open opens an archived object for reading.
func (s *DirSink) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	path, err := s.safePath(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Stat describes an archived object.
func (s *DirSink) Stat(ctx context.Context, name string) (ObjectInfo, error) {
	path, err := s.safePath(name)
	if err != nil {
		return ObjectInfo{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Name: name, Location: path, Size: info.Size()}, nil
}

// Remove deletes an archived object. Empty parent directories are left in
// place; partitions are bookkept by their manifests, not by directory
// presence.
func (s *DirSink) Remove(ctx context.Context, name string) error {
	path, err := s.safePath(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// List enumerates objects under prefix, sorted by name.
func (s *DirSink) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	dir, err := s.safePath(prefix)
	if err != nil {
		return nil, err
	}

	var objects []ObjectInfo
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		objects = append(objects, ObjectInfo{
			Name:     filepath.ToSlash(rel),
			Location: path,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing archive %s: %w", prefix, err)
	}
	return objects, nil
}

// safePath resolves a slash-separated object name under the root,
// rejecting names that would escape it.
func (s *DirSink) safePath(name string) (string, error) {
	joined := filepath.Join(s.root, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("object name escapes archive root: %q", name)
	}
	return joined, nil
}
