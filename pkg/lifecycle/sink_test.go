package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestSink(t *testing.T) *DirSink {
	t.Helper()
	sink, err := NewDirSink(filepath.Join(t.TempDir(), "archive"))
	if err != nil {
		t.Fatalf("NewDirSink() error = %v", err)
	}
	return sink
}

func TestNewDirSink_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "archive")
	sink, err := NewDirSink(root)
	if err != nil {
		t.Fatalf("NewDirSink() error = %v", err)
	}

	info, err := os.Stat(sink.Root())
	if err != nil {
		t.Fatalf("Stat(root) error = %v", err)
	}
	if !info.IsDir() {
		t.Error("archive root is not a directory")
	}
}

func TestDirSink_PutOpenStat(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	content := "ticket body"
	location, err := sink.Put(ctx, "2024-01-01/ticket_120000_ab12cd34.txt", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if location == "" {
		t.Fatal("Put() returned empty location")
	}

	rc, err := sink.Open(ctx, "2024-01-01/ticket_120000_ab12cd34.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	got, err := DigestReader(rc)
	if err != nil {
		t.Fatalf("DigestReader() error = %v", err)
	}
	want, _ := DigestReader(strings.NewReader(content))
	if got != want {
		t.Errorf("archived digest = %s, want %s", got, want)
	}

	info, err := sink.Stat(ctx, "2024-01-01/ticket_120000_ab12cd34.txt")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size != int64(len(content)) {
		t.Errorf("Stat().Size = %d, want %d", info.Size, len(content))
	}
	if info.Location != location {
		t.Errorf("Stat().Location = %s, want %s", info.Location, location)
	}
}

func TestDirSink_PutOverwrites(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	if _, err := sink.Put(ctx, "2024-01-01/a.txt", strings.NewReader("stale partial")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := sink.Put(ctx, "2024-01-01/a.txt", strings.NewReader("fresh")); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}

	info, err := sink.Stat(ctx, "2024-01-01/a.txt")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size != int64(len("fresh")) {
		t.Errorf("overwritten size = %d, want %d", info.Size, len("fresh"))
	}
}

// TestDirSink_PutFailureLeavesNoPartial pins the no-orphaned-partials
// contract: when the source errors mid-copy, nothing remains at the
// destination.
func TestDirSink_PutFailureLeavesNoPartial(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	src := &failingReader{err: errors.New("device error")}
	if _, err := sink.Put(ctx, "2024-01-01/broken.txt", src); err == nil {
		t.Fatal("Put() error = nil, want copy failure")
	}

	if _, err := sink.Stat(ctx, "2024-01-01/broken.txt"); !IsNotExist(err) {
		t.Errorf("Stat() after failed Put error = %v, want not-exist", err)
	}
}

func TestDirSink_StatMissing(t *testing.T) {
	sink := newTestSink(t)

	_, err := sink.Stat(context.Background(), "2024-01-01/absent.txt")
	if !IsNotExist(err) {
		t.Errorf("Stat(absent) error = %v, want not-exist", err)
	}
}

func TestDirSink_Remove(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	if _, err := sink.Put(ctx, "2024-01-01/a.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := sink.Remove(ctx, "2024-01-01/a.txt"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := sink.Stat(ctx, "2024-01-01/a.txt"); !IsNotExist(err) {
		t.Errorf("Stat() after Remove error = %v, want not-exist", err)
	}
}

func TestDirSink_List(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	for _, name := range []string{"2024-01-01/b.txt", "2024-01-01/a.txt", "2024-01-02/c.txt"} {
		if _, err := sink.Put(ctx, name, strings.NewReader("x")); err != nil {
			t.Fatalf("Put(%s) error = %v", name, err)
		}
	}

	objects, err := sink.List(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"2024-01-01/a.txt", "2024-01-01/b.txt"}
	if len(objects) != len(want) {
		t.Fatalf("List() returned %d objects, want %d", len(objects), len(want))
	}
	for i, obj := range objects {
		if obj.Name != want[i] {
			t.Errorf("List()[%d].Name = %s, want %s", i, obj.Name, want[i])
		}
	}

	empty, err := sink.List(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("List(missing partition) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("List(missing partition) = %d objects, want 0", len(empty))
	}
}

func TestDirSink_RejectsEscapingNames(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	names := []string{
		"../outside.txt",
		"2024-01-01/../../outside.txt",
		"..",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			if _, err := sink.Put(ctx, name, strings.NewReader("x")); err == nil {
				t.Errorf("Put(%q) error = nil, want escape rejection", name)
			}
			if _, err := sink.Open(ctx, name); err == nil {
				t.Errorf("Open(%q) error = nil, want escape rejection", name)
			}
		})
	}
}

func TestDirSink_CheckAccess(t *testing.T) {
	sink := newTestSink(t)
	if err := sink.CheckAccess(context.Background()); err != nil {
		t.Errorf("CheckAccess() error = %v", err)
	}

	// The probe must not linger.
	entries, err := os.ReadDir(sink.Root())
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".custodian-probe-") {
			t.Errorf("probe file %s left behind", e.Name())
		}
	}
}

func TestDirSink_CheckAccessMissingRoot(t *testing.T) {
	sink := &DirSink{root: filepath.Join(t.TempDir(), "gone")}
	if err := sink.CheckAccess(context.Background()); err == nil {
		t.Error("CheckAccess() error = nil for missing root, want error")
	}
}
