package lifecycle

import (
	"context"
	"path"
	"time"

	"helpdesk-hq/custodian/pkg/store"
)

// ObjectName returns the archive object name for a partition file. The
// archive mirrors the store layout: one directory per partition, so a
// restored tree is directly usable as a ticket store again.
func ObjectName(partition, file string) string {
	return path.Join(partition, file)
}

// ArchiveRecord describes one file present in the archive after a
// successful copy. A record exists only for complete, durable writes;
// failed copies leave nothing behind.
type ArchiveRecord struct {
	Partition  string
	File       string
	Location   string
	Size       int64
	Digest     string
	ArchivedAt time.Time

	// Reused marks a copy that was already present from an earlier,
	// interrupted run and verified against the source by digest. No
	// bytes were written for a reused record.
	Reused bool
}

// Archiver copies ticket files from the live store into an archive Sink
// and maintains the per-partition manifest. It performs the write only;
// digest comparison belongs to the Verifier, and sequencing of
// copy-verify-delete belongs to the Orchestrator.
type Archiver struct {
	store *store.Store
	sink  Sink
	clock Clock
}

// NewArchiver creates an Archiver that copies from st into sink. A nil
// clock defaults to the system clock.
func NewArchiver(st *store.Store, sink Sink, clock Clock) *Archiver {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Archiver{store: st, sink: sink, clock: clock}
}

// Copy streams one partition file into the archive and returns a record
// for the completed write. Any failure is reported as a *CopyError; the
// sink is responsible for ensuring a failed write leaves no partial
// object behind.
func (a *Archiver) Copy(ctx context.Context, partition, file string) (*ArchiveRecord, error) {
	src, err := a.store.Open(partition, file)
	if err != nil {
		return nil, NewCopyError(partition, file, "", err)
	}
	defer src.Close()

	name := ObjectName(partition, file)
	location, err := a.sink.Put(ctx, name, src)
	if err != nil {
		return nil, NewCopyError(partition, file, name, err)
	}

	info, err := a.sink.Stat(ctx, name)
	if err != nil {
		return nil, NewCopyError(partition, file, location, err)
	}

	return &ArchiveRecord{
		Partition:  partition,
		File:       file,
		Location:   location,
		Size:       info.Size,
		ArchivedAt: a.clock.Now().UTC(),
	}, nil
}

// Stat reports whether an archive copy of the partition file already
// exists, and its metadata when it does. Absence is not an error.
func (a *Archiver) Stat(ctx context.Context, partition, file string) (ObjectInfo, bool, error) {
	info, err := a.sink.Stat(ctx, ObjectName(partition, file))
	if err != nil {
		if IsNotExist(err) {
			return ObjectInfo{}, false, nil
		}
		return ObjectInfo{}, false, err
	}
	return info, true, nil
}

// Discard removes a partition file's archive copy. It is used to withdraw
// copies that failed verification so the archive never retains bytes known
// not to match their source.
func (a *Archiver) Discard(ctx context.Context, partition, file string) error {
	return a.sink.Remove(ctx, ObjectName(partition, file))
}
