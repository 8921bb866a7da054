package health

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"helpdesk-hq/custodian/pkg/audit"
	"helpdesk-hq/custodian/pkg/catalog"
	"helpdesk-hq/custodian/pkg/lifecycle"
	"helpdesk-hq/custodian/pkg/store"
)

// StoreCheck probes the ticket store root. A missing root is healthy: it
// means no tickets have been filed yet and a sweep would be a no-op, the
// same tolerance the sweep itself applies.
func StoreCheck(st *store.Store) CheckFunc {
	return func(ctx context.Context) error {
		if err := st.CheckAccess(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("ticket store: %w", err)
		}
		return nil
	}
}

// ArchiveCheck probes the archive sink. Readiness requires a writable
// archive: a sweep without one can only fail every copy.
func ArchiveCheck(sink lifecycle.Sink) CheckFunc {
	return func(ctx context.Context) error {
		if err := sink.CheckAccess(ctx); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		return nil
	}
}

// AuditCheck probes the audit sink with a one-entry read. An unusable
// audit sink makes every sweep abort at the run-start entry, so it gates
// readiness.
func AuditCheck(sink audit.Sink) CheckFunc {
	return func(ctx context.Context) error {
		if _, err := sink.Tail(ctx, 1); err != nil {
			return fmt.Errorf("audit sink: %w", err)
		}
		return nil
	}
}

// CatalogCheck probes the state catalog with a point read. The probe key
// never exists; the read only proves the database answers.
func CatalogCheck(cat *catalog.Catalog) CheckFunc {
	return func(ctx context.Context) error {
		if _, err := cat.Get(ctx, "1970-01-01", "healthcheck"); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		return nil
	}
}
