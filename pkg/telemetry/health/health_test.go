package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"helpdesk-hq/custodian/pkg/audit"
	"helpdesk-hq/custodian/pkg/catalog"
	"helpdesk-hq/custodian/pkg/config"
	"helpdesk-hq/custodian/pkg/lifecycle"
	"helpdesk-hq/custodian/pkg/store"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{
			name:            "default timeout",
			timeout:         0,
			expectedTimeout: 5 * time.Second,
		},
		{
			name:            "custom timeout",
			timeout:         10 * time.Second,
			expectedTimeout: 10 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)
			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("timeout = %v, want %v", checker.checkTimeout, tt.expectedTimeout)
			}
			if checker.CheckCount() != 0 {
				t.Errorf("CheckCount() = %d, want 0", checker.CheckCount())
			}
		})
	}
}

func TestRegisterCheck(t *testing.T) {
	checker := New(5 * time.Second)

	called := false
	checker.RegisterCheck("store", func(ctx context.Context) error {
		called = true
		return nil
	})

	if checker.CheckCount() != 1 {
		t.Errorf("CheckCount() = %d, want 1", checker.CheckCount())
	}

	check := checker.GetCheck("store")
	if check == nil {
		t.Fatal("GetCheck() returned nil")
	}
	_ = check(context.Background())
	if !called {
		t.Error("registered check was not invoked")
	}

	// Registering the same name replaces the probe.
	replaced := false
	checker.RegisterCheck("store", func(ctx context.Context) error {
		replaced = true
		return nil
	})
	if checker.CheckCount() != 1 {
		t.Errorf("CheckCount() after replacement = %d, want 1", checker.CheckCount())
	}
	_ = checker.GetCheck("store")(context.Background())
	if !replaced {
		t.Error("replacement check was not invoked")
	}
}

func TestUnregisterCheck(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("store", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("archive", func(ctx context.Context) error { return nil })

	checker.UnregisterCheck("store")

	if checker.CheckCount() != 1 {
		t.Errorf("CheckCount() = %d, want 1", checker.CheckCount())
	}
	if checker.GetCheck("store") != nil {
		t.Error("unregistered check still present")
	}
	if checker.GetCheck("archive") == nil {
		t.Error("remaining check missing")
	}
}

func TestListChecks(t *testing.T) {
	checker := New(5 * time.Second)

	for _, name := range []string{"store", "archive", "audit"} {
		checker.RegisterCheck(name, func(ctx context.Context) error { return nil })
	}

	names := make(map[string]bool)
	for _, name := range checker.ListChecks() {
		names[name] = true
	}
	if !names["store"] || !names["archive"] || !names["audit"] {
		t.Errorf("ListChecks() = %v, want store, archive, audit", checker.ListChecks())
	}
}

func TestCheckLiveness(t *testing.T) {
	checker := New(5 * time.Second)

	// Liveness must not depend on registered probes.
	checker.RegisterCheck("archive", func(ctx context.Context) error {
		return errors.New("mount gone")
	})

	status := checker.CheckLiveness(context.Background())

	if status.Status != "ok" {
		t.Errorf("Status = %q, want ok", status.Status)
	}
	if status.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
	if len(status.Checks) > 0 {
		t.Error("liveness should not carry check results")
	}
}

func TestCheckReadiness_NoChecks(t *testing.T) {
	checker := New(5 * time.Second)

	status := checker.CheckReadiness(context.Background())

	if status.Status != "ready" {
		t.Errorf("Status = %q, want ready", status.Status)
	}
	if status.Checks == nil {
		t.Error("Checks map is nil")
	}
}

func TestCheckReadiness_AllHealthy(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("store", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("archive", func(ctx context.Context) error { return nil })

	status := checker.CheckReadiness(context.Background())

	if status.Status != "ready" {
		t.Errorf("Status = %q, want ready", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Errorf("len(Checks) = %d, want 2", len(status.Checks))
	}
	for name, result := range status.Checks {
		if result.Status != "ok" {
			t.Errorf("check %q status = %q, want ok", name, result.Status)
		}
	}
}

func TestCheckReadiness_OneUnhealthy(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("store", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("archive", func(ctx context.Context) error {
		return errors.New("archive: permission denied")
	})

	status := checker.CheckReadiness(context.Background())

	if status.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", status.Status)
	}
	if got := status.Checks["store"].Status; got != "ok" {
		t.Errorf("store check = %q, want ok", got)
	}
	archive := status.Checks["archive"]
	if archive.Status != "unhealthy" {
		t.Errorf("archive check = %q, want unhealthy", archive.Status)
	}
	if archive.Message != "archive: permission denied" {
		t.Errorf("archive message = %q", archive.Message)
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(100 * time.Millisecond)

	checker.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	status := checker.CheckReadiness(context.Background())

	if status.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", status.Status)
	}
	slow := status.Checks["slow"]
	if slow.Status != "unhealthy" {
		t.Errorf("slow check = %q, want unhealthy", slow.Status)
	}
	if slow.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow message = %q, want timeout", slow.Message)
	}
}

func TestCheckReadiness_ContextCancellation(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("store", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			return nil
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status := checker.CheckReadiness(ctx)

	if got := status.Checks["store"].Status; got != "unhealthy" {
		t.Errorf("store check = %q, want unhealthy after cancellation", got)
	}
}

func TestLivenessHandler(t *testing.T) {
	checker := New(5 * time.Second)
	handler := checker.LivenessHandler()

	tests := []struct {
		name           string
		method         string
		expectedStatus int
		checkBody      bool
	}{
		{name: "GET", method: http.MethodGet, expectedStatus: http.StatusOK, checkBody: true},
		{name: "HEAD", method: http.MethodHead, expectedStatus: http.StatusOK},
		{name: "POST rejected", method: http.MethodPost, expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/healthz/live", nil)
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedStatus)
			}
			if tt.checkBody {
				var status HealthStatus
				if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if status.Status != "ok" {
					t.Errorf("body status = %q, want ok", status.Status)
				}
			}
		})
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name           string
		setupChecks    func(*Checker)
		expectedStatus int
		expectedHealth string
	}{
		{
			name: "all healthy",
			setupChecks: func(c *Checker) {
				c.RegisterCheck("store", func(ctx context.Context) error { return nil })
			},
			expectedStatus: http.StatusOK,
			expectedHealth: "ready",
		},
		{
			name: "one unhealthy",
			setupChecks: func(c *Checker) {
				c.RegisterCheck("store", func(ctx context.Context) error { return nil })
				c.RegisterCheck("archive", func(ctx context.Context) error {
					return errors.New("mount gone")
				})
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
		},
		{
			name:           "no checks",
			setupChecks:    func(c *Checker) {},
			expectedStatus: http.StatusOK,
			expectedHealth: "ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(5 * time.Second)
			tt.setupChecks(checker)

			req := httptest.NewRequest(http.MethodGet, "/healthz/ready", nil)
			rec := httptest.NewRecorder()

			checker.ReadinessHandler()(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedStatus)
			}
			var status HealthStatus
			if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if status.Status != tt.expectedHealth {
				t.Errorf("body status = %q, want %q", status.Status, tt.expectedHealth)
			}
		})
	}
}

func TestVersionHandler(t *testing.T) {
	handler := VersionHandler("1.0.0", "abc123", "2024-06-01T00:00:00Z")

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if info.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", info.Version)
	}
	if info.Commit != "abc123" {
		t.Errorf("Commit = %q, want abc123", info.Commit)
	}
	if info.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	checker := New(5 * time.Second)

	Register(mux, checker, &config.HealthConfig{
		Enabled:       true,
		LivenessPath:  "/healthz/live",
		ReadinessPath: "/healthz/ready",
	})

	for _, path := range []string{"/healthz/live", "/healthz/ready"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
			}
		})
	}
}

func TestRegister_Disabled(t *testing.T) {
	mux := http.NewServeMux()
	checker := New(5 * time.Second)

	Register(mux, checker, &config.HealthConfig{Enabled: false, LivenessPath: "/healthz/live"})

	req := httptest.NewRequest(http.MethodGet, "/healthz/live", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d when health is disabled", rec.Code, http.StatusNotFound)
	}
}

func TestStoreCheck(t *testing.T) {
	t.Run("existing root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "tickets")
		if err := os.MkdirAll(root, 0o755); err != nil {
			t.Fatal(err)
		}
		st, err := store.NewStore(root)
		if err != nil {
			t.Fatalf("NewStore() error = %v", err)
		}
		if err := StoreCheck(st)(context.Background()); err != nil {
			t.Errorf("StoreCheck() = %v, want nil", err)
		}
	})

	t.Run("missing root is healthy", func(t *testing.T) {
		st, err := store.NewStore(filepath.Join(t.TempDir(), "never-created"))
		if err != nil {
			t.Fatalf("NewStore() error = %v", err)
		}
		if err := StoreCheck(st)(context.Background()); err != nil {
			t.Errorf("StoreCheck() = %v, want nil for a missing root", err)
		}
	})
}

func TestArchiveCheck(t *testing.T) {
	sink, err := lifecycle.NewDirSink(filepath.Join(t.TempDir(), "archive"))
	if err != nil {
		t.Fatalf("NewDirSink() error = %v", err)
	}
	if err := ArchiveCheck(sink)(context.Background()); err != nil {
		t.Errorf("ArchiveCheck() = %v, want nil", err)
	}
}

func TestAuditCheck(t *testing.T) {
	sink := audit.NewMemorySink()
	defer sink.Close()

	if err := AuditCheck(sink)(context.Background()); err != nil {
		t.Errorf("AuditCheck() = %v, want nil", err)
	}
}

func TestCatalogCheck(t *testing.T) {
	cat, err := catalog.NewCatalog(catalog.Config{
		Path: filepath.Join(t.TempDir(), "catalog.db"),
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	defer cat.Close()

	if err := CatalogCheck(cat)(context.Background()); err != nil {
		t.Errorf("CatalogCheck() = %v, want nil", err)
	}
}

func TestConcurrentChecks(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("store", func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	done := make(chan bool, 5)
	for i := 0; i < 5; i++ {
		go func() {
			status := checker.CheckReadiness(context.Background())
			if status.Status != "ready" {
				t.Errorf("Status = %q, want ready", status.Status)
			}
			done <- true
		}()
	}
	for i := 0; i < 5; i++ {
		<-done
	}
}

func TestCheckResult_Duration(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	status := checker.CheckReadiness(context.Background())

	if d := status.Checks["slow"].Duration; d < 50*time.Millisecond {
		t.Errorf("Duration = %v, want >= 50ms", d)
	}
}
