package metrics

import (
	"helpdesk-hq/custodian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// FileMetrics tracks per-file lifecycle outcomes across runs.
//
// Metrics:
//   - custodian_lifecycle_files_total: files by final outcome
//   - custodian_lifecycle_sweep_faults_total: contained faults by kind
//   - custodian_lifecycle_bytes_archived_total: archived payload bytes
//   - custodian_lifecycle_archived_file_size_bytes: size distribution
type FileMetrics struct {
	filesTotal  *prometheus.CounterVec
	faultsTotal *prometheus.CounterVec

	bytesArchived prometheus.Counter
	fileSize      prometheus.Histogram
}

// NewFileMetrics creates and registers file metrics.
func NewFileMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *FileMetrics {
	fm := &FileMetrics{
		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "files_total",
				Help:      "Total files processed by outcome",
			},
			[]string{"outcome"},
		),

		faultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sweep_faults_total",
				Help:      "Total contained sweep faults by kind",
			},
			[]string{"kind"},
		),

		bytesArchived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "bytes_archived_total",
				Help:      "Total bytes copied into the archive",
			},
		),

		fileSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "archived_file_size_bytes",
				Help:      "Size of archived ticket files in bytes",
				Buckets:   cfg.FileSizeBuckets,
			},
		),
	}

	registry.MustRegister(
		fm.filesTotal,
		fm.faultsTotal,
		fm.bytesArchived,
		fm.fileSize,
	)

	return fm
}

// Add adds to the file counter for one outcome: "examined", "archived",
// "verified", "deleted", "held", "skipped", or "would_delete".
func (fm *FileMetrics) Add(outcome string, n int) {
	if n > 0 {
		fm.filesTotal.WithLabelValues(outcome).Add(float64(n))
	}
}

// AddFaults adds to the fault counter for one kind: "copy", "read",
// "verify_mismatch", "policy", or "other".
func (fm *FileMetrics) AddFaults(kind string, n int) {
	if n > 0 {
		fm.faultsTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// AddBytes adds archived payload bytes.
func (fm *FileMetrics) AddBytes(n int64) {
	if n > 0 {
		fm.bytesArchived.Add(float64(n))
	}
}

// ObserveSize records one archived file's size.
func (fm *FileMetrics) ObserveSize(sizeBytes int64) {
	if sizeBytes > 0 {
		fm.fileSize.Observe(float64(sizeBytes))
	}
}
