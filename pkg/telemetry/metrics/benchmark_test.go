package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func Benchmark_Collector_RecordSweep(b *testing.B) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	report := sampleReport()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordSweep(report)
	}
}

func Benchmark_Collector_RecordSweep_Parallel(b *testing.B) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	report := sampleReport()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			collector.RecordSweep(report)
		}
	})
}

func Benchmark_Collector_RecordSkippedTick(b *testing.B) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordSkippedTick()
	}
}

func Benchmark_FileMetrics_ObserveSize(b *testing.B) {
	fm := NewFileMetrics(testConfig(), prometheus.NewRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		fm.ObserveSize(4096)
	}
}

func Benchmark_Collector_Disabled(b *testing.B) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())
	report := sampleReport()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordSweep(report)
	}
}
