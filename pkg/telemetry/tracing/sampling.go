package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Sampling strategies determine which traces are recorded and exported.
// Three strategies are supported:
//   - always: Sample 100% of traces (development/debugging)
//   - never: Sample 0% of traces (tracing effectively disabled)
//   - ratio: Sample a percentage of traces
//
// A sweep daemon produces at most a handful of traces per day, so "always"
// is a reasonable production setting; "ratio" exists for deployments that
// run sweeps frequently (testing schedules, many instances).

const (
	// SamplerAlways samples all traces
	SamplerAlways = "always"

	// SamplerNever samples no traces
	SamplerNever = "never"

	// SamplerRatio samples a percentage of traces
	SamplerRatio = "ratio"
)

// createSampler creates a sampler based on the strategy and ratio.
//
// TraceIDRatioBased samples on the trace ID hash, so the decision is
// consistent for every span of a trace. All samplers are wrapped in
// ParentBased(), which respects the parent span's sampling decision when
// one exists:
//   - If parent span is sampled → child is sampled
//   - If parent span is not sampled → child is not sampled
//   - If no parent span → use configured sampler
func createSampler(strategy string, ratio float64) (sdktrace.Sampler, error) {
	var baseSampler sdktrace.Sampler

	switch strategy {
	case SamplerAlways:
		baseSampler = sdktrace.AlwaysSample()

	case SamplerNever:
		baseSampler = sdktrace.NeverSample()

	case SamplerRatio:
		if ratio < 0.0 || ratio > 1.0 {
			return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
		}
		baseSampler = sdktrace.TraceIDRatioBased(ratio)

	default:
		return nil, fmt.Errorf("unknown sampler strategy: %s (valid: always, never, ratio)", strategy)
	}

	return sdktrace.ParentBased(baseSampler), nil
}
