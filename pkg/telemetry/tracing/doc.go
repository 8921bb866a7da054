// Package tracing provides OpenTelemetry tracing for the sweep daemon.
//
// # Overview
//
// The tracing package exports spans to an OTLP gRPC collector. Each sweep
// run becomes one trace:
//
//	sweep.run
//	├── sweep.partition (2024-01-01)
//	│   ├── verify.digest
//	│   ├── archive.copy
//	│   └── ...
//	└── sweep.partition (2024-01-02)
//
// Span attributes use the "custodian.*" namespace (run id, partition,
// file, digest); see attributes.go for the full set.
//
// # Sampling Strategies
//
// Three sampling strategies are supported:
//   - always: Sample all traces (the sensible default for a daily job)
//   - never: Sample no traces
//   - ratio: Sample a fraction of traces, decided by trace ID hash
//
// # Basic Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "sweep.run")
//	defer span.End()
//
// When tracing is disabled in configuration, New returns a tracer backed
// by the otel noop provider; Start still works and costs almost nothing,
// so callers never need to guard their instrumentation.
package tracing
