package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for sweep run identifiers.
	RunIDKey contextKey = "run_id"

	// PartitionKey is the context key for date partition names.
	PartitionKey contextKey = "partition"

	// TicketKey is the context key for ticket file names.
	TicketKey contextKey = "ticket"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey is the context key for span IDs.
	SpanIDKey contextKey = "span_id"
)

// WithRunID adds a sweep run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the sweep run identifier from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithPartition adds a date partition name to the context.
func WithPartition(ctx context.Context, partition string) context.Context {
	return context.WithValue(ctx, PartitionKey, partition)
}

// GetPartition retrieves the date partition name from the context.
func GetPartition(ctx context.Context) string {
	if partition, ok := ctx.Value(PartitionKey).(string); ok {
		return partition
	}
	return ""
}

// WithTicket adds a ticket file name to the context.
func WithTicket(ctx context.Context, ticket string) context.Context {
	return context.WithValue(ctx, TicketKey, ticket)
}

// GetTicket retrieves the ticket file name from the context.
func GetTicket(ctx context.Context) string {
	if ticket, ok := ctx.Value(TicketKey).(string); ok {
		return ticket
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithSpanID adds a span ID to the context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves the span ID from the context.
func GetSpanID(ctx context.Context) string {
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok {
		return spanID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, "run_id", runID)
	}

	if partition := GetPartition(ctx); partition != "" {
		fields = append(fields, "partition", partition)
	}

	if ticket := GetTicket(ctx); ticket != "" {
		fields = append(fields, "ticket", ticket)
	}

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, "span_id", spanID)
	}

	return fields
}

// ContextLogger is a logger that automatically includes context fields.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a logger that automatically includes context fields.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: logger.WithContext(ctx),
		ctx:    ctx,
	}
}

// Debug logs a debug message with context fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Info logs an info message with context fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Warn logs a warning message with context fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs an error message with context fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}

// With creates a new context logger with additional fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		logger: cl.logger.With(args...),
		ctx:    cl.ctx,
	}
}
