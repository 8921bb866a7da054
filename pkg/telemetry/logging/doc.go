// Package logging provides structured logging with PII redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON and text formats
//   - Automatic PII redaction (emails, phone numbers, IPs, pasted secrets)
//   - Context-aware logging with run, partition, and ticket metadata
//   - Configurable log levels (debug, info, warn, error)
//
// Ticket bodies and filenames are user-supplied, so any log field that may
// carry them should go through this package rather than a bare slog call.
//
// # Usage
//
//	// Create a logger
//	logger, err := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    RedactPII: true,
//	})
//
//	// Log structured data
//	logger.Info("ticket archived",
//	    "ticket", "ticket_142305_a1b2c3.txt",
//	    "partition", "2026-07-01",
//	    "size_bytes", 1234,
//	)
//
//	// Create context-aware logger
//	ctx := logging.WithRunID(ctx, runID)
//	ctxLogger := logger.WithContext(ctx)
//	ctxLogger.Info("partition swept")  // Includes run_id automatically
//
// # PII Redaction
//
// PII is automatically redacted from log fields when RedactPII is enabled:
//
//   - Emails: user@example.com → user@example.com_redacted
//   - SSN: 123-45-6789 → ***-**-****
//   - IP addresses: 192.168.1.100 → 192.*.*.*
//   - Credit cards: 4111-1111-1111-1111 → ****-****-****-****
//   - Bearer tokens: Bearer eyJhb... → Bearer ***
//
// Values under sensitive keys (password, token, secret, and similar) are
// blanked to a four-character prefix regardless of content.
package logging
