// Package testutil provides deterministic helpers for tests: sequential
// session ids, a thread-safe call log for callback assertions, and slog
// handlers that discard or capture log records.
package testutil
