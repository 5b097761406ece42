// Package logging assembles the structured slog loggers used across
// corduroy services.
//
// It centralizes level and output plumbing (console text or JSON, stdout
// plus an optional log file), exposes Attr helpers so call sites stay
// uniform, and provides a no-op logger for tests and wiring code that
// cannot fail. Prefer these constructors over hand-rolled slog setup so
// every component emits data with the same shape.
package logging
