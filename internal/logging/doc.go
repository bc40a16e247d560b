// Package logging assembles the structured slog loggers used across
// photovault.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes typed attribute helpers so components emit log lines with the
// same shape. A no-op logger is provided for tests and wiring code that
// cannot fail.
//
// Prefer these constructors over hand-rolled slog setup.
package logging
