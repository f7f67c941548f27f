// Package logging assembles the slog loggers used by the dupfynd CLI and
// scan engine.
//
// It maps configured level and format strings onto console (text) or JSON
// handlers, provides a no-op logger for library callers and tests, and a
// ProgressSampler that keeps per-file progress from flooding the log.
package logging
