package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dupfynd/backend"
	"dupfynd/internal/logging"
)

// App is the facade the commands drive. It owns the base context and keeps
// the most recent report so follow-up calls (export, similarity hints) can
// work on it without rescanning.
type App struct {
	ctx context.Context
	log *slog.Logger

	mu   sync.Mutex
	last *backend.ScanReport
}

func NewApp(log *slog.Logger) *App {
	if log == nil {
		log = logging.NewNop()
	}
	return &App{ctx: context.Background(), log: log}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// ScanDuplicates runs one scan. A canceled scan still hands back the partial
// report so the caller can show how far it got.
func (a *App) ScanDuplicates(req backend.ScanRequest, sink backend.Sink) (*backend.ScanReport, error) {
	scanner, err := backend.NewScanner(req, backend.WithLogger(a.log), backend.WithPartialReport())
	if err != nil {
		return nil, err
	}

	report, err := scanner.Run(a.ctx, sink)
	if report != nil && err == nil {
		a.mu.Lock()
		a.last = report
		a.mu.Unlock()
	}
	return report, err
}

// LastReport returns the report of the last completed scan, if any.
func (a *App) LastReport() *backend.ScanReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// CheckDuplicateGroup re-validates a set of files, typically a group from an
// earlier report after some members were removed. A nil group means the
// files no longer contain duplicates.
func (a *App) CheckDuplicateGroup(filePaths []string, signal backend.Signal) (*backend.DuplicateGroup, error) {
	if len(filePaths) == 0 {
		return nil, fmt.Errorf("no file paths provided")
	}

	ctx, cancel := context.WithTimeout(a.ctx, 30*time.Second)
	defer cancel()

	group, err := backend.CheckGroup(ctx, filePaths, signal)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate group: %w", err)
	}
	return group, nil
}

var errNoReport = errors.New("no completed scan to work on")

// ExportReport writes the groups of the last report to path.
func (a *App) ExportReport(path string, format backend.ExportFormat) error {
	report := a.LastReport()
	if report == nil {
		return errNoReport
	}
	if err := backend.WriteExport(report, path, format); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	a.log.Info("report exported", "path", path, "format", string(format))
	return nil
}

// SimilarKeys lists near-identical metadata keys of the last report.
func (a *App) SimilarKeys(threshold float32) ([]backend.SimilarKeys, error) {
	report := a.LastReport()
	if report == nil {
		return nil, errNoReport
	}
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("similarity threshold must be in (0, 1], got %g", threshold)
	}
	return backend.SimilarMetadataKeys(report.Tracks, threshold), nil
}
