package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"dupfynd/internal/logging"
)

// Scanner coordinates one duplicate scan: walk, classify, fingerprint and
// extract concurrently, group, report. A Scanner runs exactly once.
type Scanner struct {
	req           ScanRequest
	log           *slog.Logger
	partialReport bool

	fingerprint func(path string) (ContentDigest, error)
	extract     func(path string) (*TrackMetadata, error)
	properties  func(path string) (*AudioProperties, error)

	state atomic.Int32
	used  atomic.Bool
}

// ScanOption customizes a Scanner.
type ScanOption func(*Scanner)

// WithLogger sets the logger used for scan diagnostics.
func WithLogger(log *slog.Logger) ScanOption {
	return func(s *Scanner) {
		if log != nil {
			s.log = log
		}
	}
}

// WithPartialReport makes a canceled scan hand back what it had collected
// (with State set to StateAborted) alongside the error.
func WithPartialReport() ScanOption {
	return func(s *Scanner) { s.partialReport = true }
}

// NewScanner validates req and returns a scanner in StateIdle.
func NewScanner(req ScanRequest, opts ...ScanOption) (*Scanner, error) {
	valid, err := req.Validate()
	if err != nil {
		return nil, err
	}
	s := &Scanner{
		req:         valid,
		log:         logging.NewNop(),
		fingerprint: FingerprintFile,
		extract:     ExtractMetadata,
		properties:  ReadAudioProperties,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "scanner", "root", valid.Root)
	return s, nil
}

// Request returns the normalized request the scanner was built with.
func (s *Scanner) Request() ScanRequest { return s.req }

// State returns the current stage of the scan.
func (s *Scanner) State() ScanState {
	return ScanState(s.state.Load())
}

func (s *Scanner) setState(state ScanState) {
	s.state.Store(int32(state))
	s.log.Debug("scan state", "state", state.String())
}

// Start runs the scan on its own goroutine and streams its events. The
// channel ends with exactly one DoneEvent or AbortedEvent and is then
// closed; callers must drain it.
func (s *Scanner) Start(ctx context.Context) <-chan Event {
	events := make(chan Event, 64)
	go func() {
		defer close(events)
		_, _ = s.Run(ctx, func(ev Event) {
			switch ev.(type) {
			case DoneEvent, AbortedEvent:
				events <- ev
			default:
				select {
				case events <- ev:
				case <-ctx.Done():
				}
			}
		})
	}()
	return events
}

// Run performs the scan and blocks until it finishes. sink, which may be
// nil, receives progress and per-file error events from this goroutine only,
// followed by one DoneEvent or AbortedEvent.
//
// Per-file failures never fail the scan; they are listed in the report.
// Run returns an error only for an enumeration failure, cancellation, or a
// second call on the same Scanner.
func (s *Scanner) Run(ctx context.Context, sink Sink) (*ScanReport, error) {
	if !s.used.CompareAndSwap(false, true) {
		return nil, ErrScannerUsed
	}

	report := &ScanReport{
		ID:        uuid.NewString(),
		Root:      s.req.Root,
		Signals:   s.req.Signals,
		StartedAt: time.Now(),
	}
	s.log.Info("scan started", "scan_id", report.ID, "signals", s.req.Signals)

	s.setState(StateWalking)
	records, walkErrs, err := s.walk(ctx)
	if err != nil {
		return s.abort(report, sink, err)
	}
	report.TotalFiles = len(records)
	s.log.Info("walk complete", "files", len(records))

	s.setState(StateProcessing)
	contentGroups := NewGrouper(SignalContent)
	metadataGroups := NewGrouper(SignalMetadata)
	for _, entry := range walkErrs {
		sink.emit(FileErrorEvent{Entry: entry})
	}
	collected, err := s.process(ctx, records, contentGroups, metadataGroups, sink)
	report.Processed = collected.processed
	report.Errors = append(append([]ErrorEntry{}, walkErrs...), collected.errors()...)
	report.Tracks = collected.tracks()
	if err != nil {
		return s.abort(report, sink, err)
	}

	s.setState(StateFinalizing)
	report.ContentGroups = contentGroups.Groups()
	report.MetadataGroups = metadataGroups.Groups()
	report.FinishedAt = time.Now()

	s.setState(StateDone)
	report.State = StateDone
	s.log.Info("scan complete",
		"scan_id", report.ID,
		"total", report.TotalFiles,
		"processed", report.Processed,
		"content_groups", len(report.ContentGroups),
		"metadata_groups", len(report.MetadataGroups),
		"errors", len(report.Errors),
		"duration", report.Duration().Round(time.Millisecond).String(),
	)
	sink.emit(DoneEvent{Report: report})
	return report, nil
}

func (s *Scanner) abort(report *ScanReport, sink Sink, err error) (*ScanReport, error) {
	s.setState(StateAborted)
	s.log.Warn("scan aborted", "scan_id", report.ID, "error", err)

	var partial *ScanReport
	if s.partialReport {
		report.State = StateAborted
		report.FinishedAt = time.Now()
		partial = report
	}
	sink.emit(AbortedEvent{Err: err, Report: partial})
	return partial, err
}

// walk enumerates the whole tree before any per-file work so the progress
// total is known from the first processed file. Failing to read the root is
// fatal; an unreadable subdirectory is recorded and its subtree skipped.
func (s *Scanner) walk(ctx context.Context) ([]FileRecord, []ErrorEntry, error) {
	var (
		records []FileRecord
		skipped []ErrorEntry
	)
	err := filepath.WalkDir(s.req.Root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == s.req.Root {
				return enumerationError(path, err)
			}
			s.log.Debug("skipping unreadable directory", "path", path, "error", err)
			skipped = append(skipped, entryFromError(path, fileAccessError(path, err)))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !ShouldScan(path, s.req.Policy) {
			return nil
		}

		rec := FileRecord{Path: path, Ext: fileExtension(path), Seq: len(records)}
		// A failed Info leaves the zero size; processing then reports the file.
		if info, err := d.Info(); err == nil {
			rec.Size = info.Size()
			rec.ModTime = info.ModTime()
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		var se *ScanError
		if errors.As(err, &se) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, err
		}
		return nil, nil, enumerationError(s.req.Root, err)
	}
	return records, skipped, nil
}

// fileScanResult is the result of scanning a single file.
type fileScanResult struct {
	rec       FileRecord
	digest    ContentDigest
	hasDigest bool
	meta      *TrackMetadata
	errs      []error
}

type seqEntry struct {
	seq   int
	entry ErrorEntry
}

// scanCollector is owned by the collecting goroutine in process.
type scanCollector struct {
	processed int
	handled   int
	errorList []seqEntry
	trackList []*TrackMetadata
	trackSeqs []int
}

func (c *scanCollector) errors() []ErrorEntry {
	sort.SliceStable(c.errorList, func(i, j int) bool { return c.errorList[i].seq < c.errorList[j].seq })
	out := make([]ErrorEntry, len(c.errorList))
	for i, e := range c.errorList {
		out[i] = e.entry
	}
	return out
}

func (c *scanCollector) tracks() []TrackMetadata {
	idx := make([]int, len(c.trackList))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return c.trackSeqs[idx[a]] < c.trackSeqs[idx[b]] })
	out := make([]TrackMetadata, 0, len(idx))
	for _, i := range idx {
		out = append(out, *c.trackList[i])
	}
	return out
}

// process fans records out to a bounded worker pool and collects results on
// the calling goroutine, which is the only writer of counters and the only
// caller of sink.
func (s *Scanner) process(ctx context.Context, records []FileRecord, content, metadata *Grouper, sink Sink) (*scanCollector, error) {
	collected := &scanCollector{}
	total := len(records)
	if total == 0 {
		return collected, ctx.Err()
	}

	workers := workerCount(s.req.Workers)
	if workers > total {
		workers = total
	}
	filesCh := make(chan FileRecord)
	resultsCh := make(chan *fileScanResult)
	var wg sync.WaitGroup

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for rec := range filesCh {
				resultsCh <- s.scanFileWithTimeout(ctx, rec)
			}
		}()
	}

	// feeder goroutine
	go func() {
		defer close(filesCh)
		for _, rec := range records {
			select {
			case <-ctx.Done():
				return
			case filesCh <- rec:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	sampler := logging.NewProgressSampler(10)
	for res := range resultsCh {
		collected.handled++

		if res.hasDigest {
			content.Add(res.digest.String(), res.rec)
		}
		if res.meta != nil {
			metadata.AddTrack(res.meta, res.rec)
			collected.trackList = append(collected.trackList, res.meta)
			collected.trackSeqs = append(collected.trackSeqs, res.rec.Seq)
		}
		if len(res.errs) == 0 {
			collected.processed++
		}
		for _, err := range res.errs {
			entry := entryFromError(res.rec.Path, err)
			collected.errorList = append(collected.errorList, seqEntry{seq: res.rec.Seq, entry: entry})
			s.log.Debug("file error", "path", entry.Path, "kind", string(entry.Kind), "error", entry.Message)
			sink.emit(FileErrorEvent{Entry: entry})
		}

		progress := ProgressEvent{Processed: collected.handled, Total: total, Path: res.rec.Path}
		if sampler.ShouldLog(progress.Percent()) {
			s.log.Info("scan progress", "processed", progress.Processed, "total", total,
				"percent", fmt.Sprintf("%.0f", progress.Percent()))
		}
		sink.emit(progress)
	}

	if err := ctx.Err(); err != nil {
		return collected, err
	}
	return collected, nil
}

// scanFileWithTimeout applies the per-file timeout so one hung file doesn't
// block the scan. The abandoned read finishes in the background.
func (s *Scanner) scanFileWithTimeout(ctx context.Context, rec FileRecord) *fileScanResult {
	if s.req.FileTimeout <= 0 {
		return s.scanFile(rec)
	}

	done := make(chan *fileScanResult, 1)
	go func() { done <- s.scanFile(rec) }()

	timer := time.NewTimer(s.req.FileTimeout)
	defer timer.Stop()
	select {
	case res := <-done:
		return res
	case <-timer.C:
		err := fileAccessError(rec.Path, fmt.Errorf("timed out after %s", s.req.FileTimeout))
		return &fileScanResult{rec: rec, errs: []error{err}}
	case <-ctx.Done():
		return &fileScanResult{rec: rec, errs: []error{fileAccessError(rec.Path, ctx.Err())}}
	}
}

// scanFile runs the active signals for one file.
func (s *Scanner) scanFile(rec FileRecord) *fileScanResult {
	res := &fileScanResult{rec: rec}

	if s.req.HasSignal(SignalContent) {
		digest, err := s.fingerprint(rec.Path)
		if err != nil {
			res.errs = append(res.errs, err)
			// The file can't be read at all; tag parsing would fail the same way.
			if errors.Is(err, ErrFileAccess) {
				return res
			}
		} else {
			res.digest = digest
			res.hasDigest = true
		}
	}

	if s.req.HasSignal(SignalMetadata) {
		meta, err := s.extract(rec.Path)
		if err != nil {
			res.errs = append(res.errs, err)
			return res
		}
		if meta != nil && s.req.ReadAudioProperties {
			props, err := s.properties(rec.Path)
			if err != nil {
				s.log.Debug("audio properties unavailable", "path", rec.Path, "error", err)
			} else {
				meta.Properties = props
			}
		}
		res.meta = meta
	}
	return res
}
