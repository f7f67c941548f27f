package backend

// Event is a notification emitted by a Scanner. The concrete types are
// ProgressEvent, FileErrorEvent, DoneEvent and AbortedEvent.
type Event interface {
	isEvent()
}

// ProgressEvent is emitted once per processed file.
type ProgressEvent struct {
	// Processed increases by one with every event of a scan.
	Processed int `json:"processed"`
	// Total is the number of admitted files counted before processing began.
	Total int    `json:"total"`
	Path  string `json:"path"`
}

// Percent returns completion in the range [0, 100].
func (p ProgressEvent) Percent() float64 {
	if p.Total <= 0 {
		return 100
	}
	return float64(p.Processed) / float64(p.Total) * 100
}

// FileErrorEvent reports a per-file failure as it happens. The same entry is
// also part of the final report.
type FileErrorEvent struct {
	Entry ErrorEntry
}

// DoneEvent carries the finished report. It is the last event of a
// successful scan.
type DoneEvent struct {
	Report *ScanReport
}

// AbortedEvent is the last event of a scan that failed or was canceled.
// Report is set only when the scanner was built WithPartialReport.
type AbortedEvent struct {
	Err    error
	Report *ScanReport
}

func (ProgressEvent) isEvent()  {}
func (FileErrorEvent) isEvent() {}
func (DoneEvent) isEvent()      {}
func (AbortedEvent) isEvent()   {}

// Sink receives events. A Scanner calls it from a single goroutine.
type Sink func(Event)

func (s Sink) emit(ev Event) {
	if s != nil {
		s(ev)
	}
}
