package backend

import (
	"fmt"
	"time"
)

// ScanState is a stage of the scan state machine.
type ScanState int32

const (
	StateIdle ScanState = iota
	StateWalking
	StateProcessing
	StateFinalizing
	StateDone
	StateAborted
)

var scanStateNames = map[ScanState]string{
	StateIdle:       "idle",
	StateWalking:    "walking",
	StateProcessing: "processing",
	StateFinalizing: "finalizing",
	StateDone:       "done",
	StateAborted:    "aborted",
}

func (s ScanState) String() string {
	if name, ok := scanStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// MarshalText encodes the state by name.
func (s ScanState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ScanReport is the result of one scan. It is handed to the caller once and
// not modified afterwards.
type ScanReport struct {
	ID         string    `json:"id"`
	Root       string    `json:"root"`
	Signals    []Signal  `json:"signals"`
	State      ScanState `json:"state"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// TotalFiles counts every admitted file; Processed those handled without error.
	TotalFiles int `json:"total_files"`
	Processed  int `json:"processed"`

	ContentGroups  []DuplicateGroup `json:"content_groups"`
	MetadataGroups []DuplicateGroup `json:"metadata_groups"`
	Errors         []ErrorEntry     `json:"errors"`

	// Tracks lists every file with readable tags, in discovery order.
	Tracks []TrackMetadata `json:"tracks,omitempty"`
}

// HasProblems reports a completed scan that recorded per-file errors.
func (r *ScanReport) HasProblems() bool {
	return len(r.Errors) > 0
}

// Groups returns the groups for signal.
func (r *ScanReport) Groups(signal Signal) []DuplicateGroup {
	switch signal {
	case SignalContent:
		return r.ContentGroups
	case SignalMetadata:
		return r.MetadataGroups
	}
	return nil
}

// DuplicateFiles counts files that belong to some group of signal.
func (r *ScanReport) DuplicateFiles(signal Signal) int {
	n := 0
	for _, g := range r.Groups(signal) {
		n += len(g.Files)
	}
	return n
}

// Duration returns the wall time of the scan.
func (r *ScanReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
