package backend

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure raised by the scan engine.
type ErrorKind string

const (
	// KindValidation marks a bad ScanRequest; nothing was scanned.
	KindValidation ErrorKind = "validation"
	// KindEnumeration marks a tree that could not be walked. The scan is aborted.
	KindEnumeration ErrorKind = "enumeration"
	// KindFileAccess marks a per-file read, seek or stat failure.
	KindFileAccess ErrorKind = "file_access"
	// KindMetadataFormat marks a malformed tag container for a single file.
	KindMetadataFormat ErrorKind = "metadata_format"
)

// Sentinels usable with errors.Is against any *ScanError of the same kind.
var (
	ErrValidation     = errors.New("invalid scan request")
	ErrEnumeration    = errors.New("directory enumeration failed")
	ErrFileAccess     = errors.New("file access failed")
	ErrMetadataFormat = errors.New("malformed metadata")

	ErrNoSignal    = errors.New("at least one signal must be enabled")
	ErrScannerUsed = errors.New("scanner has already been run")
)

// ScanError is the error type produced by every engine component.
type ScanError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Is matches the kind sentinels so callers can test errors.Is(err, ErrFileAccess).
func (e *ScanError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrEnumeration:
		return e.Kind == KindEnumeration
	case ErrFileAccess:
		return e.Kind == KindFileAccess
	case ErrMetadataFormat:
		return e.Kind == KindMetadataFormat
	}
	return false
}

func validationError(path string, err error) error {
	return &ScanError{Kind: KindValidation, Path: path, Err: err}
}

func enumerationError(path string, err error) error {
	return &ScanError{Kind: KindEnumeration, Path: path, Err: err}
}

func fileAccessError(path string, err error) error {
	return &ScanError{Kind: KindFileAccess, Path: path, Err: err}
}

func metadataFormatError(path string, err error) error {
	return &ScanError{Kind: KindMetadataFormat, Path: path, Err: err}
}

// ErrorEntry is a per-file failure recorded in a ScanReport.
type ErrorEntry struct {
	Path    string    `json:"path"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// entryFromError converts a per-file error into a report entry. Errors that
// are not a *ScanError are treated as file access failures.
func entryFromError(path string, err error) ErrorEntry {
	var se *ScanError
	if errors.As(err, &se) {
		p := se.Path
		if p == "" {
			p = path
		}
		return ErrorEntry{Path: p, Kind: se.Kind, Message: se.Err.Error()}
	}
	return ErrorEntry{Path: path, Kind: KindFileAccess, Message: err.Error()}
}
