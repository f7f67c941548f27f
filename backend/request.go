package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

// ScanRequest describes one scan.
type ScanRequest struct {
	Root    string          `json:"root" validate:"required,max=4096"`
	Policy  ExtensionPolicy `json:"policy"`
	Signals []Signal        `json:"signals" validate:"dive,oneof=content metadata"`

	// Workers bounds concurrent per-file work. If 0 a default is chosen.
	Workers int `json:"workers" validate:"gte=0,lte=1024"`

	// FileTimeout, when positive, turns a per-file operation that runs longer
	// into a file access error instead of stalling the scan.
	FileTimeout time.Duration `json:"file_timeout" validate:"gte=0"`

	// ReadAudioProperties decodes stream headers (duration, sample rate) for
	// tagged audio files. Display only.
	ReadAudioProperties bool `json:"read_audio_properties"`
}

// HasSignal reports whether s is active for the request.
func (r ScanRequest) HasSignal(s Signal) bool {
	return lo.Contains(r.Signals, s)
}

// Validate checks the request without touching anything but the root's stat.
// It returns a normalized copy: absolute root with symlinks resolved,
// normalized policy, unique signals.
func (r ScanRequest) Validate() (ScanRequest, error) {
	if err := validate.Struct(r); err != nil {
		return r, validationError(r.Root, err)
	}
	if len(r.Signals) == 0 {
		return r, validationError(r.Root, ErrNoSignal)
	}

	root, err := filepath.Abs(filepath.Clean(r.Root))
	if err != nil {
		return r, validationError(r.Root, fmt.Errorf("resolve root: %w", err))
	}
	// WalkDir does not descend into a symlinked root, so resolve it here.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r, validationError(root, errors.New("root directory does not exist"))
		}
		return r, validationError(root, fmt.Errorf("stat root: %w", err))
	}
	if !info.IsDir() {
		return r, validationError(root, errors.New("root is not a directory"))
	}

	out := r
	out.Root = root
	out.Policy = NormalizePolicy(r.Policy)
	out.Signals = lo.Uniq(r.Signals)
	return out, nil
}

// workerCount returns a reasonable default worker count.
func workerCount(requested int) int {
	if requested > 0 {
		return requested
	}
	n := runtime.NumCPU()
	if n < 2 {
		return 2
	}
	// allow a small multiplier for I/O
	return n * 2
}
