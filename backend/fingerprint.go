package backend

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// sampleThreshold is the size above which only the head and tail are hashed.
	sampleThreshold = 2 * 1024 * 1024
	// sampleSize is the length of each of the head and tail samples.
	sampleSize = 1024 * 1024
)

var errShortSample = errors.New("file shorter than expected while sampling")

// ContentDigest is the 128-bit content fingerprint of a file.
type ContentDigest [md5.Size]byte

// String returns the hex encoding used as the content group key.
func (d ContentDigest) String() string {
	return hex.EncodeToString(d[:])
}

// FingerprintFile computes the content fingerprint of path.
//
// Files up to 2 MiB are hashed in full. Larger files are sampled: the first
// 1 MiB and the last 1 MiB are hashed back to back, so two large files that
// differ only in the untouched middle region share a fingerprint. That is an
// accepted trade for bounded I/O on big media files.
func FingerprintFile(path string) (ContentDigest, error) {
	var digest ContentDigest

	f, err := os.Open(path)
	if err != nil {
		return digest, fileAccessError(path, fmt.Errorf("open: %w", err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return digest, fileAccessError(path, fmt.Errorf("stat: %w", err))
	}

	h := md5.New()
	if info.Size() > sampleThreshold {
		if err := hashSamples(h, f); err != nil {
			return digest, fileAccessError(path, err)
		}
	} else {
		if _, err := io.Copy(h, f); err != nil {
			return digest, fileAccessError(path, fmt.Errorf("read: %w", err))
		}
	}

	copy(digest[:], h.Sum(nil))
	return digest, nil
}

// hashSamples writes the head and tail samples of f into w.
func hashSamples(w io.Writer, f io.ReadSeeker) error {
	buf := make([]byte, sampleSize)

	if _, err := io.ReadFull(f, buf); err != nil {
		return fmt.Errorf("read head: %w", sampleErr(err))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("hash write: %w", err)
	}

	if _, err := f.Seek(-sampleSize, io.SeekEnd); err != nil {
		return fmt.Errorf("seek tail: %w", err)
	}
	if _, err := io.ReadFull(f, buf); err != nil {
		return fmt.Errorf("read tail: %w", sampleErr(err))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("hash write: %w", err)
	}
	return nil
}

func sampleErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errShortSample
	}
	return err
}
