package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// CheckGroup recomputes signal for the given files and returns the first
// duplicate group still present among them, or nil when none remain. It is
// meant for re-checking a group after the user deleted or edited some of its
// members. Files that can no longer be read, or carry no tags under the
// metadata signal, simply drop out.
func CheckGroup(ctx context.Context, paths []string, signal Signal) (*DuplicateGroup, error) {
	if len(paths) == 0 {
		return nil, validationError("", errors.New("no file paths provided"))
	}
	if signal != SignalContent && signal != SignalMetadata {
		return nil, validationError("", errors.New("unknown signal "+string(signal)))
	}

	grouper := NewGrouper(signal)
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		rec := FileRecord{
			Path:    abs,
			Size:    info.Size(),
			Ext:     fileExtension(path),
			ModTime: info.ModTime(),
			Seq:     i,
		}

		switch signal {
		case SignalContent:
			digest, err := FingerprintFile(path)
			if err != nil {
				continue
			}
			grouper.Add(digest.String(), rec)
		case SignalMetadata:
			meta, err := ExtractMetadata(path)
			if err != nil || meta == nil {
				continue
			}
			grouper.AddTrack(meta, rec)
		}
	}

	groups := grouper.Groups()
	if len(groups) == 0 {
		return nil, nil
	}
	return &groups[0], nil
}
