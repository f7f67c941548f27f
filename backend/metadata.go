package backend

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
)

// UnknownTag replaces any tag field that is missing from a file.
const UnknownTag = "Unknown"

// TagSet is the raw result of a format-specific reader. Empty fields mean
// the container did not carry that field.
type TagSet struct {
	Artist      string
	Title       string
	Album       string
	HasCoverArt bool
}

func (t *TagSet) empty() bool {
	return t == nil || (strings.TrimSpace(t.Artist) == "" &&
		strings.TrimSpace(t.Title) == "" &&
		strings.TrimSpace(t.Album) == "")
}

// MetadataReader reads tags from one container format.
//
// Implementations return (nil, nil) when the file carries no tags at all.
type MetadataReader interface {
	ReadTags(path string) (*TagSet, error)
}

// metadataReaders maps a lower-cased extension to its container reader.
var metadataReaders = map[string]MetadataReader{
	".mp3":  id3Reader{},
	".flac": flacReader{},
	".m4a":  mp4Reader{},
	".mp4":  mp4Reader{},
	".ogg":  oggReader{},
	".wav":  wavReader{},
}

// ReaderFor returns the tag reader registered for ext.
func ReaderFor(ext string) (MetadataReader, bool) {
	r, ok := metadataReaders[NormalizeExtension(ext)]
	return r, ok
}

// TrackMetadata is the normalized tag information of one audio file.
type TrackMetadata struct {
	Path        string           `json:"path"`
	Artist      string           `json:"artist"`
	Title       string           `json:"title"`
	Album       string           `json:"album"`
	Format      string           `json:"format"`
	HasCoverArt bool             `json:"has_cover_art,omitempty"`
	Properties  *AudioProperties `json:"properties,omitempty"`
}

// MetadataKey is the metadata duplicate key: lower-cased artist and title.
// Album is deliberately not part of the key.
type MetadataKey struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// String renders the key for display. Distinct keys may render the same,
// so it is never used for grouping.
func (k MetadataKey) String() string {
	return k.Artist + " - " + k.Title
}

// mapKey encodes the pair so that unequal keys never collide.
func (k MetadataKey) mapKey() string {
	return strconv.Quote(k.Artist) + "\x00" + strconv.Quote(k.Title)
}

// Key returns the normalized duplicate key for m.
func (m *TrackMetadata) Key() MetadataKey {
	return MetadataKey{
		Artist: normalizeTagForKey(m.Artist),
		Title:  normalizeTagForKey(m.Title),
	}
}

func normalizeTagForKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ExtractMetadata reads the tags of path using the reader registered for its
// extension. It returns (nil, nil) for unrecognized extensions and files
// without tags. Missing individual fields are reported as UnknownTag.
func ExtractMetadata(path string) (*TrackMetadata, error) {
	ext := fileExtension(path)
	reader, ok := metadataReaders[ext]
	if !ok {
		return nil, nil
	}

	tags, err := reader.ReadTags(path)
	if err != nil {
		return nil, err
	}
	if tags.empty() {
		return nil, nil
	}

	return &TrackMetadata{
		Path:        path,
		Artist:      orUnknown(tags.Artist),
		Title:       orUnknown(tags.Title),
		Album:       orUnknown(tags.Album),
		Format:      strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), ".")),
		HasCoverArt: tags.HasCoverArt,
	}, nil
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownTag
	}
	return s
}

// readerError classifies a failure coming out of a tag library: failures to
// open or stat the file are file access errors, anything else means the
// container itself is malformed.
func readerError(path, format string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fileAccessError(path, fmt.Errorf("%s: %w", format, err))
	}
	return metadataFormatError(path, fmt.Errorf("%s: %w", format, err))
}
