package backend

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
)

// id3Reader reads ID3v2 frames from MP3 files.
type id3Reader struct{}

func (id3Reader) ReadTags(path string) (*TagSet, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, readerError(path, "id3v2", err)
	}
	defer t.Close()

	// No ID3 header at all: nothing to extract, not an error.
	if !t.HasFrames() {
		return nil, nil
	}
	return &TagSet{
		Artist: t.Artist(),
		Title:  t.Title(),
		Album:  t.Album(),
	}, nil
}

// flacReader reads native Vorbis comment blocks from FLAC files.
type flacReader struct{}

func (flacReader) ReadTags(path string) (*TagSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fileAccessError(path, fmt.Errorf("open: %w", err))
	}
	defer file.Close()

	f, err := goflac.ParseMetadata(bufio.NewReader(file))
	if err != nil {
		return nil, readerError(path, "flac", err)
	}

	tags := &TagSet{}
	found := false
	for _, block := range f.Meta {
		switch block.Type {
		case goflac.VorbisComment:
			cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return nil, metadataFormatError(path, fmt.Errorf("flac vorbis comment: %w", err))
			}
			tags.Artist = vorbisField(cmt.Comments, flacvorbis.FIELD_ARTIST)
			tags.Title = vorbisField(cmt.Comments, flacvorbis.FIELD_TITLE)
			tags.Album = vorbisField(cmt.Comments, flacvorbis.FIELD_ALBUM)
			found = true
		case goflac.Picture:
			// A broken picture block does not invalidate the text tags.
			if pic, err := flacpicture.ParseFromMetaDataBlock(*block); err == nil && len(pic.ImageData) > 0 {
				tags.HasCoverArt = true
			}
		}
	}
	if !found {
		return nil, nil
	}
	return tags, nil
}

// vorbisField returns the first value of a NAME=value comment, matching the
// field name case-insensitively.
func vorbisField(comments []string, field string) string {
	for _, c := range comments {
		name, value, ok := strings.Cut(c, "=")
		if ok && strings.EqualFold(name, field) {
			return value
		}
	}
	return ""
}

// iTunes atom names used by MP4/M4A containers for the fields we key on.
const (
	mp4AtomArtist = "\xa9ART"
	mp4AtomTitle  = "\xa9nam"
	mp4AtomAlbum  = "\xa9alb"
)

// mp4Reader reads iTunes-style metadata atoms from MP4/M4A files.
type mp4Reader struct{}

func (mp4Reader) ReadTags(path string) (*TagSet, error) {
	m, err := readTagLib(path, "mp4")
	if err != nil || m == nil {
		return nil, err
	}
	return mp4TagSet(m.Raw(), m), nil
}

// textFields is the subset of tag.Metadata used as a fallback when a raw atom is absent.
type textFields interface {
	Artist() string
	Title() string
	Album() string
}

// mp4TagSet maps the atom namespace onto the uniform TagSet shape.
func mp4TagSet(raw map[string]interface{}, fallback textFields) *TagSet {
	pick := func(atom string, alt func() string) string {
		if v, ok := raw[atom].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
		if fallback != nil {
			return alt()
		}
		return ""
	}
	var artist, title, album func() string
	if fallback != nil {
		artist, title, album = fallback.Artist, fallback.Title, fallback.Album
	}
	return &TagSet{
		Artist: pick(mp4AtomArtist, artist),
		Title:  pick(mp4AtomTitle, title),
		Album:  pick(mp4AtomAlbum, album),
	}
}

// oggReader reads Vorbis comments from Ogg files.
type oggReader struct{}

func (oggReader) ReadTags(path string) (*TagSet, error) {
	m, err := readTagLib(path, "ogg")
	if err != nil || m == nil {
		return nil, err
	}
	return &TagSet{Artist: m.Artist(), Title: m.Title(), Album: m.Album()}, nil
}

func readTagLib(path, format string) (tag.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fileAccessError(path, fmt.Errorf("open: %w", err))
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return nil, nil
		}
		return nil, readerError(path, format, err)
	}
	return m, nil
}

// wavReader reads the RIFF INFO list (IART, INAM, IPRD) from WAV files.
type wavReader struct{}

func (wavReader) ReadTags(path string) (*TagSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fileAccessError(path, fmt.Errorf("open: %w", err))
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		err := d.Err()
		if err == nil {
			err = errors.New("not a RIFF/WAVE file")
		}
		return nil, metadataFormatError(path, fmt.Errorf("wav: %w", err))
	}
	d.ReadMetadata()
	if err := d.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, metadataFormatError(path, fmt.Errorf("wav metadata: %w", err))
	}
	if d.Metadata == nil {
		return nil, nil
	}
	return &TagSet{
		Artist: d.Metadata.Artist,
		Title:  d.Metadata.Title,
		Album:  d.Metadata.Product,
	}, nil
}
