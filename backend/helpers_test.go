package backend

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// randomBytes returns n deterministic pseudo-random bytes for seed.
func randomBytes(n int, seed int64) []byte {
	buf := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(buf)
	return buf
}

type tagFields struct {
	Artist string
	Title  string
	Album  string
}

// writeMP3 writes an ID3v2.4 tag followed by audio.
func writeMP3(t *testing.T, path string, fields tagFields, audio []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	tag := id3v2.NewEmptyTag()
	if fields.Artist != "" {
		tag.SetArtist(fields.Artist)
	}
	if fields.Title != "" {
		tag.SetTitle(fields.Title)
	}
	if fields.Album != "" {
		tag.SetAlbum(fields.Album)
	}
	_, err = tag.WriteTo(f)
	require.NoError(t, err)
	_, err = f.Write(audio)
	require.NoError(t, err)
	return path
}

// writeFLAC writes a FLAC file made of a zeroed STREAMINFO block, a Vorbis
// comment block with fields, an optional cover picture, and frames.
func writeFLAC(t *testing.T, path string, fields tagFields, cover bool, frames []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	cmt := flacvorbis.New()
	if fields.Artist != "" {
		require.NoError(t, cmt.Add(flacvorbis.FIELD_ARTIST, fields.Artist))
	}
	if fields.Title != "" {
		require.NoError(t, cmt.Add(flacvorbis.FIELD_TITLE, fields.Title))
	}
	if fields.Album != "" {
		require.NoError(t, cmt.Add(flacvorbis.FIELD_ALBUM, fields.Album))
	}
	cmtBlock := cmt.Marshal()

	file := &goflac.File{
		Meta: []*goflac.MetaDataBlock{
			{Type: goflac.StreamInfo, Data: make([]byte, 34)},
			&cmtBlock,
		},
		Frames: frames,
	}
	if cover {
		pic := flacpicture.MetadataBlockPicture{
			PictureType: flacpicture.PictureTypeFrontCover,
			MIME:        "image/jpeg",
			ImageData:   []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10},
		}
		picBlock := pic.Marshal()
		file.Meta = append(file.Meta, &picBlock)
	}
	require.NoError(t, file.Save(path))
	return path
}

func mp4Box(name string, payload ...[]byte) []byte {
	body := bytes.Join(payload, nil)
	box := make([]byte, 8, 8+len(body))
	binary.BigEndian.PutUint32(box, uint32(8+len(body)))
	copy(box[4:], name)
	return append(box, body...)
}

// mp4Text is an ilst item holding one UTF-8 data atom.
func mp4Text(atom, value string) []byte {
	return mp4Box(atom, mp4Box("data", []byte{0, 0, 0, 1}, []byte{0, 0, 0, 0}, []byte(value)))
}

// writeM4A writes ftyp, a moov/udta/meta/ilst tag tree and an mdat box.
func writeM4A(t *testing.T, path string, fields tagFields, audio []byte) string {
	t.Helper()
	var items [][]byte
	if fields.Artist != "" {
		items = append(items, mp4Text(mp4AtomArtist, fields.Artist))
	}
	if fields.Title != "" {
		items = append(items, mp4Text(mp4AtomTitle, fields.Title))
	}
	if fields.Album != "" {
		items = append(items, mp4Text(mp4AtomAlbum, fields.Album))
	}
	data := bytes.Join([][]byte{
		mp4Box("ftyp", []byte("M4A "), []byte{0, 0, 0, 0}, []byte("M4A isom")),
		mp4Box("moov", mp4Box("udta", mp4Box("meta", []byte{0, 0, 0, 0}, mp4Box("ilst", items...)))),
		mp4Box("mdat", audio),
	}, nil)
	return writeFile(t, path, data)
}

func appendLE32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

// oggCRC is the Ogg page checksum (polynomial 0x04c11db7, no reflection).
func oggCRC(data []byte) uint32 {
	var crc uint32
	for _, v := range data {
		crc ^= uint32(v) << 24
		for i := 0; i < 8; i++ {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ 0x04c11db7
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// writeOgg writes a single Ogg page carrying a Vorbis comment header.
func writeOgg(t *testing.T, path string, fields tagFields) string {
	t.Helper()
	var comments []string
	if fields.Artist != "" {
		comments = append(comments, "ARTIST="+fields.Artist)
	}
	if fields.Title != "" {
		comments = append(comments, "TITLE="+fields.Title)
	}
	if fields.Album != "" {
		comments = append(comments, "ALBUM="+fields.Album)
	}

	vendor := "dupfynd"
	packet := append([]byte("\x03vorbis"), appendLE32(nil, uint32(len(vendor)))...)
	packet = append(packet, vendor...)
	packet = appendLE32(packet, uint32(len(comments)))
	for _, c := range comments {
		packet = appendLE32(packet, uint32(len(c)))
		packet = append(packet, c...)
	}
	packet = append(packet, 1)
	require.Less(t, len(packet), 255)

	page := []byte("OggS")
	page = append(page, 0, 0x02)
	page = append(page, make([]byte, 8)...) // granule position
	page = appendLE32(page, 1)              // serial
	page = appendLE32(page, 1)              // sequence
	page = appendLE32(page, 0)              // checksum, filled below
	page = append(page, 1, byte(len(packet)))
	page = append(page, packet...)
	binary.LittleEndian.PutUint32(page[22:26], oggCRC(page))
	return writeFile(t, path, page)
}

func riffChunk(id string, payload []byte) []byte {
	chunk := append([]byte(id), appendLE32(nil, uint32(len(payload)))...)
	chunk = append(chunk, payload...)
	if len(payload)%2 == 1 {
		chunk = append(chunk, 0)
	}
	return chunk
}

// writeWAV writes 16-bit mono PCM at 8 kHz with a trailing LIST/INFO chunk
// (IART, INAM, IPRD).
func writeWAV(t *testing.T, path string, fields tagFields, samples int) string {
	t.Helper()
	const rate, channels, bits = 8000, 1, 16

	fmtChunk := binary.LittleEndian.AppendUint16(nil, 1)
	fmtChunk = binary.LittleEndian.AppendUint16(fmtChunk, channels)
	fmtChunk = appendLE32(fmtChunk, rate)
	fmtChunk = appendLE32(fmtChunk, rate*channels*bits/8)
	fmtChunk = binary.LittleEndian.AppendUint16(fmtChunk, channels*bits/8)
	fmtChunk = binary.LittleEndian.AppendUint16(fmtChunk, bits)

	info := []byte("INFO")
	for _, f := range []struct{ id, value string }{
		{"IART", fields.Artist}, {"INAM", fields.Title}, {"IPRD", fields.Album},
	} {
		if f.value != "" {
			info = append(info, riffChunk(f.id, append([]byte(f.value), 0))...)
		}
	}

	body := []byte("WAVE")
	body = append(body, riffChunk("fmt ", fmtChunk)...)
	body = append(body, riffChunk("data", make([]byte, samples*bits/8))...)
	body = append(body, riffChunk("LIST", info)...)
	return writeFile(t, path, riffChunk("RIFF", body))
}
