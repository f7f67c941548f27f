package backend

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
)

// AudioProperties holds stream-level information used for display only.
// It never contributes to a duplicate key.
type AudioProperties struct {
	DurationMillis int    `json:"duration_ms"`
	SampleRate     int    `json:"sample_rate"`
	BitDepth       int    `json:"bit_depth,omitempty"`
	Channels       int    `json:"channels,omitempty"`
	Codec          string `json:"codec"`
	Lossless       bool   `json:"lossless"`
}

// ReadAudioProperties decodes stream headers for FLAC, MP3 and WAV files.
// Other extensions return (nil, nil).
func ReadAudioProperties(path string) (*AudioProperties, error) {
	switch fileExtension(path) {
	case ".flac":
		return flacProperties(path)
	case ".mp3":
		return mp3Properties(path)
	case ".wav":
		return wavProperties(path)
	}
	return nil, nil
}

func flacProperties(path string) (*AudioProperties, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("flac stream info: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	props := &AudioProperties{
		SampleRate: int(info.SampleRate),
		BitDepth:   int(info.BitsPerSample),
		Channels:   int(info.NChannels),
		Codec:      "flac",
		Lossless:   true,
	}
	if info.SampleRate > 0 {
		props.DurationMillis = int(info.NSamples * 1000 / uint64(info.SampleRate))
	}
	return props, nil
}

func mp3Properties(path string) (*AudioProperties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("mp3 decoder: %w", err)
	}
	props := &AudioProperties{
		SampleRate: d.SampleRate(),
		Channels:   2,
		Codec:      "mp3",
	}
	// Length is in bytes of 16-bit stereo PCM, so 4 bytes per sample frame.
	if n := d.Length(); n > 0 && props.SampleRate > 0 {
		props.DurationMillis = int(n / 4 * 1000 / int64(props.SampleRate))
	}
	return props, nil
}

func wavProperties(path string) (*AudioProperties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("wav header: %w", err)
	}
	props := &AudioProperties{
		SampleRate: int(d.SampleRate),
		BitDepth:   int(d.BitDepth),
		Channels:   int(d.NumChans),
		Codec:      "pcm",
		Lossless:   true,
	}
	if dur, err := d.Duration(); err == nil {
		props.DurationMillis = int(dur.Milliseconds())
	}
	return props, nil
}
