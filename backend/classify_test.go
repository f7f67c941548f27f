package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldScan(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		policy ExtensionPolicy
		want   bool
	}{
		{"empty policy admits anything", "/m/notes.txt", ExtensionPolicy{}, true},
		{"no extension with empty policy", "/m/README", ExtensionPolicy{}, true},
		{"include matches case-insensitively", "/m/A.MP3", ExtensionPolicy{Include: []string{".mp3"}}, true},
		{"include without leading dot", "/m/a.flac", ExtensionPolicy{Include: []string{"FLAC"}}, true},
		{"include rejects others", "/m/a.wav", ExtensionPolicy{Include: []string{".mp3"}}, false},
		{"exclude rejects", "/m/a.txt", ExtensionPolicy{Exclude: []string{".txt"}}, false},
		{"exclude wins over include", "/m/a.mp3", ExtensionPolicy{Include: []string{".mp3"}, Exclude: []string{".MP3"}}, false},
		{"audio only admits audio", "/m/a.ogg", ExtensionPolicy{AudioOnly: true}, true},
		{"audio only rejects text", "/m/a.txt", ExtensionPolicy{AudioOnly: true}, false},
		{"audio only intersects include", "/m/a.txt", ExtensionPolicy{AudioOnly: true, Include: []string{".txt"}}, false},
		{"audio only rejects no extension", "/m/track", ExtensionPolicy{AudioOnly: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldScan(tt.path, tt.policy))
		})
	}
}

func TestNormalizePolicy(t *testing.T) {
	got := NormalizePolicy(ExtensionPolicy{
		Include:   []string{"MP3", ".mp3", " .Flac ", ""},
		Exclude:   []string{"  "},
		AudioOnly: true,
	})
	assert.Equal(t, []string{".mp3", ".flac"}, got.Include)
	assert.Nil(t, got.Exclude)
	assert.True(t, got.AudioOnly)
}

func TestNormalizeExtension(t *testing.T) {
	assert.Equal(t, ".mp3", NormalizeExtension("MP3"))
	assert.Equal(t, ".mp3", NormalizeExtension("..mp3"))
	assert.Equal(t, ".tar.gz", NormalizeExtension(".tar.gz"))
	assert.Equal(t, "", NormalizeExtension(" "))
}

func TestIsAudioExtension(t *testing.T) {
	for _, ext := range AudioExtensions {
		assert.True(t, IsAudioExtension(ext), ext)
	}
	assert.True(t, IsAudioExtension("FLAC"))
	assert.False(t, IsAudioExtension(".txt"))
	assert.False(t, IsAudioExtension(""))
}
