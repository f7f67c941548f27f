package backend

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// AudioExtensions is the fixed set admitted when a policy is restricted to audio files.
var AudioExtensions = []string{".mp3", ".flac", ".m4a", ".mp4", ".wav", ".ogg", ".wma", ".aac"}

var audioExtSet = lo.SliceToMap(AudioExtensions, func(ext string) (string, struct{}) {
	return ext, struct{}{}
})

// ExtensionPolicy decides which discovered files take part in a scan.
//
// Exclude always wins over Include when an extension appears in both.
// An empty Include admits every extension.
type ExtensionPolicy struct {
	Include   []string `json:"include,omitempty" toml:"include"`
	Exclude   []string `json:"exclude,omitempty" toml:"exclude"`
	AudioOnly bool     `json:"audio_only" toml:"audio_only"`
}

// NormalizeExtension lower-cases ext and ensures a single leading dot.
// Blank input returns "".
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	return "." + strings.TrimLeft(ext, ".")
}

// NormalizePolicy returns a copy of p with every extension normalized and
// duplicates removed, preserving first-seen order.
func NormalizePolicy(p ExtensionPolicy) ExtensionPolicy {
	clean := func(exts []string) []string {
		out := lo.Uniq(lo.FilterMap(exts, func(ext string, _ int) (string, bool) {
			n := NormalizeExtension(ext)
			return n, n != ""
		}))
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return ExtensionPolicy{
		Include:   clean(p.Include),
		Exclude:   clean(p.Exclude),
		AudioOnly: p.AudioOnly,
	}
}

// fileExtension returns the lower-cased extension of path including the dot.
func fileExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsAudioExtension reports whether ext (any case, dot optional) is a recognized audio extension.
func IsAudioExtension(ext string) bool {
	_, ok := audioExtSet[NormalizeExtension(ext)]
	return ok
}

// ShouldScan reports whether path is admitted by policy. It performs no I/O.
func ShouldScan(path string, policy ExtensionPolicy) bool {
	ext := fileExtension(path)

	if len(policy.Include) > 0 && !containsExt(policy.Include, ext) {
		return false
	}
	if containsExt(policy.Exclude, ext) {
		return false
	}
	if policy.AudioOnly {
		if _, ok := audioExtSet[ext]; !ok {
			return false
		}
	}
	return true
}

func containsExt(set []string, ext string) bool {
	return lo.ContainsBy(set, func(candidate string) bool {
		return NormalizeExtension(candidate) == ext
	})
}
