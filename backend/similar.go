package backend

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// SimilarKeys is a pair of distinct metadata keys that look like the same
// track spelled differently.
type SimilarKeys struct {
	A     MetadataKey `json:"a"`
	B     MetadataKey `json:"b"`
	Score float32     `json:"score"`
}

// SimilarMetadataKeys compares every distinct metadata key among tracks and
// returns the pairs scoring at least threshold (Jaro-Winkler, 0..1). It is a
// hint for the user only; duplicate groups are never merged on similarity.
// Pairs are ordered by the first appearance of A, then of B.
func SimilarMetadataKeys(tracks []TrackMetadata, threshold float32) []SimilarKeys {
	keys := make([]MetadataKey, 0, len(tracks))
	seen := make(map[MetadataKey]bool, len(tracks))
	for i := range tracks {
		k := tracks[i].Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}

	var pairs []SimilarKeys
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			score := keySimilarity(keys[i], keys[j])
			if score >= threshold {
				pairs = append(pairs, SimilarKeys{A: keys[i], B: keys[j], Score: score})
			}
		}
	}
	return pairs
}

// keySimilarity weights title over artist and keeps the combined-string
// score when that is higher.
func keySimilarity(a, b MetadataKey) float32 {
	combined, err := edlib.StringsSimilarity(
		strings.TrimSpace(a.Title+" "+a.Artist),
		strings.TrimSpace(b.Title+" "+b.Artist),
		edlib.JaroWinkler,
	)
	if err != nil {
		return 0
	}
	titleSim, _ := edlib.StringsSimilarity(a.Title, b.Title, edlib.JaroWinkler)
	artistSim, _ := edlib.StringsSimilarity(a.Artist, b.Artist, edlib.JaroWinkler)

	weighted := titleSim*0.6 + artistSim*0.4
	if weighted < combined {
		return combined
	}
	return weighted
}
