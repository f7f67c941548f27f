package backend

import (
	"sort"
	"sync"
	"time"
)

// Signal names one of the two independent duplicate-detection strategies.
type Signal string

const (
	SignalContent  Signal = "content"
	SignalMetadata Signal = "metadata"
)

// FileRecord describes one admitted file. Seq is the walk-discovery index and
// defines member order inside a group.
type FileRecord struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	Ext     string    `json:"ext"`
	ModTime time.Time `json:"mod_time"`
	Seq     int       `json:"-"`
}

// DuplicateGroup is a set of at least two files sharing a fingerprint under one signal.
type DuplicateGroup struct {
	Signal    Signal       `json:"signal"`
	Key       string       `json:"key"`
	Artist    string       `json:"artist,omitempty"`
	Title     string       `json:"title,omitempty"`
	Album     string       `json:"album,omitempty"`
	TotalSize int64        `json:"total_size"`
	Files     []FileRecord `json:"files"`
}

// Paths returns member paths in discovery order.
func (g DuplicateGroup) Paths() []string {
	paths := make([]string, len(g.Files))
	for i, f := range g.Files {
		paths[i] = f.Path
	}
	return paths
}

type duplicateGroupBuilder struct {
	key      string
	artist   string
	title    string
	album    string
	firstSeq int
	files    []FileRecord
}

// Grouper accumulates key → files for one signal. Add is safe for
// concurrent use; Groups is a pure filter over what was added.
type Grouper struct {
	signal Signal

	mu     sync.Mutex
	groups map[string]*duplicateGroupBuilder
}

// NewGrouper returns an empty grouper for signal.
func NewGrouper(signal Signal) *Grouper {
	return &Grouper{
		signal: signal,
		groups: make(map[string]*duplicateGroupBuilder),
	}
}

// Add records rec under key.
func (g *Grouper) Add(key string, rec FileRecord) {
	g.add(key, key, rec, nil)
}

// AddTrack records rec under the metadata key of meta, keeping the first
// seen display tags for the group.
func (g *Grouper) AddTrack(meta *TrackMetadata, rec FileRecord) {
	key := meta.Key()
	g.add(key.mapKey(), key.String(), rec, meta)
}

// add files rec under mapKey; display is the Key reported for the group.
func (g *Grouper) add(mapKey, display string, rec FileRecord, meta *TrackMetadata) {
	g.mu.Lock()
	defer g.mu.Unlock()

	builder, ok := g.groups[mapKey]
	if !ok {
		builder = &duplicateGroupBuilder{key: display, firstSeq: rec.Seq}
		g.groups[mapKey] = builder
	}
	if meta != nil && (!ok || rec.Seq < builder.firstSeq) {
		builder.artist = meta.Artist
		builder.title = meta.Title
		builder.album = meta.Album
	}
	if rec.Seq < builder.firstSeq {
		builder.firstSeq = rec.Seq
	}
	builder.files = append(builder.files, rec)
}

// Groups returns every key with two or more members. Members are ordered by
// discovery sequence and groups by their first member, so the result is the
// same no matter how concurrent Add calls interleaved.
func (g *Grouper) Groups() []DuplicateGroup {
	g.mu.Lock()
	defer g.mu.Unlock()

	builders := make([]*duplicateGroupBuilder, 0, len(g.groups))
	for _, b := range g.groups {
		if len(b.files) < 2 {
			continue
		}
		builders = append(builders, b)
	}
	sort.Slice(builders, func(i, j int) bool {
		return builders[i].firstSeq < builders[j].firstSeq
	})

	duplicates := make([]DuplicateGroup, 0, len(builders))
	for _, b := range builders {
		files := make([]FileRecord, len(b.files))
		copy(files, b.files)
		sort.SliceStable(files, func(i, j int) bool { return files[i].Seq < files[j].Seq })

		var totalSize int64
		for _, f := range files {
			totalSize += f.Size
		}
		duplicates = append(duplicates, DuplicateGroup{
			Signal:    g.signal,
			Key:       b.key,
			Artist:    b.artist,
			Title:     b.title,
			Album:     b.album,
			TotalSize: totalSize,
			Files:     files,
		})
	}
	return duplicates
}
