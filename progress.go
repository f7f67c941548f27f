package main

import (
	"io"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"

	"dupfynd/backend"
)

// scanProgress renders scan events as a terminal progress bar.
type scanProgress struct {
	bar    *progressbar.ProgressBar
	out    io.Writer
	errors int
}

func newScanProgress(out io.Writer) *scanProgress {
	return &scanProgress{out: out}
}

// handle is a backend.Sink.
func (p *scanProgress) handle(ev backend.Event) {
	switch e := ev.(type) {
	case backend.ProgressEvent:
		if p.bar == nil {
			p.bar = progressbar.NewOptions(e.Total,
				progressbar.OptionSetWriter(p.out),
				progressbar.OptionSetDescription("scanning"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = p.bar.Set(e.Processed)
	case backend.FileErrorEvent:
		p.errors++
		if p.bar != nil {
			p.bar.Describe("scanning (" + strconv.Itoa(p.errors) + " errors)")
		}
	case backend.DoneEvent, backend.AbortedEvent:
		if p.bar != nil {
			_ = p.bar.Finish()
		}
	}
}
