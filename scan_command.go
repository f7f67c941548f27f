package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dupfynd/backend"
	"dupfynd/internal/config"
)

type scanOptions struct {
	content      bool
	metadata     bool
	audioOnly    bool
	include      []string
	exclude      []string
	workers      int
	fileTimeout  time.Duration
	audioProps   bool
	jsonOutput   bool
	exportPath   string
	exportFormat string
	similar      float32
}

// scanOutput is the --json document.
type scanOutput struct {
	*backend.ScanReport
	Similar []backend.SimilarKeys `json:"similar,omitempty"`
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Scan a directory tree for duplicate files",
		Long: "Scan walks the directory, fingerprints every admitted file and reads audio tags, " +
			"then lists files that share identical content or the same artist and title.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req := buildScanRequest(cmd, cfg, opts, args[0])

			stderr := cmd.ErrOrStderr()
			var progress *scanProgress
			minLevel := ""
			if !opts.jsonOutput && isTerminal(stderr) {
				progress = newScanProgress(stderr)
				minLevel = "warn"
			}
			log, err := ctx.logger(stderr, minLevel)
			if err != nil {
				return err
			}

			app := ctx.newApp(cmd, log)
			var sink backend.Sink
			if progress != nil {
				sink = progress.handle
			}
			report, err := app.ScanDuplicates(req, sink)
			if err != nil {
				if report != nil && !opts.jsonOutput {
					fmt.Fprintf(cmd.OutOrStdout(), "Scan aborted after %d of %d files\n", report.Processed, report.TotalFiles)
				}
				return err
			}

			var similar []backend.SimilarKeys
			if threshold := similarThreshold(cmd, cfg, opts); threshold > 0 {
				similar, err = app.SimilarKeys(threshold)
				if err != nil {
					return err
				}
			}

			if opts.exportPath != "" {
				format, err := resolveExportFormat(cmd, cfg, opts)
				if err != nil {
					return err
				}
				if err := app.ExportReport(opts.exportPath, format); err != nil {
					return err
				}
			}

			if opts.jsonOutput {
				return writeJSON(cmd, scanOutput{ScanReport: report, Similar: similar})
			}
			out := cmd.OutOrStdout()
			renderScanReport(out, report, similar, isTerminal(out))
			if opts.exportPath != "" {
				fmt.Fprintf(out, "\nExported groups to %s\n", opts.exportPath)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.content, "content", false, "Detect duplicates by file content")
	flags.BoolVar(&opts.metadata, "metadata", false, "Detect duplicates by artist and title tags")
	flags.BoolVar(&opts.audioOnly, "audio-only", false, "Only scan audio files")
	flags.StringSliceVar(&opts.include, "include", nil, "Only scan these extensions (repeatable, e.g. --include .mp3)")
	flags.StringSliceVar(&opts.exclude, "exclude", nil, "Never scan these extensions (wins over --include)")
	flags.IntVar(&opts.workers, "workers", 0, "Concurrent file workers (0 = twice the CPU count)")
	flags.DurationVar(&opts.fileTimeout, "file-timeout", 0, "Give up on a single file after this long (0 = no limit)")
	flags.BoolVar(&opts.audioProps, "audio-properties", false, "Read duration and sample rate of tagged audio files")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Write the report as JSON")
	flags.StringVar(&opts.exportPath, "export", "", "Write the duplicate groups to this file")
	flags.StringVar(&opts.exportFormat, "export-format", "", "Export format: csv, tsv, markdown or html")
	flags.Float32Var(&opts.similar, "similar", 0, "List metadata keys at least this similar (0-1) as hints")
	flags.Lookup("similar").NoOptDefVal = "-1"

	return cmd
}

// buildScanRequest layers command-line flags over the configuration.
func buildScanRequest(cmd *cobra.Command, cfg *config.Config, opts scanOptions, root string) backend.ScanRequest {
	flags := cmd.Flags()
	req := backend.ScanRequest{
		Root: root,
		Policy: backend.ExtensionPolicy{
			Include:   cfg.Scan.Include,
			Exclude:   cfg.Scan.Exclude,
			AudioOnly: cfg.Scan.AudioOnly,
		},
		Workers:             cfg.Scan.Workers,
		FileTimeout:         cfg.Scan.FileTimeout(),
		ReadAudioProperties: cfg.Scan.ReadAudioProperties,
	}

	if opts.content || opts.metadata {
		if opts.content {
			req.Signals = append(req.Signals, backend.SignalContent)
		}
		if opts.metadata {
			req.Signals = append(req.Signals, backend.SignalMetadata)
		}
	} else {
		for _, s := range cfg.Scan.Signals {
			req.Signals = append(req.Signals, backend.Signal(s))
		}
	}

	if flags.Changed("include") {
		req.Policy.Include = opts.include
	}
	if flags.Changed("exclude") {
		req.Policy.Exclude = opts.exclude
	}
	if flags.Changed("audio-only") {
		req.Policy.AudioOnly = opts.audioOnly
	}
	if flags.Changed("workers") {
		req.Workers = opts.workers
	}
	if flags.Changed("file-timeout") {
		req.FileTimeout = opts.fileTimeout
	}
	if flags.Changed("audio-properties") {
		req.ReadAudioProperties = opts.audioProps
	}
	return req
}

func similarThreshold(cmd *cobra.Command, cfg *config.Config, opts scanOptions) float32 {
	if !cmd.Flags().Changed("similar") {
		return 0
	}
	if opts.similar < 0 {
		return float32(cfg.Export.SimilarThreshold)
	}
	return opts.similar
}

// resolveExportFormat prefers --export-format, then the file extension,
// then the configured default.
func resolveExportFormat(cmd *cobra.Command, cfg *config.Config, opts scanOptions) (backend.ExportFormat, error) {
	if cmd.Flags().Changed("export-format") {
		return backend.ParseExportFormat(opts.exportFormat)
	}
	if format, err := backend.ParseExportFormat(filepath.Ext(opts.exportPath)); err == nil {
		return format, nil
	}
	return backend.ParseExportFormat(cfg.Export.Format)
}

func renderScanReport(out io.Writer, report *backend.ScanReport, similar []backend.SimilarKeys, colorize bool) {
	fmt.Fprintf(out, "Scanned %s: %d files considered, %d processed without errors in %s\n",
		report.Root, report.TotalFiles, report.Processed, report.Duration().Round(time.Millisecond))

	for _, signal := range report.Signals {
		groups := report.Groups(signal)
		printSection(out, fmt.Sprintf("%s duplicates: %d groups, %d files",
			signalTitle(signal), len(groups), report.DuplicateFiles(signal)), colorize)
		if len(groups) == 0 {
			fmt.Fprintln(out, "No duplicates found")
			continue
		}
		fmt.Fprintln(out, renderGroupTable(signal, groups, tracksByPath(report.Tracks)))
	}

	if len(similar) > 0 {
		printSection(out, fmt.Sprintf("Similar metadata keys: %d", len(similar)), colorize)
		rows := make([][]string, 0, len(similar))
		for _, s := range similar {
			rows = append(rows, []string{s.A.String(), s.B.String(), strconv.FormatFloat(float64(s.Score), 'f', 3, 32)})
		}
		fmt.Fprintln(out, renderTable([]tableColumn{leftColumn("Key"), leftColumn("Similar to"), rightColumn("Score")}, rows))
	}

	if report.HasProblems() {
		printSection(out, warnText(fmt.Sprintf("Errors: %d", len(report.Errors)), colorize), colorize)
		rows := make([][]string, 0, len(report.Errors))
		for _, e := range report.Errors {
			rows = append(rows, []string{e.Path, string(e.Kind), e.Message})
		}
		fmt.Fprintln(out, renderTable([]tableColumn{leftColumn("Path"), leftColumn("Kind"), leftColumn("Message")}, rows))
	}
}

func renderGroupTable(signal backend.Signal, groups []backend.DuplicateGroup, tracks map[string]backend.TrackMetadata) string {
	columns := []tableColumn{rightColumn("#"), leftColumn("Fingerprint"), leftColumn("Path"), rightColumn("Size"), leftColumn("Modified")}
	if signal == backend.SignalMetadata {
		columns = []tableColumn{rightColumn("#"), leftColumn("Artist"), leftColumn("Title"), leftColumn("Path"), rightColumn("Size"), rightColumn("Duration")}
	}

	blocks := make([][][]string, 0, len(groups))
	for i, g := range groups {
		rows := make([][]string, 0, len(g.Files))
		for _, f := range g.Files {
			size := humanize.IBytes(uint64(max(f.Size, 0)))
			if signal == backend.SignalMetadata {
				rows = append(rows, []string{strconv.Itoa(i + 1), g.Artist, g.Title, f.Path, size, trackDuration(tracks[f.Path])})
				continue
			}
			modified := ""
			if !f.ModTime.IsZero() {
				modified = humanize.Time(f.ModTime)
			}
			rows = append(rows, []string{strconv.Itoa(i + 1), shortKey(g.Key), f.Path, size, modified})
		}
		blocks = append(blocks, rows)
	}
	return renderTable(columns, blocks...)
}

func tracksByPath(tracks []backend.TrackMetadata) map[string]backend.TrackMetadata {
	m := make(map[string]backend.TrackMetadata, len(tracks))
	for _, t := range tracks {
		m[t.Path] = t
	}
	return m
}

func trackDuration(t backend.TrackMetadata) string {
	if t.Properties == nil || t.Properties.DurationMillis <= 0 {
		return ""
	}
	d := time.Duration(t.Properties.DurationMillis) * time.Millisecond
	return d.Round(time.Second).String()
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

func signalTitle(signal backend.Signal) string {
	s := string(signal)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
