package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jedib0t/go-pretty/v6/table"
)

// ExportFormat names a report export layout.
type ExportFormat string

const (
	ExportCSV      ExportFormat = "csv"
	ExportTSV      ExportFormat = "tsv"
	ExportMarkdown ExportFormat = "markdown"
	ExportHTML     ExportFormat = "html"
)

// ParseExportFormat accepts a format name or a file extension such as ".md".
func ParseExportFormat(value string) (ExportFormat, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), ".") {
	case "csv":
		return ExportCSV, nil
	case "tsv":
		return ExportTSV, nil
	case "markdown", "md":
		return ExportMarkdown, nil
	case "html", "htm":
		return ExportHTML, nil
	}
	return "", fmt.Errorf("unsupported export format %q", value)
}

// ExportRow is one group member flattened for export.
type ExportRow struct {
	Signal  Signal
	Group   int
	Key     string
	Path    string
	Name    string
	Ext     string
	Size    int64
	ModTime time.Time
	MIME    string
}

var exportHeader = table.Row{"Signal", "Group", "Key", "Path", "Name", "Extension", "Size", "Modified", "MIME"}

// ExportRows flattens every group of report into rows. Content groups come
// first, then metadata groups; group numbers start at 1 per signal.
func ExportRows(report *ScanReport) []ExportRow {
	if report == nil {
		return nil
	}
	var rows []ExportRow
	for _, signal := range []Signal{SignalContent, SignalMetadata} {
		for i, g := range report.Groups(signal) {
			for _, f := range g.Files {
				rows = append(rows, ExportRow{
					Signal:  signal,
					Group:   i + 1,
					Key:     g.Key,
					Path:    f.Path,
					Name:    filepath.Base(f.Path),
					Ext:     f.Ext,
					Size:    f.Size,
					ModTime: f.ModTime,
					MIME:    detectMIME(f.Path),
				})
			}
		}
	}
	return rows
}

func detectMIME(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	return mtype.String()
}

// RenderExport renders rows in format.
func RenderExport(rows []ExportRow, format ExportFormat) (string, error) {
	tw := table.NewWriter()
	tw.AppendHeader(exportHeader)
	for _, r := range rows {
		modified := ""
		if !r.ModTime.IsZero() {
			modified = r.ModTime.UTC().Format(time.RFC3339)
		}
		tw.AppendRow(table.Row{
			string(r.Signal),
			strconv.Itoa(r.Group),
			r.Key,
			r.Path,
			r.Name,
			r.Ext,
			strconv.FormatInt(r.Size, 10),
			modified,
			r.MIME,
		})
	}

	switch format {
	case ExportCSV:
		return tw.RenderCSV(), nil
	case ExportTSV:
		return tw.RenderTSV(), nil
	case ExportMarkdown:
		return tw.RenderMarkdown(), nil
	case ExportHTML:
		return tw.RenderHTML(), nil
	}
	return "", fmt.Errorf("unsupported export format %q", format)
}

// WriteExport renders the groups of report and atomically replaces path
// with the result.
func WriteExport(report *ScanReport, path string, format ExportFormat) error {
	data, err := RenderExport(ExportRows(report), format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, []byte(data+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write temp export: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to atomically save export: %w", err)
	}
	return nil
}
