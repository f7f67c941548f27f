package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type tableColumn struct {
	header string
	align  text.Align
}

func leftColumn(header string) tableColumn  { return tableColumn{header: header, align: text.AlignLeft} }
func rightColumn(header string) tableColumn { return tableColumn{header: header, align: text.AlignRight} }

// renderTable draws blocks of rows with a separator line between blocks, so
// the members of one duplicate group stay visually together. Short rows are
// padded with empty cells.
func renderTable(columns []tableColumn, blocks ...[][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.header
		configs[i] = table.ColumnConfig{Number: i + 1, Align: c.align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	written := false
	for _, block := range blocks {
		if len(block) == 0 {
			continue
		}
		if written {
			tw.AppendSeparator()
		}
		for _, cells := range block {
			row := make(table.Row, len(columns))
			for i := range row {
				if i < len(cells) {
					row[i] = cells[i]
				} else {
					row[i] = ""
				}
			}
			tw.AppendRow(row)
		}
		written = true
	}
	return tw.Render()
}
