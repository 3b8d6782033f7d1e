package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// listTable wraps go-pretty with the layout every tunecast listing uses:
// rounded borders, left-aligned headers, and right alignment reserved for
// numeric columns (track counts, lengths, sizes).
type listTable struct {
	writer  table.Writer
	columns int
}

func newListTable(headers []string, numericColumns ...int) *listTable {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, len(numericColumns))
	for _, column := range numericColumns {
		configs = append(configs, table.ColumnConfig{
			Number:      column,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return &listTable{writer: tw, columns: len(headers)}
}

// addRow appends one listing row, padding short rows to the header width.
func (t *listTable) addRow(cells ...string) {
	row := make(table.Row, t.columns)
	for i := 0; i < t.columns; i++ {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	t.writer.AppendRow(row)
}

func (t *listTable) render() string {
	return t.writer.Render()
}
