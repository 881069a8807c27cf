package utils

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

/**
 * Print rows as a table
 * @param {io.Writer} out - Destination, nil writes to stdout
 * @param {[]string} header - Column titles
 * @param {[][]interface{}} rows - One slice per row, same length as header
 */
func PrintTable(out io.Writer, header []string, rows [][]interface{}) {
	if out == nil {
		out = os.Stdout
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)

	h := make(table.Row, 0, len(header))
	for _, title := range header {
		h = append(h, title)
	}
	t.AppendHeader(h)
	for _, r := range rows {
		t.AppendRow(table.Row(r))
	}
	t.Render()
}
