// Package render formats query results for terminal output.
package render

import (
	"fmt"
	"io"
	"strings"
)

// Cells converts raw result rows into display strings. NULL values render
// as "NULL"; everything else goes through fmt.
func Cells(rows [][]any) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, v := range row {
			if v == nil {
				cells[j] = "NULL"
				continue
			}
			cells[j] = fmt.Sprintf("%v", v)
		}
		out[i] = cells
	}
	return out
}

// Table writes a column-aligned table with a header separator.
func Table(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		fmt.Fprint(w, "|")
		for i, w2 := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(w, " %-*s |", w2, cell)
		}
		fmt.Fprintln(w)
	}

	printRow(headers)
	fmt.Fprint(w, "+")
	for _, w2 := range widths {
		fmt.Fprint(w, strings.Repeat("-", w2+2)+"+")
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		printRow(row)
	}
}
