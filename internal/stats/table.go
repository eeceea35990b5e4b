package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// writeTable writes headers and rows as space-separated columns sized to the
// widest cell. Columns listed in rightAlign are padded on the left.
func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign ...int) error {
	for _, line := range tableLines(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func tableLines(headers []string, rows [][]string, rightAlign []int) []string {
	widths := make([]int, len(headers))
	for _, row := range append([][]string{headers}, rows...) {
		for len(widths) < len(row) {
			widths = append(widths, 0)
		}
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	if len(widths) == 0 {
		return nil
	}
	right := make([]bool, len(widths))
	for _, col := range rightAlign {
		if col >= 0 && col < len(right) {
			right[col] = true
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, joinCells(headers, widths, right))
	}
	for _, row := range rows {
		lines = append(lines, joinCells(row, widths, right))
	}
	return lines
}

func joinCells(row []string, widths []int, right []bool) string {
	cells := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if right[i] {
			cells[i] = runewidth.FillLeft(cell, width)
		} else {
			cells[i] = runewidth.FillRight(cell, width)
		}
	}
	return strings.Join(cells, " ")
}
