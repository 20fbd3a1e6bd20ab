// Package render prints query results as fixed-width text tables.
package render

import (
	"io"
	"strings"
	"unicode/utf8"
)

const (
	cellSeparator = " | "
	lineEnd       = "\n"
)

// Widths returns, per column, the largest character count found in the
// header and every row. Control characters count like any other.
func Widths(columns []string, rows [][]string) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = utf8.RuneCountInString(col)
	}

	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := utf8.RuneCountInString(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// Table writes the header, a dashed separator and every row to w.
// Cells are right-aligned and never truncated.
func Table(w io.Writer, columns []string, rows [][]string) error {
	widths := Widths(columns, rows)

	var b strings.Builder
	writeRow(&b, columns, widths)
	writeSeparator(&b, widths)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	for _, row := range rows {
		b.Reset()
		writeRow(&b, row, widths)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// String renders the table into a string.
func String(columns []string, rows [][]string) string {
	var b strings.Builder
	_ = Table(&b, columns, rows)
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		width := 0
		if i < len(widths) {
			width = widths[i]
		}
		b.WriteString(padLeft(cell, width))
		b.WriteString(cellSeparator)
	}
	b.WriteString(lineEnd)
}

func writeSeparator(b *strings.Builder, widths []int) {
	for i, width := range widths {
		b.WriteString(strings.Repeat("-", width))
		b.WriteString("-|")
		if i < len(widths)-1 {
			b.WriteString("-")
		}
	}
	b.WriteString(lineEnd)
}

// padLeft right-aligns s in width columns. Wider values come back unchanged.
func padLeft(s string, width int) string {
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
