package service

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MarkdownTable renders a pipe table with one space of padding per cell.
// Columns whose cells all parse as numbers are right-aligned.
func MarkdownTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	numeric := make([]bool, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
		numeric[i] = len(rows) > 0
	}
	for _, row := range rows {
		for i := range headers {
			cell := cellAt(row, i)
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric[i] = false
			}
		}
	}

	var b strings.Builder
	writeRow(&b, headers, widths, numeric)

	b.WriteString("\n|")
	for i, w := range widths {
		if numeric[i] {
			b.WriteString(strings.Repeat("-", w+1) + ":|")
		} else {
			b.WriteString(":" + strings.Repeat("-", w+1) + "|")
		}
	}

	for _, row := range rows {
		b.WriteByte('\n')
		cells := make([]string, len(headers))
		for i := range headers {
			cells[i] = cellAt(row, i)
		}
		writeRow(&b, cells, widths, numeric)
	}

	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int, right []bool) {
	b.WriteByte('|')
	for i, cell := range cells {
		pad := strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
		if right[i] {
			b.WriteString(" " + pad + cell + " |")
		} else {
			b.WriteString(" " + cell + pad + " |")
		}
	}
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
