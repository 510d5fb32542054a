package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Alignment is a column's text alignment.
type Alignment int

// Column alignments.
const (
	AlignLeft Alignment = iota
	AlignRight
)

// TableColumn describes one table column.
type TableColumn struct {
	Name  string
	Align Alignment
	// MaxWidth truncates longer cells. Zero means unbounded.
	MaxWidth int
}

// Table buffers rows and renders them with columns sized to their widest
// cell, measured in display columns.
type Table struct {
	w       io.Writer
	columns []TableColumn
	rows    [][]string
	styles  *TableStyles
}

// NewTable creates a table writing to w.
func NewTable(w io.Writer, columns []TableColumn) *Table {
	return &Table{w: w, columns: columns, styles: NewTableStyles()}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i >= len(values) {
			break
		}
		cell := values[i]
		if maxW := t.columns[i].MaxWidth; maxW > 0 {
			cell = truncateToWidth(cell, maxW)
		}
		row[i] = cell
	}
	t.rows = append(t.rows, row)
}

// Widths returns the display width of each column.
func (t *Table) Widths() []int {
	widths := make([]int, len(t.columns))
	for i, c := range t.columns {
		widths[i] = runewidth.StringWidth(c.Name)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// Render writes the header and every row.
func (t *Table) Render() {
	if len(t.columns) == 0 {
		return
	}
	widths := t.Widths()

	header := make([]string, len(t.columns))
	for i, c := range t.columns {
		header[i] = t.styles.Header.Render(align(c.Name, widths[i], c.Align))
	}
	_, _ = fmt.Fprintln(t.w, strings.TrimRight(strings.Join(header, "  "), " "))

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = t.styles.Cell.Render(align(cell, widths[i], t.columns[i].Align))
		}
		_, _ = fmt.Fprintln(t.w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func align(s string, width int, a Alignment) string {
	if a == AlignRight {
		if pad := width - runewidth.StringWidth(s); pad > 0 {
			return strings.Repeat(" ", pad) + s
		}
		return s
	}
	return padRight(s, width)
}
