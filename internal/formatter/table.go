// Package formatter renders safety-net results as tables, JSON Lines, and
// markdown.
package formatter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"
)

// Table formats columnar output using tabwriter. Rows are buffered until
// Render so that an empty table prints nothing.
type Table struct {
	out      io.Writer
	headers  []string
	rows     [][]string
	maxWidth map[int]int // column index -> max width in runes (0 = unlimited)
}

// NewTable creates a table that writes to w with the given column headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		out:      w,
		headers:  headers,
		maxWidth: make(map[int]int),
	}
}

// SetMaxWidth sets the maximum display width for a column (0-indexed).
// Values exceeding the limit are truncated with "...".
func (t *Table) SetMaxWidth(col, width int) *Table {
	t.maxWidth[col] = width
	return t
}

// AddRow appends a data row. Extra values beyond the header count are ignored;
// missing values are filled with empty strings. Embedded newlines and tabs are
// flattened so a cell cannot break the layout.
func (t *Table) AddRow(values ...string) {
	cells := make([]string, len(t.headers))
	for i := range cells {
		if i < len(values) {
			cells[i] = t.truncate(i, flatten(values[i]))
		}
	}
	t.rows = append(t.rows, cells)
}

// Render writes the header, a separator, and all rows.
func (t *Table) Render() error {
	if len(t.rows) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	writeLine(tw, t.headers)

	sep := make([]string, len(t.headers))
	for i, h := range t.headers {
		sep[i] = strings.Repeat("-", utf8.RuneCountInString(h))
	}
	writeLine(tw, sep)

	for _, row := range t.rows {
		writeLine(tw, row)
	}
	return tw.Flush()
}

func writeLine(w io.Writer, cells []string) {
	//nolint:errcheck // tabwriter buffers; Flush reports the error
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}

func flatten(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(s)
}

func (t *Table) truncate(col int, s string) string {
	limit, ok := t.maxWidth[col]
	if !ok || limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}
