package formatter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table renders aligned columnar output through tabwriter. The header row
// and its dashed separator are emitted before the first data row.
type Table struct {
	w        *tabwriter.Writer
	headers  []string
	maxWidth map[int]int // column index -> max width (0 = unlimited)
	started  bool
}

// NewTable creates a table writing to w with the given column headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		w:        tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers:  headers,
		maxWidth: make(map[int]int),
	}
}

// SetMaxWidth caps the display width of a column (0-indexed). Cell values
// longer than the cap are truncated with "...".
func (t *Table) SetMaxWidth(col, width int) *Table {
	t.maxWidth[col] = width
	return t
}

// AddRow appends a data row. Values beyond the header count are dropped;
// missing values render as empty cells.
func (t *Table) AddRow(values ...string) {
	if !t.started {
		t.started = true
		t.emit(t.headers)
		sep := make([]string, len(t.headers))
		for i, h := range t.headers {
			sep[i] = strings.Repeat("-", len(h))
		}
		t.emit(sep)
	}

	cells := make([]string, len(t.headers))
	for i := range cells {
		if i < len(values) {
			cells[i] = t.clip(i, values[i])
		}
	}
	t.emit(cells)
}

// Render flushes the tabwriter. Call once after the last AddRow.
func (t *Table) Render() error {
	return t.w.Flush()
}

func (t *Table) emit(cells []string) {
	//nolint:errcheck // tabwriter output to stdout
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

func (t *Table) clip(col int, s string) string {
	max, ok := t.maxWidth[col]
	if !ok || max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
