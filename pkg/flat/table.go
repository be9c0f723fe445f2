// Package flat holds the in-memory tabular structure produced by download
// and consumed by upload: named columns, one row per remote page, cells
// holding flattened scalar or list values.
package flat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

type Table struct {
	columns  []string
	colIndex map[string]int
	rows     [][]any

	pageIDs  []string
	pageURLs []string

	titleColumn string
}

func New(columns []string) (*Table, error) {
	idx := make(map[string]int, len(columns))
	for i, col := range columns {
		if col == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, ok := idx[col]; ok {
			return nil, fmt.Errorf("duplicate column name %q", col)
		}
		idx[col] = i
	}

	return &Table{
		columns:  append([]string{}, columns...),
		colIndex: idx,
	}, nil
}

func (t *Table) Columns() []string {
	return append([]string{}, t.columns...)
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIndex[name]
	return ok
}

func (t *Table) NumRows() int {
	return len(t.rows)
}

func (t *Table) AppendRow(cells []any) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.columns))
	}

	t.rows = append(t.rows, append([]any{}, cells...))
	t.pageIDs = append(t.pageIDs, "")
	t.pageURLs = append(t.pageURLs, "")

	return nil
}

func (t *Table) Cell(row int, column string) (any, error) {
	i, ok := t.colIndex[column]
	if !ok {
		return nil, fmt.Errorf("no column %q", column)
	}
	if row < 0 || row >= len(t.rows) {
		return nil, fmt.Errorf("row %d out of range", row)
	}

	return t.rows[row][i], nil
}

func (t *Table) SetCell(row int, column string, value any) error {
	i, ok := t.colIndex[column]
	if !ok {
		return fmt.Errorf("no column %q", column)
	}
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("row %d out of range", row)
	}

	t.rows[row][i] = value

	return nil
}

// ColumnValues returns all cell values of a column in row order.
func (t *Table) ColumnValues(column string) ([]any, error) {
	i, ok := t.colIndex[column]
	if !ok {
		return nil, fmt.Errorf("no column %q", column)
	}

	out := make([]any, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}

	return out, nil
}

// SetRowMeta attaches the remote page id and url of a row.
func (t *Table) SetRowMeta(row int, pageID, pageURL string) error {
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("row %d out of range", row)
	}

	t.pageIDs[row] = pageID
	t.pageURLs[row] = pageURL

	return nil
}

// PageIDs returns the remote page id per row; empty for rows never synced.
func (t *Table) PageIDs() []string {
	return append([]string{}, t.pageIDs...)
}

func (t *Table) PageURLs() []string {
	return append([]string{}, t.pageURLs...)
}

// SetTitleColumn designates the column uploaded as the remote title
// property. The column must exist.
func (t *Table) SetTitleColumn(name string) error {
	if _, ok := t.colIndex[name]; !ok {
		return fmt.Errorf("no column %q", name)
	}

	t.titleColumn = name

	return nil
}

// TitleColumn returns the designated title column, or "" when none was
// set. Callers fall back to the first column.
func (t *Table) TitleColumn() string {
	return t.titleColumn
}

// Render returns the table formatted for a terminal.
func (t *Table) Render() string {
	w := table.NewWriter()

	header := make(table.Row, len(t.columns))
	for i, col := range t.columns {
		header[i] = col
	}
	w.AppendHeader(header)

	for _, row := range t.rows {
		cells := make(table.Row, len(row))
		for i, cell := range row {
			cells[i] = FormatCell(cell)
		}
		w.AppendRow(cells)
	}

	return w.Render()
}

// FormatCell renders a flattened cell value as a string. Lists are comma
// joined, nil is empty.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = FormatCell(e)
		}
		return strings.Join(parts, ", ")
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
