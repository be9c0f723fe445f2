package flat_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikt/notion-table/pkg/flat"
)

func TestNew(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		columns   []string
		expectErr bool
	}{
		{
			name:    "valid columns",
			columns: []string{"Name", "Score"},
		},
		{
			name:      "duplicate column",
			columns:   []string{"Name", "Name"},
			expectErr: true,
		},
		{
			name:      "empty column name",
			columns:   []string{"Name", ""},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			table, err := flat.New(tc.columns)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.columns, table.Columns())
			assert.Zero(t, table.NumRows())
		})
	}
}

func TestTable_Cells(t *testing.T) {
	t.Parallel()

	table, err := flat.New([]string{"Name", "Score"})
	require.NoError(t, err)

	require.NoError(t, table.AppendRow([]any{"alpha", 1.5}))
	require.NoError(t, table.AppendRow([]any{"beta", nil}))

	assert.Error(t, table.AppendRow([]any{"too-short"}))

	got, err := table.Cell(0, "Score")
	require.NoError(t, err)
	assert.Equal(t, 1.5, got)

	_, err = table.Cell(0, "Nope")
	assert.Error(t, err)

	_, err = table.Cell(5, "Name")
	assert.Error(t, err)

	require.NoError(t, table.SetCell(1, "Score", 2.0))
	got, err = table.Cell(1, "Score")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	values, err := table.ColumnValues("Name")
	require.NoError(t, err)
	assert.Equal(t, []any{"alpha", "beta"}, values)
}

func TestTable_RowMeta(t *testing.T) {
	t.Parallel()

	table, err := flat.New([]string{"Name"})
	require.NoError(t, err)

	require.NoError(t, table.AppendRow([]any{"alpha"}))
	require.NoError(t, table.SetRowMeta(0, "page-1", "https://example.com/p1"))

	assert.Equal(t, []string{"page-1"}, table.PageIDs())
	assert.Equal(t, []string{"https://example.com/p1"}, table.PageURLs())

	assert.Error(t, table.SetRowMeta(3, "x", "y"))
}

func TestTable_TitleColumn(t *testing.T) {
	t.Parallel()

	table, err := flat.New([]string{"Name", "Score"})
	require.NoError(t, err)

	assert.Empty(t, table.TitleColumn())
	assert.Error(t, table.SetTitleColumn("Nope"))

	require.NoError(t, table.SetTitleColumn("Name"))
	assert.Equal(t, "Name", table.TitleColumn())
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		in     any
		expect string
	}{
		{name: "nil", in: nil, expect: ""},
		{name: "string", in: "x", expect: "x"},
		{name: "float", in: 1.5, expect: "1.5"},
		{name: "float without fraction", in: 2.0, expect: "2"},
		{name: "bool", in: true, expect: "true"},
		{name: "string list", in: []string{"a", "b"}, expect: "a, b"},
		{name: "mixed list", in: []any{"a", 1.5}, expect: "a, 1.5"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expect, flat.FormatCell(tc.in))
		})
	}
}

func TestTable_Render(t *testing.T) {
	t.Parallel()

	table, err := flat.New([]string{"Name", "Score"})
	require.NoError(t, err)
	require.NoError(t, table.AppendRow([]any{"alpha", 1.5}))

	out := table.Render()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "1.5")
}

func TestCSV_RoundTrip(t *testing.T) {
	t.Parallel()

	table, err := flat.New([]string{"Name", "Score", "Tags"})
	require.NoError(t, err)
	require.NoError(t, table.AppendRow([]any{"alpha", 1.5, []string{"a", "b"}}))
	require.NoError(t, table.AppendRow([]any{"beta", nil, nil}))

	var buf strings.Builder
	require.NoError(t, table.WriteCSV(&buf))

	got, err := flat.ReadCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Score", "Tags"}, got.Columns())
	require.Equal(t, 2, got.NumRows())

	cell, err := got.Cell(0, "Score")
	require.NoError(t, err)
	assert.Equal(t, "1.5", cell)

	cell, err = got.Cell(0, "Tags")
	require.NoError(t, err)
	assert.Equal(t, "a, b", cell)

	// Empty cells come back as nil, not the empty string.
	cell, err = got.Cell(1, "Score")
	require.NoError(t, err)
	assert.Nil(t, cell)
}

func TestReadCSV_BadInput(t *testing.T) {
	t.Parallel()

	_, err := flat.ReadCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, err = flat.ReadCSV(strings.NewReader("Name,Name\na,b\n"))
	assert.Error(t, err)
}
