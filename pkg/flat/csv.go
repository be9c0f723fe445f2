package flat

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV builds a table from CSV input. The first record is the header;
// every cell is kept as a string, schema inference happens at upload.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	t, err := New(header)
	if err != nil {
		return nil, err
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", t.NumRows()+1, err)
		}

		cells := make([]any, len(record))
		for i, cell := range record {
			if cell == "" {
				cells[i] = nil
				continue
			}
			cells[i] = cell
		}

		if err := t.AppendRow(cells); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// WriteCSV writes the table, lists joined with ", ".
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, row := range t.rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = FormatCell(cell)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}
