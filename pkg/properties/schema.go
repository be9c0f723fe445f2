package properties

import (
	"errors"
	"fmt"
	"time"

	"github.com/navikt/notion-table/pkg/flat"
	"github.com/navikt/notion-table/pkg/notion"
)

// nonEditable lists the property types the service refuses in page create
// payloads. They are read during download and dropped on upload.
var nonEditable = map[notion.PropertyType]struct{}{
	notion.TypeFormula:        {},
	notion.TypeFiles:          {},
	notion.TypeRollup:         {},
	notion.TypeCreatedTime:    {},
	notion.TypeCreatedBy:      {},
	notion.TypeLastEditedTime: {},
	notion.TypeLastEditedBy:   {},
}

// Editable reports whether values of the type can be written back.
func Editable(t notion.PropertyType) bool {
	_, ok := nonEditable[t]
	return !ok
}

// Schema is a remote database schema mapped to handlers, with the title
// column identified.
type Schema struct {
	props       *notion.PropertyConfigs
	titleColumn string
}

// FromDatabase maps a retrieved database schema. Every property type must
// have a registered handler.
func FromDatabase(db *notion.Database) (*Schema, error) {
	if db.Properties == nil || db.Properties.Len() == 0 {
		return nil, fmt.Errorf("database %s has no properties", db.ID)
	}

	title := ""
	for _, name := range db.Properties.Names {
		cfg := db.Properties.Configs[name]

		if _, err := For(cfg.Type); err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}

		if cfg.Type == notion.TypeTitle && title == "" {
			title = name
		}
	}

	return &Schema{props: db.Properties, titleColumn: title}, nil
}

// Columns returns the column names in document order with the title
// column moved first.
func (s *Schema) Columns() []string {
	out := make([]string, 0, s.props.Len())
	if s.titleColumn != "" {
		out = append(out, s.titleColumn)
	}

	for _, name := range s.props.Names {
		if name != s.titleColumn {
			out = append(out, name)
		}
	}

	return out
}

func (s *Schema) TitleColumn() string {
	return s.titleColumn
}

func (s *Schema) Config(name string) (notion.PropertyConfig, bool) {
	return s.props.Get(name)
}

// Handler returns the handler for a named column.
func (s *Schema) Handler(name string) (Handler, error) {
	cfg, ok := s.props.Get(name)
	if !ok {
		return Handler{}, fmt.Errorf("no property %q in schema", name)
	}

	return For(cfg.Type)
}

// InferFromTable derives a full database schema from a table's values,
// used when upload creates a new database. Column order follows the table.
// The designated title column wins; without one the first column is
// coerced to title, since the remote schema requires exactly one.
func InferFromTable(t *flat.Table) (*notion.PropertyConfigs, error) {
	columns := t.Columns()
	if len(columns) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}

	titleColumn := t.TitleColumn()
	if titleColumn == "" {
		titleColumn = columns[0]
	}

	out := notion.NewPropertyConfigs()
	for _, col := range columns {
		values, err := t.ColumnValues(col)
		if err != nil {
			return nil, err
		}

		typ := notion.TypeTitle
		if col != titleColumn {
			typ = classify(values)
		}

		h, err := For(typ)
		if err != nil {
			return nil, err
		}

		cfg, err := h.Infer(values)
		if errors.Is(err, ErrSchemaInference) {
			// Types needing remote-side metadata degrade to rich_text.
			cfg = emptyConfig(notion.TypeRichText)
		} else if err != nil {
			return nil, fmt.Errorf("inferring schema for column %q: %w", col, err)
		}

		out.Set(col, cfg)
	}

	return out, nil
}

// classify picks the best-fit property type for a column's values:
// all-boolean becomes checkbox, all-numeric number, all-list multi_select,
// all-time date, anything else rich_text.
func classify(values []any) notion.PropertyType {
	sampled := 0
	booleans, numbers, lists, times := 0, 0, 0, 0

	for _, v := range values {
		if v == nil {
			continue
		}
		sampled++

		switch v.(type) {
		case bool:
			booleans++
		case float64, float32, int, int32, int64:
			numbers++
		case []string, []any:
			lists++
		case time.Time:
			times++
		}
	}

	if sampled == 0 {
		return notion.TypeRichText
	}

	switch sampled {
	case booleans:
		return notion.TypeCheckbox
	case numbers:
		return notion.TypeNumber
	case lists:
		return notion.TypeMultiSelect
	case times:
		return notion.TypeDate
	}

	return notion.TypeRichText
}
