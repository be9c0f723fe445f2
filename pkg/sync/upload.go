package sync

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/navikt/notion-table/pkg/flat"
	"github.com/navikt/notion-table/pkg/notion"
	"github.com/navikt/notion-table/pkg/properties"
	"github.com/navikt/notion-table/pkg/urls"
)

type UploadOptions struct {
	// APIKey overrides the process default for this call only.
	APIKey string
	// Title names the database created when the target is a page.
	Title string
}

// Upload writes a table to the target: rows are appended when the target
// is a database, and a new database is created under the target when it
// is a page. The returned id is the database written to. Classification
// happens before any remote mutation.
func (s *Service) Upload(ctx context.Context, table *flat.Table, target string, opts UploadOptions) (string, error) {
	id, kind, err := urls.Parse(target)
	if err != nil {
		return "", err
	}

	if kind == urls.KindUnknown {
		kind, err = s.classifyTarget(ctx, id)
		if err != nil {
			return "", err
		}
	}

	switch kind {
	case urls.KindDatabase:
		return s.appendToDatabase(ctx, table, id)
	case urls.KindPage:
		return s.createAndFill(ctx, table, id, opts.Title)
	default:
		return "", fmt.Errorf("target %s: %w", target, ErrAmbiguousTarget)
	}
}

// classifyTarget probes a bare id: database retrieve first, then page.
func (s *Service) classifyTarget(ctx context.Context, id string) (urls.Kind, error) {
	if _, err := s.client.GetDatabase(ctx, id); err == nil {
		return urls.KindDatabase, nil
	}

	if _, err := s.client.GetPage(ctx, id); err == nil {
		return urls.KindPage, nil
	}

	return urls.KindUnknown, fmt.Errorf("id %s: %w", id, ErrAmbiguousTarget)
}

func (s *Service) createAndFill(ctx context.Context, table *flat.Table, pageID, title string) (string, error) {
	schema, err := properties.InferFromTable(table)
	if err != nil {
		return "", err
	}

	db, err := s.client.CreateDatabase(ctx, pageID, title, schema)
	if err != nil {
		return "", err
	}

	s.log.Info().
		Str("database_id", db.ID).
		Str("parent_page", pageID).
		Msg("created database")

	if err := s.appendRows(ctx, table, db.ID, schema); err != nil {
		return "", err
	}

	return db.ID, nil
}

func (s *Service) appendToDatabase(ctx context.Context, table *flat.Table, databaseID string) (string, error) {
	db, err := s.client.GetDatabase(ctx, databaseID)
	if err != nil {
		return "", err
	}

	schema, err := properties.FromDatabase(db)
	if err != nil {
		return "", err
	}

	var unknown []string
	for _, col := range table.Columns() {
		if _, ok := schema.Config(col); !ok {
			unknown = append(unknown, col)
		}
	}
	if len(unknown) > 0 {
		return "", fmt.Errorf("table columns not present in database %s: %s", databaseID, strings.Join(unknown, ", "))
	}

	cfgs := notion.NewPropertyConfigs()
	for _, col := range table.Columns() {
		cfg, _ := schema.Config(col)
		cfgs.Set(col, cfg)
	}

	if err := s.appendRows(ctx, table, databaseID, cfgs); err != nil {
		return "", err
	}

	return databaseID, nil
}

// appendRows converts and pushes all rows in sequential batches. The
// first failing batch aborts the rest; the error carries the exact
// committed row count.
func (s *Service) appendRows(ctx context.Context, table *flat.Table, databaseID string, schema *notion.PropertyConfigs) error {
	rows, err := buildRows(table, schema)
	if err != nil {
		return err
	}

	for start := 0; start < len(rows); start += s.batchSize {
		end := start + s.batchSize
		if end > len(rows) {
			end = len(rows)
		}

		if _, err := s.client.AppendRows(ctx, databaseID, rows[start:end]); err != nil {
			return &UploadError{Committed: start, Err: err}
		}

		s.log.Debug().
			Str("database_id", databaseID).
			Int("committed", end).
			Msg("appended batch")
	}

	return nil
}

// buildRows converts every cell through its property type's handler.
// Non-editable columns and empty cells are dropped from the payload.
// All conversion happens before the first remote write, so a bad cell
// never leaves a partial upload behind.
func buildRows(table *flat.Table, schema *notion.PropertyConfigs) ([]map[string]notion.PropertyValue, error) {
	columns := table.Columns()

	rows := make([]map[string]notion.PropertyValue, 0, table.NumRows())
	for r := 0; r < table.NumRows(); r++ {
		row := map[string]notion.PropertyValue{}

		for _, col := range columns {
			cfg, ok := schema.Get(col)
			if !ok || !properties.Editable(cfg.Type) {
				continue
			}

			cell, err := table.Cell(r, col)
			if err != nil {
				return nil, err
			}
			if isEmptyCell(cell) {
				continue
			}

			h, err := properties.For(cfg.Type)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "column %q row %d", col, r)
			}

			pv, err := h.Build(cell)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "column %q row %d", col, r)
			}

			row[col] = *pv
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func isEmptyCell(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	default:
		return false
	}
}
