package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/navikt/notion-table/pkg/flat"
	"github.com/navikt/notion-table/pkg/notion"
	"github.com/navikt/notion-table/pkg/properties"
)

// resolveRelations rewrites every relation column in place, replacing
// page ids with the title of the referenced page. One lookup sweep is
// issued per distinct target database. Ids whose target page cannot be
// read stay as the raw id; an unreadable target database leaves its whole
// column untouched. Read-only against the remote side, so safe to rerun.
func (s *Service) resolveRelations(ctx context.Context, schema *properties.Schema, table *flat.Table) error {
	titlesByDatabase := map[string]map[string]string{}

	for _, col := range schema.Columns() {
		cfg, ok := schema.Config(col)
		if !ok || cfg.Type != notion.TypeRelation {
			continue
		}

		if cfg.Relation == nil || cfg.Relation.DatabaseID == "" {
			s.log.Warn().Str("column", col).Msg("relation column has no target database, skipping")
			continue
		}

		targetID := cfg.Relation.DatabaseID

		titles, ok := titlesByDatabase[targetID]
		if !ok {
			var err error
			titles, err = s.relationTitles(ctx, targetID)
			if errors.Is(err, notion.ErrNotExist) || errors.Is(err, notion.ErrPermissionDenied) {
				s.log.Warn().
					Str("column", col).
					Str("target_database", targetID).
					Msg("relation target inaccessible, keeping raw ids")
				titles = map[string]string{}
			} else if err != nil {
				return fmt.Errorf("resolving relation column %q: %w", col, err)
			}

			titlesByDatabase[targetID] = titles
		}

		if err := rewriteRelationColumn(table, col, titles); err != nil {
			return err
		}
	}

	return nil
}

// relationTitles downloads the target database and maps page id to the
// flattened title cell.
func (s *Service) relationTitles(ctx context.Context, databaseID string) (map[string]string, error) {
	db, err := s.client.GetDatabase(ctx, databaseID)
	if err != nil {
		return nil, err
	}

	schema, err := properties.FromDatabase(db)
	if err != nil {
		return nil, err
	}

	titleColumn := schema.TitleColumn()
	if titleColumn == "" {
		return map[string]string{}, nil
	}

	pages, err := s.collectPages(ctx, databaseID, 0)
	if err != nil {
		return nil, err
	}

	h, err := schema.Handler(titleColumn)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string, len(pages))
	for _, page := range pages {
		pv, ok := page.Properties[titleColumn]
		if !ok {
			continue
		}

		if title, ok := h.Flatten(&pv).(string); ok {
			titles[page.ID] = title
		}
	}

	return titles, nil
}

func rewriteRelationColumn(table *flat.Table, col string, titles map[string]string) error {
	for row := 0; row < table.NumRows(); row++ {
		cell, err := table.Cell(row, col)
		if err != nil {
			return err
		}

		ids, ok := cell.([]string)
		if !ok {
			continue
		}

		resolved := make([]string, len(ids))
		for i, id := range ids {
			if title, ok := titles[id]; ok {
				resolved[i] = title
				continue
			}
			resolved[i] = id
		}

		if err := table.SetCell(row, col, resolved); err != nil {
			return err
		}
	}

	return nil
}
