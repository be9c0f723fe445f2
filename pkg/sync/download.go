package sync

import (
	"context"
	"fmt"

	"github.com/navikt/notion-table/pkg/flat"
	"github.com/navikt/notion-table/pkg/notion"
	"github.com/navikt/notion-table/pkg/properties"
	"github.com/navikt/notion-table/pkg/urls"
)

type DownloadOptions struct {
	// APIKey overrides the process default for this call only.
	APIKey string
	// NRows caps the number of rows fetched; zero means all.
	NRows int
	// ResolveRelations rewrites relation columns from page ids to the
	// title of the referenced page.
	ResolveRelations bool
}

// Download fetches a remote database into a flat table. Column order is
// the discovered schema order with the title column first; every cell is
// flattened through its property type's handler.
func (s *Service) Download(ctx context.Context, target string, opts DownloadOptions) (*flat.Table, error) {
	id, kind, err := urls.Parse(target)
	if err != nil {
		return nil, err
	}

	if kind == urls.KindPage {
		return nil, fmt.Errorf("target %s is a page, download needs a database", target)
	}

	db, err := s.client.GetDatabase(ctx, id)
	if err != nil {
		return nil, err
	}

	schema, err := properties.FromDatabase(db)
	if err != nil {
		return nil, err
	}

	pages, err := s.collectPages(ctx, id, opts.NRows)
	if err != nil {
		return nil, err
	}

	table, err := flattenPages(schema, pages)
	if err != nil {
		return nil, err
	}

	if opts.ResolveRelations {
		if err := s.resolveRelations(ctx, schema, table); err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Str("database_id", id).
		Int("rows", table.NumRows()).
		Msg("download complete")

	return table, nil
}

// flattenPages builds the table from raw pages. Page properties missing
// from the schema are dropped; a property whose type tag disagrees with
// its column's schema is an invariant violation and fails the download.
func flattenPages(schema *properties.Schema, pages []*notion.Page) (*flat.Table, error) {
	columns := schema.Columns()

	table, err := flat.New(columns)
	if err != nil {
		return nil, err
	}

	if title := schema.TitleColumn(); title != "" {
		if err := table.SetTitleColumn(title); err != nil {
			return nil, err
		}
	}

	for i, page := range pages {
		cells := make([]any, len(columns))

		for j, col := range columns {
			pv, ok := page.Properties[col]
			if !ok {
				continue
			}

			cfg, _ := schema.Config(col)
			if pv.Type != "" && pv.Type != cfg.Type {
				return nil, fmt.Errorf("row %d column %q: value type %s does not match schema type %s", i, col, pv.Type, cfg.Type)
			}

			h, err := schema.Handler(col)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}

			cells[j] = h.Flatten(&pv)
		}

		if err := table.AppendRow(cells); err != nil {
			return nil, err
		}
		if err := table.SetRowMeta(i, page.ID, page.URL); err != nil {
			return nil, err
		}
	}

	return table, nil
}
