// Package properties maps between remote property payloads and flat cell
// values, and derives property schemas from sampled column data. Each
// property type is bound to one handler in a static table; adding a type
// means adding one entry here.
package properties

import (
	"fmt"

	"github.com/navikt/notion-table/pkg/notion"
)

// Handler converts one property type between its wire payload and a flat
// cell value, and infers its schema config from sampled values.
type Handler struct {
	typ notion.PropertyType

	flatten func(*notion.PropertyValue) any
	build   func(any) (*notion.PropertyValue, error)
	infer   func(samples []any) (notion.PropertyConfig, error)
}

// Flatten strips the type envelope and returns the cell value; nil for an
// empty payload.
func (h Handler) Flatten(pv *notion.PropertyValue) any {
	if pv == nil {
		return nil
	}

	return h.flatten(pv)
}

// Build constructs the wire payload for a flat value. Read-only types
// return ErrUnsupportedWrite.
func (h Handler) Build(v any) (*notion.PropertyValue, error) {
	if h.build == nil {
		return nil, fmt.Errorf("%s: %w", h.typ, ErrUnsupportedWrite)
	}

	return h.build(v)
}

// Writable reports whether the type can appear in an upload payload.
func (h Handler) Writable() bool {
	return h.build != nil
}

// Infer derives the schema config from a column's sampled flat values.
// Types needing remote-side metadata return ErrSchemaInference.
func (h Handler) Infer(samples []any) (notion.PropertyConfig, error) {
	if h.infer == nil {
		return notion.PropertyConfig{}, fmt.Errorf("%s: %w", h.typ, ErrSchemaInference)
	}

	return h.infer(samples)
}

var handlers map[notion.PropertyType]Handler

// The map is populated in init rather than a var initializer because
// flattenRollup calls For, which reads handlers; a var initializer would
// be an initialization cycle.
func init() {
	handlers = map[notion.PropertyType]Handler{
		notion.TypeTitle: {
			typ:     notion.TypeTitle,
			flatten: flattenTitle,
			build:   buildTitle,
			infer:   inferEmpty(notion.TypeTitle),
		},
		notion.TypeRichText: {
			typ:     notion.TypeRichText,
			flatten: flattenRichText,
			build:   buildRichText,
			infer:   inferEmpty(notion.TypeRichText),
		},
		notion.TypeNumber: {
			typ:     notion.TypeNumber,
			flatten: flattenNumber,
			build:   buildNumber,
			infer:   inferNumber,
		},
		notion.TypeSelect: {
			typ:     notion.TypeSelect,
			flatten: flattenSelect,
			build:   buildSelect,
			infer:   inferSelect,
		},
		notion.TypeMultiSelect: {
			typ:     notion.TypeMultiSelect,
			flatten: flattenMultiSelect,
			build:   buildMultiSelect,
			infer:   inferMultiSelect,
		},
		notion.TypeDate: {
			typ:     notion.TypeDate,
			flatten: flattenDate,
			build:   buildDate,
			infer:   inferEmpty(notion.TypeDate),
		},
		notion.TypePeople: {
			typ:     notion.TypePeople,
			flatten: flattenPeople,
			build:   buildPeople,
			infer:   inferEmpty(notion.TypePeople),
		},
		notion.TypeFiles: {
			typ:     notion.TypeFiles,
			flatten: flattenFiles,
			infer:   inferEmpty(notion.TypeFiles),
		},
		notion.TypeCheckbox: {
			typ:     notion.TypeCheckbox,
			flatten: flattenCheckbox,
			build:   buildCheckbox,
			infer:   inferEmpty(notion.TypeCheckbox),
		},
		notion.TypeURL: {
			typ:     notion.TypeURL,
			flatten: flattenURL,
			build:   buildURL,
			infer:   inferEmpty(notion.TypeURL),
		},
		notion.TypeEmail: {
			typ:     notion.TypeEmail,
			flatten: flattenEmail,
			build:   buildEmail,
			infer:   inferEmpty(notion.TypeEmail),
		},
		notion.TypePhoneNumber: {
			typ:     notion.TypePhoneNumber,
			flatten: flattenPhoneNumber,
			build:   buildPhoneNumber,
			infer:   inferEmpty(notion.TypePhoneNumber),
		},
		notion.TypeFormula: {
			typ:     notion.TypeFormula,
			flatten: flattenFormula,
		},
		notion.TypeRelation: {
			typ:     notion.TypeRelation,
			flatten: flattenRelation,
			build:   buildRelation,
		},
		notion.TypeRollup: {
			typ:     notion.TypeRollup,
			flatten: flattenRollup,
		},
		notion.TypeCreatedTime: {
			typ:     notion.TypeCreatedTime,
			flatten: flattenCreatedTime,
		},
		notion.TypeCreatedBy: {
			typ:     notion.TypeCreatedBy,
			flatten: flattenCreatedBy,
		},
		notion.TypeLastEditedTime: {
			typ:     notion.TypeLastEditedTime,
			flatten: flattenLastEditedTime,
		},
		notion.TypeLastEditedBy: {
			typ:     notion.TypeLastEditedBy,
			flatten: flattenLastEditedBy,
		},
	}
}

// For returns the handler bound to a property type.
func For(t notion.PropertyType) (Handler, error) {
	h, ok := handlers[t]
	if !ok {
		return Handler{}, fmt.Errorf("%s: %w", t, ErrUnsupportedType)
	}

	return h, nil
}
