package properties

import (
	"errors"
	"fmt"

	"github.com/navikt/notion-table/pkg/notion"
)

var (
	// ErrUnsupportedType is returned for property type tags this module
	// has no handler for.
	ErrUnsupportedType = errors.New("unsupported property type")
	// ErrUnsupportedWrite is returned when building a payload for a
	// read-only property type, e.g. formula or rollup.
	ErrUnsupportedWrite = errors.New("property type is read-only")
	// ErrSchemaInference is returned when a property type's schema
	// cannot be derived from local values alone.
	ErrSchemaInference = errors.New("schema cannot be inferred from values")
)

// ConversionError reports a flat value whose shape does not match what the
// property type requires on write.
type ConversionError struct {
	Type  notion.PropertyType
	Value any
	Msg   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %v (%T) to %s: %s", e.Value, e.Value, e.Type, e.Msg)
}

func conversionErr(t notion.PropertyType, v any, msg string) error {
	return &ConversionError{Type: t, Value: v, Msg: msg}
}
