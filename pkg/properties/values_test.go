package properties_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikt/notion-table/pkg/notion"
	"github.com/navikt/notion-table/pkg/properties"
)

func TestBuildFlattenRoundTrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		typ    notion.PropertyType
		in     any
		expect any
	}{
		{
			name:   "title",
			typ:    notion.TypeTitle,
			in:     "Release plan",
			expect: "Release plan",
		},
		{
			name:   "rich text",
			typ:    notion.TypeRichText,
			in:     "a note",
			expect: "a note",
		},
		{
			name:   "number",
			typ:    notion.TypeNumber,
			in:     42.5,
			expect: 42.5,
		},
		{
			name:   "number from numeric string",
			typ:    notion.TypeNumber,
			in:     "42.5",
			expect: 42.5,
		},
		{
			name:   "number from int",
			typ:    notion.TypeNumber,
			in:     7,
			expect: 7.0,
		},
		{
			name:   "select",
			typ:    notion.TypeSelect,
			in:     "Done",
			expect: "Done",
		},
		{
			name:   "multi select",
			typ:    notion.TypeMultiSelect,
			in:     []string{"a", "b"},
			expect: []string{"a", "b"},
		},
		{
			name:   "multi select from single label",
			typ:    notion.TypeMultiSelect,
			in:     "solo",
			expect: []string{"solo"},
		},
		{
			name:   "date",
			typ:    notion.TypeDate,
			in:     "2024-05-01",
			expect: "2024-05-01",
		},
		{
			name:   "date span",
			typ:    notion.TypeDate,
			in:     properties.DateSpan{Start: "2024-05-01", End: "2024-05-03"},
			expect: properties.DateSpan{Start: "2024-05-01", End: "2024-05-03"},
		},
		{
			name:   "date from time",
			typ:    notion.TypeDate,
			in:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			expect: "2024-05-01T12:00:00Z",
		},
		{
			name:   "people",
			typ:    notion.TypePeople,
			in:     []string{"11111111-2222-3333-4444-555555555555"},
			expect: []string{"11111111-2222-3333-4444-555555555555"},
		},
		{
			name:   "checkbox",
			typ:    notion.TypeCheckbox,
			in:     true,
			expect: true,
		},
		{
			name:   "checkbox from string",
			typ:    notion.TypeCheckbox,
			in:     "true",
			expect: true,
		},
		{
			name:   "url",
			typ:    notion.TypeURL,
			in:     "https://example.com",
			expect: "https://example.com",
		},
		{
			name:   "email",
			typ:    notion.TypeEmail,
			in:     "a@example.com",
			expect: "a@example.com",
		},
		{
			name:   "phone number",
			typ:    notion.TypePhoneNumber,
			in:     "+47 123 45 678",
			expect: "+47 123 45 678",
		},
		{
			name:   "relation",
			typ:    notion.TypeRelation,
			in:     []string{"11111111-2222-3333-4444-555555555555"},
			expect: []string{"11111111-2222-3333-4444-555555555555"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h, err := properties.For(tc.typ)
			require.NoError(t, err)

			pv, err := h.Build(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.typ, pv.Type)

			assert.Equal(t, tc.expect, h.Flatten(pv))
		})
	}
}

func TestBuild_ConversionErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		typ  notion.PropertyType
		in   any
	}{
		{
			name: "select with comma",
			typ:  notion.TypeSelect,
			in:   "a,b",
		},
		{
			name: "multi select with comma",
			typ:  notion.TypeMultiSelect,
			in:   []string{"ok", "a,b"},
		},
		{
			name: "number from word",
			typ:  notion.TypeNumber,
			in:   "forty-two",
		},
		{
			name: "checkbox from word",
			typ:  notion.TypeCheckbox,
			in:   "sure",
		},
		{
			name: "date from number",
			typ:  notion.TypeDate,
			in:   42.0,
		},
		{
			name: "relation with non uuid",
			typ:  notion.TypeRelation,
			in:   []string{"not-an-id"},
		},
		{
			name: "people with non uuid",
			typ:  notion.TypePeople,
			in:   []string{"not-an-id"},
		},
		{
			name: "title from list",
			typ:  notion.TypeTitle,
			in:   []string{"a"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h, err := properties.For(tc.typ)
			require.NoError(t, err)

			_, err = h.Build(tc.in)
			require.Error(t, err)

			var convErr *properties.ConversionError
			require.ErrorAs(t, err, &convErr)
			assert.Equal(t, tc.typ, convErr.Type)
		})
	}
}

func TestBuild_ReadOnlyTypes(t *testing.T) {
	t.Parallel()

	for _, typ := range []notion.PropertyType{
		notion.TypeFormula,
		notion.TypeRollup,
		notion.TypeFiles,
		notion.TypeCreatedTime,
		notion.TypeCreatedBy,
		notion.TypeLastEditedTime,
		notion.TypeLastEditedBy,
	} {
		typ := typ
		t.Run(string(typ), func(t *testing.T) {
			t.Parallel()

			h, err := properties.For(typ)
			require.NoError(t, err)
			assert.False(t, h.Writable())

			_, err = h.Build("anything")
			assert.ErrorIs(t, err, properties.ErrUnsupportedWrite)
		})
	}
}

func TestFor_UnknownType(t *testing.T) {
	t.Parallel()

	_, err := properties.For(notion.PropertyType("verification"))
	assert.ErrorIs(t, err, properties.ErrUnsupportedType)
}

func TestFlatten_ComputedTypes(t *testing.T) {
	t.Parallel()

	num := 12.5
	truthy := true
	str := "computed"

	t.Run("formula unwraps to its computed type", func(t *testing.T) {
		t.Parallel()

		h, err := properties.For(notion.TypeFormula)
		require.NoError(t, err)

		assert.Equal(t, 12.5, h.Flatten(&notion.PropertyValue{
			Type:    notion.TypeFormula,
			Formula: &notion.Formula{Type: "number", Number: &num},
		}))
		assert.Equal(t, true, h.Flatten(&notion.PropertyValue{
			Type:    notion.TypeFormula,
			Formula: &notion.Formula{Type: "boolean", Boolean: &truthy},
		}))
		assert.Equal(t, "computed", h.Flatten(&notion.PropertyValue{
			Type:    notion.TypeFormula,
			Formula: &notion.Formula{Type: "string", String: &str},
		}))
	})

	t.Run("rollup array flattens each element", func(t *testing.T) {
		t.Parallel()

		h, err := properties.For(notion.TypeRollup)
		require.NoError(t, err)

		got := h.Flatten(&notion.PropertyValue{
			Type: notion.TypeRollup,
			Rollup: &notion.Rollup{
				Type: "array",
				Array: []notion.PropertyValue{
					{Type: notion.TypeNumber, Number: &num},
					{Type: notion.TypeRichText, RichText: notion.EncodeRichText("x")},
				},
			},
		})
		assert.Equal(t, []any{12.5, "x"}, got)
	})

	t.Run("rollup number", func(t *testing.T) {
		t.Parallel()

		h, err := properties.For(notion.TypeRollup)
		require.NoError(t, err)

		got := h.Flatten(&notion.PropertyValue{
			Type:   notion.TypeRollup,
			Rollup: &notion.Rollup{Type: "number", Number: &num},
		})
		assert.Equal(t, 12.5, got)
	})
}

func TestFlatten_EmptyPayloads(t *testing.T) {
	t.Parallel()

	for _, typ := range []notion.PropertyType{
		notion.TypeTitle,
		notion.TypeRichText,
		notion.TypeNumber,
		notion.TypeSelect,
		notion.TypeMultiSelect,
		notion.TypeDate,
		notion.TypePeople,
		notion.TypeFiles,
		notion.TypeCheckbox,
		notion.TypeURL,
		notion.TypeEmail,
		notion.TypePhoneNumber,
		notion.TypeFormula,
		notion.TypeRelation,
		notion.TypeRollup,
		notion.TypeCreatedTime,
		notion.TypeCreatedBy,
		notion.TypeLastEditedTime,
		notion.TypeLastEditedBy,
	} {
		typ := typ
		t.Run(string(typ), func(t *testing.T) {
			t.Parallel()

			h, err := properties.For(typ)
			require.NoError(t, err)

			assert.Nil(t, h.Flatten(&notion.PropertyValue{Type: typ}))
			assert.Nil(t, h.Flatten(nil))
		})
	}
}

func TestFlatten_PeopleAndFiles(t *testing.T) {
	t.Parallel()

	people, err := properties.For(notion.TypePeople)
	require.NoError(t, err)

	got := people.Flatten(&notion.PropertyValue{
		Type: notion.TypePeople,
		People: []notion.User{
			{ID: "11111111-2222-3333-4444-555555555555", Name: "Ada"},
			{ID: "66666666-7777-8888-9999-000000000000"},
		},
	})
	assert.Equal(t, []string{"Ada", "66666666-7777-8888-9999-000000000000"}, got)

	files, err := properties.For(notion.TypeFiles)
	require.NoError(t, err)

	got = files.Flatten(&notion.PropertyValue{
		Type: notion.TypeFiles,
		Files: []notion.File{
			{Name: "a.png", File: &notion.FileRef{URL: "https://files.example/a.png"}},
		},
	})
	assert.Equal(t, []string{"https://files.example/a.png"}, got)
}
