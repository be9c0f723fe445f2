package urls_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikt/notion-table/pkg/urls"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		raw        string
		expectID   string
		expectKind urls.Kind
		expectErr  bool
	}{
		{
			name:       "dashed id",
			raw:        "11111111-2222-3333-4444-555555555555",
			expectID:   "11111111-2222-3333-4444-555555555555",
			expectKind: urls.KindUnknown,
		},
		{
			name:       "undashed id is normalized",
			raw:        "11111111222233334444555555555555",
			expectID:   "11111111-2222-3333-4444-555555555555",
			expectKind: urls.KindUnknown,
		},
		{
			name:       "database url carries a view selector",
			raw:        "https://www.notion.so/workspace/11111111222233334444555555555555?v=aabbccddeeff00112233445566778899",
			expectID:   "11111111-2222-3333-4444-555555555555",
			expectKind: urls.KindDatabase,
		},
		{
			name:       "page url",
			raw:        "https://www.notion.so/workspace/My-Page-11111111222233334444555555555555",
			expectID:   "11111111-2222-3333-4444-555555555555",
			expectKind: urls.KindPage,
		},
		{
			name:       "page url with query noise",
			raw:        "https://www.notion.so/My-Page-11111111222233334444555555555555?pvs=4",
			expectID:   "11111111-2222-3333-4444-555555555555",
			expectKind: urls.KindPage,
		},
		{
			name:      "url without an id",
			raw:       "https://www.notion.so/workspace/My-Page",
			expectErr: true,
		},
		{
			name:      "not an id and not a url",
			raw:       "what is this",
			expectErr: true,
		},
		{
			name:      "empty",
			raw:       "",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			id, kind, err := urls.Parse(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectID, id)
			assert.Equal(t, tc.expectKind, kind)
		})
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "page", urls.KindPage.String())
	assert.Equal(t, "database", urls.KindDatabase.String())
	assert.Equal(t, "unknown", urls.KindUnknown.String())
}
