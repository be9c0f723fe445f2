package sync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikt/notion-table/pkg/config"
	"github.com/navikt/notion-table/pkg/sync"
)

// The package-level wrappers read the process default config, so these
// tests run serially and restore it when done.
func swapDefault(t *testing.T, cfg *config.Config) {
	t.Helper()

	old := config.Default()
	config.SetDefault(cfg)
	t.Cleanup(func() {
		config.SetDefault(old)
	})
}

func TestDownload_UsesProcessConfig(t *testing.T) {
	e := newEmulator(t)
	id := e.WithDatabase("Tasks", taskSchema())
	withTaskRows(e, id, 3)

	swapDefault(t, &config.Config{APIKey: e.APIKey(), BaseURL: e.Endpoint()})

	table, err := sync.Download(context.Background(), id, sync.DownloadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, table.NumRows())
}

func TestDownload_ExplicitKeyOverridesConfig(t *testing.T) {
	e := newEmulator(t)
	id := e.WithDatabase("Tasks", taskSchema())
	withTaskRows(e, id, 1)

	swapDefault(t, &config.Config{APIKey: "wrong-key", BaseURL: e.Endpoint()})

	_, err := sync.Download(context.Background(), id, sync.DownloadOptions{})
	require.Error(t, err)

	table, err := sync.Download(context.Background(), id, sync.DownloadOptions{APIKey: e.APIKey()})
	require.NoError(t, err)
	assert.Equal(t, 1, table.NumRows())
}

func TestUpload_MissingAPIKey(t *testing.T) {
	e := newEmulator(t)
	id := e.WithDatabase("Tasks", taskSchema())

	swapDefault(t, &config.Config{BaseURL: e.Endpoint()})

	_, err := sync.Upload(context.Background(), taskTable(t, 1), id, sync.UploadOptions{})
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}
