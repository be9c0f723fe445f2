// Package sync drives the two top-level operations: downloading a remote
// database into a flat table and uploading a flat table to a page or
// database. Pagination, retries, batching and relation resolution live
// here; value and schema mapping is delegated to pkg/properties.
package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/navikt/notion-table/pkg/config"
	"github.com/navikt/notion-table/pkg/flat"
	"github.com/navikt/notion-table/pkg/notion"
)

const (
	// defaultMaxAttempts is the per-request retry ceiling: one initial
	// attempt plus four backoff retries.
	defaultMaxAttempts = 5
	// defaultBatchSize is the append chunk size, the remote per-request
	// maximum.
	defaultBatchSize = notion.MaxPageSize

	defaultInitialBackoff = 500 * time.Millisecond
)

type Service struct {
	client notion.Operations
	log    zerolog.Logger

	pageSize       int
	batchSize      int
	maxAttempts    int
	initialBackoff time.Duration
}

type Option func(*Service)

// WithMaxAttempts sets the retry ceiling per page or batch request.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		s.maxAttempts = n
	}
}

func WithBatchSize(n int) Option {
	return func(s *Service) {
		s.batchSize = n
	}
}

func WithInitialBackoff(d time.Duration) Option {
	return func(s *Service) {
		s.initialBackoff = d
	}
}

func New(client notion.Operations, log zerolog.Logger, options ...Option) *Service {
	s := &Service{
		client:         client,
		log:            log,
		pageSize:       notion.MaxPageSize,
		batchSize:      defaultBatchSize,
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Download is the package-level convenience wrapper: it resolves the API
// key (explicit option, then process default) and runs a one-shot
// download against the configured endpoint.
func Download(ctx context.Context, target string, opts DownloadOptions) (*flat.Table, error) {
	svc, err := serviceFromConfig(opts.APIKey)
	if err != nil {
		return nil, err
	}

	return svc.Download(ctx, target, opts)
}

// Upload is the package-level counterpart of Download.
func Upload(ctx context.Context, table *flat.Table, target string, opts UploadOptions) (string, error) {
	svc, err := serviceFromConfig(opts.APIKey)
	if err != nil {
		return "", err
	}

	return svc.Upload(ctx, table, target, opts)
}

func serviceFromConfig(explicitKey string) (*Service, error) {
	key, err := config.ResolveAPIKey(explicitKey)
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	client := notion.NewClient(key, zerolog.Nop(), notion.WithBaseURL(cfg.BaseURL))

	return New(client, zerolog.Nop()), nil
}
