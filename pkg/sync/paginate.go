package sync

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"

	"github.com/navikt/notion-table/pkg/notion"
)

// paginateState tracks one paged list sweep.
type paginateState int

const (
	stateInit paginateState = iota
	stateFetching
	stateDone
	stateFailed
)

// collectPages runs cursor pagination over a database query until the
// sweep completes, nrows rows have accumulated (nrows > 0), or a request
// exhausts its retries. Requests are sequential; the accumulator is owned
// by this call.
func (s *Service) collectPages(ctx context.Context, databaseID string, nrows int) ([]*notion.Page, error) {
	var (
		acc     []*notion.Page
		cursor  string
		lastErr error
	)

	state := stateInit
	for {
		switch state {
		case stateInit, stateFetching:
			pageSize := s.pageSize
			if nrows > 0 && nrows-len(acc) < pageSize {
				pageSize = nrows - len(acc)
			}

			result, err := s.queryWithRetry(ctx, databaseID, cursor, pageSize)
			if err != nil {
				lastErr = err
				state = stateFailed
				continue
			}

			acc = append(acc, result.Results...)

			s.log.Debug().
				Str("database_id", databaseID).
				Int("rows", len(acc)).
				Bool("has_more", result.HasMore).
				Msg("fetched page")

			switch {
			case nrows > 0 && len(acc) >= nrows:
				// Trim locally; the remote side is never asked for
				// a smaller result set than a full page.
				acc = acc[:nrows]
				state = stateDone
			case result.HasMore:
				cursor = result.NextCursor
				state = stateFetching
			default:
				state = stateDone
			}

		case stateDone:
			return acc, nil

		case stateFailed:
			return nil, &PaginationError{Partial: len(acc), Err: lastErr}
		}
	}
}

// queryWithRetry issues one page request, retrying transient faults with
// exponential backoff up to the configured attempt ceiling.
func (s *Service) queryWithRetry(ctx context.Context, databaseID, cursor string, pageSize int) (*notion.QueryResult, error) {
	var result *notion.QueryResult

	op := func() error {
		res, err := s.client.QueryDatabase(ctx, databaseID, cursor, pageSize)
		if err != nil {
			if !notion.Retryable(err) {
				return backoff.Permanent(err)
			}

			var throttle *notion.ThrottleError
			if errors.As(err, &throttle) {
				s.log.Warn().Dur("retry_after", throttle.RetryAfter).Msg("throttled by remote")
			}

			return err
		}

		result = res

		return nil
	}

	if err := backoff.Retry(op, s.newBackOff(ctx)); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) newBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.initialBackoff

	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(s.maxAttempts-1)), ctx)
}
