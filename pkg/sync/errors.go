package sync

import (
	"errors"
	"fmt"
)

// ErrAmbiguousTarget is returned when an upload target id cannot be
// classified as a page or a database. Nothing has been written remotely
// when this is returned.
var ErrAmbiguousTarget = errors.New("target is neither a database nor a page")

// PaginationError is returned when a paged download gives up after
// exhausting its retries. Partial is the number of rows accumulated
// before the failure; the rows themselves are discarded by Download but
// the count lets the caller judge how far the sweep got.
type PaginationError struct {
	Partial int
	Err     error
}

func (e *PaginationError) Error() string {
	return fmt.Sprintf("pagination failed after %d rows: %v", e.Partial, e.Err)
}

func (e *PaginationError) Unwrap() error {
	return e.Err
}

// UploadError is returned when a row-append batch fails. Committed is the
// exact number of rows written before the failing batch; uploads are not
// transactional and committed rows stay in the target database.
type UploadError struct {
	Committed int
	Err       error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload aborted after %d committed rows: %v", e.Committed, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
