package services

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned by TriggerSync when another run holds the
// sync lock. The caller loses and does not queue.
var ErrSyncInProgress = errors.New("sync already in progress")

// UpstreamError is a non-success response or transport failure from the D4H
// API. Status is 0 when the request never reached the server.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream request failed: %s", e.Body)
	}
	return fmt.Sprintf("API returned %d: %s", e.Status, e.Body)
}

// ContextUnresolvedError means the (kind, id) scope could not be determined
// even after the identity lookup.
type ContextUnresolvedError struct{ Message string }

func (e *ContextUnresolvedError) Error() string { return e.Message }

// StorageError wraps a local store failure.
type StorageError struct{ Err error }

func (e *StorageError) Error() string { return e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
