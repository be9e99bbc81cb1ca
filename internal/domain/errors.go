package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySubset is returned when a latest-wins derivation finds no qualifying transaction
	ErrEmptySubset = errors.New("no qualifying transaction")

	// ErrInconsistentPagination is returned when a paginated fetch cannot reach the declared total
	ErrInconsistentPagination = errors.New("inconsistent pagination")

	// ErrMalformedMessage is returned when a transaction message cannot be decoded into its expected shape
	ErrMalformedMessage = errors.New("malformed message")

	// ErrStaleCache is returned when rotating the response cache fails during a refresh cycle
	ErrStaleCache = errors.New("stale cache conflict")

	// ErrSnapshotNotFound is returned when no reconstructed snapshot exists for an address
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// EmptySubsetError indicates that a derivation requiring a non-empty transaction
// subset (price, supply, metadata, max-buy, presale/sale boundary) found none.
// A zero default would be indistinguishable from real data, so this is fatal to
// the refresh cycle.
type EmptySubsetError struct {
	Concern string
}

func (e *EmptySubsetError) Error() string {
	return fmt.Sprintf("%s: %s", e.Concern, ErrEmptySubset)
}

func (e *EmptySubsetError) Unwrap() error {
	return ErrEmptySubset
}

// PaginationError indicates that the accumulated item count of a paginated
// query cannot reach the total reported by the first page.
type PaginationError struct {
	Query   string
	Fetched int
	Total   int
}

func (e *PaginationError) Error() string {
	return fmt.Sprintf("%s: fetched %d of %d for query %q", ErrInconsistentPagination, e.Fetched, e.Total, e.Query)
}

func (e *PaginationError) Unwrap() error {
	return ErrInconsistentPagination
}

// MalformedMessageError indicates that a transaction payload could not be
// decoded into the structured form expected for its method. The transaction is
// excluded from derivations, not fatal to the cycle.
type MalformedMessageError struct {
	Hash   string
	Method string
	Reason string
}

func (e *MalformedMessageError) Error() string {
	return fmt.Sprintf("%s: tx %s method %s: %s", ErrMalformedMessage, e.Hash, e.Method, e.Reason)
}

func (e *MalformedMessageError) Unwrap() error {
	return ErrMalformedMessage
}

// StaleCacheError indicates that the response cache could not be rotated to its
// timestamped backup. Proceeding would mix cached generations, so the refresh
// cycle is aborted.
type StaleCacheError struct {
	Path string
	Err  error
}

func (e *StaleCacheError) Error() string {
	return fmt.Sprintf("%s: rotate %s: %v", ErrStaleCache, e.Path, e.Err)
}

func (e *StaleCacheError) Unwrap() error {
	return ErrStaleCache
}
