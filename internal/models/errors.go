package models

import (
	"errors"
	"fmt"
)

// ErrNoListings marks the soft condition where every fetched page parsed to
// zero priced rows. Callers report it with success=true and zero metrics.
var ErrNoListings = errors.New("no listings found")

// NetworkError wraps a timeout or transport failure on a single page fetch.
type NetworkError struct {
	Page int
	URL  string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("page %d fetch failed (%s): %v", e.Page, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
