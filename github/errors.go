package github

import (
	"errors"
	"fmt"
)

// SearchQueryError is returned when a code search page cannot be fetched.
type SearchQueryError struct {
	Query      string
	Page       int
	StatusCode int
	Err        error
}

func (e *SearchQueryError) Error() string {
	return fmt.Sprintf("code search failed (query: %q, page: %d): %s", e.Query, e.Page, e.Err)
}

func (e *SearchQueryError) Unwrap() error {
	return e.Err
}

func (e *SearchQueryError) Timeout() bool {
	return isTimeout(e.Err)
}

// FileFetchError is returned when the content of a repository file cannot
// be fetched or decoded.
type FileFetchError struct {
	Owner      string
	Repo       string
	Path       string
	StatusCode int
	Err        error
}

func (e *FileFetchError) Error() string {
	return fmt.Sprintf("unable to fetch %s/%s/%s: %s", e.Owner, e.Repo, e.Path, e.Err)
}

func (e *FileFetchError) Unwrap() error {
	return e.Err
}

func (e *FileFetchError) Timeout() bool {
	return isTimeout(e.Err)
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
