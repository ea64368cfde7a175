// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source is the Recipe Source collaborator: a filtered recipe
// search plus a per-recipe detail fetch, with errors that distinguish rate
// limiting, transient failures, and bad credentials.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

// Source errors. Match with errors.Is.
var (
	ErrRateLimited       = errors.New("rate limited")
	ErrTransient         = errors.New("transient network error")
	ErrInvalidCredential = errors.New("invalid source credential")
	ErrNotFound          = errors.New("recipe not found")
	ErrMalformed         = errors.New("malformed source response")
)

// Source searches and fetches recipes.
type Source interface {
	Name() string

	// CheckCredential fails with ErrInvalidCredential when no usable
	// credential is configured. It makes no network call.
	CheckCredential() error

	Search(ctx context.Context, q Query) (Page, error)
	Details(ctx context.Context, sourceID string) (types.CandidateRecipe, error)
}

// Query is one search page request.
type Query struct {
	Category types.Category
	Filters  types.FilterSet
	Offset   int
}

// Hit is one search result.
type Hit struct {
	// SourceID is source-qualified, e.g. "spoonacular:715538".
	SourceID string
	Title    string
	Summary  string
}

// Page is one page of search results. Offset+len(Hits) reaching
// TotalResults, or an empty page, means the search is exhausted.
type Page struct {
	Hits         []Hit
	Offset       int
	TotalResults int
}

// Exhausted reports whether no further pages exist.
func (p Page) Exhausted() bool {
	return len(p.Hits) == 0 || p.Offset+len(p.Hits) >= p.TotalResults
}

// Retryable reports whether err is worth retrying.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransient)
}

// StatusError is a non-200 response from the source.
type StatusError struct {
	Op     string
	Status int
	Kind   error
}

func (e *StatusError) Error() string {
	if e.Kind == nil {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.Status, e.Kind)
}

func (e *StatusError) Unwrap() error { return e.Kind }

// kindForStatus classifies an HTTP status.
func kindForStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrInvalidCredential
	case status == 402 || status == 429:
		return ErrRateLimited
	case status == 404:
		return ErrNotFound
	case status >= 500:
		return ErrTransient
	default:
		return nil
	}
}
