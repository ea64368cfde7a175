// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the import pipeline. Match with errors.Is.
var (
	// ErrConfiguration is fatal: a missing or invalid source credential
	// aborts the run before (or instead of) any further strategy.
	ErrConfiguration = errors.New("configuration error")

	// ErrSourceUnavailable marks a source call that failed after retries.
	ErrSourceUnavailable = errors.New("recipe source unavailable")

	// ErrPersistence marks a library write that failed after its retry.
	ErrPersistence = errors.New("recipe library write failed")

	// ErrOutOfCampaignRange is returned when a date falls outside the campaign.
	ErrOutOfCampaignRange = errors.New("date outside campaign range")

	// ErrMissingNutrition rejects candidates without required nutrition facts.
	ErrMissingNutrition = errors.New("required nutrition facts missing")
)

// ImportError attaches the failing operation to an error kind.
type ImportError struct {
	Kind error
	Op   string
	Err  error
}

func (e *ImportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ImportError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewImportError builds an ImportError of the given kind.
func NewImportError(kind error, op string, err error) *ImportError {
	return &ImportError{Kind: kind, Op: op, Err: err}
}
