// Package domain holds the core data model for gridded sea-surface
// temperature datasets: the spatial grid, the time axis, and the field of
// optional per-cell values.
package domain

import "errors"

// Sentinel errors for the pipeline. Callers match with errors.Is; all
// wrapping is done with fmt.Errorf("...: %w", err).
var (
	// ErrSourceUnavailable means the dataset file is missing/unreadable or
	// the remote fetch failed.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrUnknownVariable means a requested variable is not present in the
	// data source.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrMissingAttribute means a requested metadata attribute is not
	// present on a variable.
	ErrMissingAttribute = errors.New("missing attribute")

	// ErrNoMatchingSlices means a month aggregation matched zero time
	// slices.
	ErrNoMatchingSlices = errors.New("no time slices match the requested month")
)
