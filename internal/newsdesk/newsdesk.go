// Package newsdesk holds the domain types and service surfaces for the
// news aggregation API: normalized articles pulled from external
// providers, per-user filter preferences, and the identity collaborator
// the read API consumes.
package newsdesk

import "errors"

var (
	ErrNotFound = errors.New("resource not found")

	// ErrNoPreferences distinguishes "this user never saved preferences"
	// from an empty result set.
	ErrNoPreferences = errors.New("no preferences found")
)
