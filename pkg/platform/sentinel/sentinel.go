// Package sentinel holds infrastructure facts that stores return, optionally
// wrapped, for services to translate into domain errors.
package sentinel

import "errors"

var (
	// ErrNotFound: the entity does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable: a backing service cannot be reached right now.
	ErrUnavailable = errors.New("unavailable")
)
