package repository

import "errors"

// ErrNotFound is returned when a referenced row does not exist. Repos map
// pgx.ErrNoRows to this so callers don't depend on pgx directly.
var ErrNotFound = errors.New("not found")
