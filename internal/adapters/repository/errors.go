package repository

import "errors"

// Sentinel kinds for snapshot errors.
var (
	ErrNoSnapshot     = errors.New("no catalog snapshot")
	ErrUnknownBackend = errors.New("unknown snapshot backend")
	ErrCorrupt        = errors.New("catalog snapshot is corrupt")
)
