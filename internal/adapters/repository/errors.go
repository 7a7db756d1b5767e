package repository

import "errors"

// Sentinel errors of the repository.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidEvent = errors.New("event needs an id, a match id and a type")
	ErrInvalidSet   = errors.New("set index must be between 1 and 5")
	ErrInvalidMatch = errors.New("match needs an id")
	ErrClosed       = errors.New("store closed")
)
