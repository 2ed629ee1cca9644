package repository

import "errors"

var (
	// ErrNotFound is returned when a requested incident or record does not exist.
	ErrNotFound = errors.New("entity not found")
)
