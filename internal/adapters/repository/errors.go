package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrInvalidQuery = errors.New("invalid call query")
	ErrClosed       = errors.New("store closed")
)
