package samplereport

import "errors"

var (
	ErrUnknownKind  = errors.New("unknown report kind")
	ErrInvalidRange = errors.New("invalid date range")
)
