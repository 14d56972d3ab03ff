package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("report queue is full")
	ErrTimeout      = errors.New("report job timed out")
)
