package reports

import "errors"

var (
	// ErrUnknownReport is returned by Build for an unrecognised report kind.
	ErrUnknownReport = errors.New("unknown report kind")
	// ErrUnknownManager is returned for manager-scoped reports when the
	// manager does not appear in the call list.
	ErrUnknownManager = errors.New("unknown manager")
)
