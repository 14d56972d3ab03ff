package dataset

import "errors"

// ErrMissingCallDate marks a call that cannot be bucketed in time.
var ErrMissingCallDate = errors.New("call has no date")
