package period

import "errors"

// ErrUnknownGranularity is returned by Parse for names other than day, week and month.
var ErrUnknownGranularity = errors.New("unknown granularity")
