package trends

import "errors"

// ErrUnknownMetric is returned by ParseMetric for names other than score, count or duration.
var ErrUnknownMetric = errors.New("unknown metric")
