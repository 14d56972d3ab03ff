// Package trends classifies the direction of metric series, builds time
// series for charts and flags outliers.
package trends

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/period"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/stats"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
)

const (
	// slopeShare is the fraction of the series mean the slope has to exceed.
	slopeShare = 0.05
	// significance is the p-value below which a slope counts.
	significance = 0.1
	// wowThreshold is the week-over-week percent change that counts as a move.
	wowThreshold = 2.0

	// DefaultPeriod is the moving-average window used by reports.
	DefaultPeriod = 7
	// DefaultAnomalyThreshold is the default z-score cut-off.
	DefaultAnomalyThreshold = 2.0
	// DefaultBins is the default histogram resolution.
	DefaultBins = 10
)

// Metric selects what a time series point measures.
type Metric string

const (
	MetricScore    Metric = "score"
	MetricCount    Metric = "count"
	MetricDuration Metric = "duration"
)

// ParseMetric validates a metric name. Empty means score.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MetricScore, nil
	case MetricScore, MetricCount, MetricDuration:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

// Trend fits a least-squares line through values against their index.
// A slope counts only when it exceeds 5% of the mean and is significant at
// p < 0.1. Fewer than two values are stable.
func Trend(values []float64, window int) types.TrendResult {
	if len(values) < 2 {
		ma := make([]float64, len(values))
		copy(ma, values)
		return types.TrendResult{Direction: types.DirectionStable, MovingAverage: ma, PValue: 1}
	}

	fit := stats.LinearFit(stats.Index(len(values)), values)
	mean := stats.Mean(values)
	threshold := 1.0
	if mean != 0 {
		threshold = slopeShare * mean
	}

	dir := types.DirectionStable
	switch {
	case fit.Slope > threshold && fit.PValue < significance:
		dir = types.DirectionUp
	case fit.Slope < -threshold && fit.PValue < significance:
		dir = types.DirectionDown
	}

	return types.TrendResult{
		Direction:     dir,
		ChangePercent: stats.Round(stats.ChangePercent(values[0], values[len(values)-1]), 2),
		MovingAverage: roundAll(MovingAverage(values, window), 2),
		Slope:         stats.Round(fit.Slope, 4),
		Intercept:     stats.Round(fit.Intercept, 4),
		Confidence:    stats.Round(fit.RSquared(), 3),
		PValue:        stats.Round(fit.PValue, 4),
	}
}

// MovingAverage is the trailing mean over at most window values. Early
// points average whatever is available.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		out[i] = stats.Mean(values[trailing(i, window):i+1])
	}
	return out
}

// WeekOverWeek compares the mean final percent of two sets of calls.
func WeekOverWeek(current, previous *dataset.Dataset) types.WoWComparison {
	cur := stats.Round(stats.Mean(current.FinalPercents()), 2)
	prev := stats.Round(stats.Mean(previous.FinalPercents()), 2)
	change := stats.ChangePercent(prev, cur)

	dir := types.DirectionStable
	switch {
	case change > wowThreshold:
		dir = types.DirectionUp
	case change < -wowThreshold:
		dir = types.DirectionDown
	}
	return types.WoWComparison{
		CurrentWeekAvg:    cur,
		PreviousWeekAvg:   prev,
		ChangePercent:     stats.Round(change, 2),
		Direction:         dir,
		CurrentWeekCalls:  current.Len(),
		PreviousWeekCalls: previous.Len(),
	}
}

// TimeSeries buckets calls by period and measures each bucket. Points are in
// ascending period order.
func TimeSeries(ds *dataset.Dataset, metric Metric, g types.Granularity) []types.TimeSeriesPoint {
	buckets := period.Group(ds.Calls(), g)
	return lo.Map(buckets, func(b period.Bucket, _ int) types.TimeSeriesPoint {
		return types.TimeSeriesPoint{
			Period: b.Key,
			Label:  b.Label,
			Value:  stats.Round(measure(b.Calls, metric), 2),
			Count:  len(b.Calls),
		}
	})
}

func measure(calls []*model.Call, metric Metric) float64 {
	switch metric {
	case MetricCount:
		return float64(len(calls))
	case MetricDuration:
		seconds := lo.SumBy(calls, func(c *model.Call) int { return c.DurationSeconds })
		return float64(seconds) / 60
	default:
		return stats.Mean(lo.Map(calls, func(c *model.Call, _ int) float64 { return c.FinalPercent }))
	}
}

// DetectAnomalies returns the values whose z-score against the population
// mean and standard deviation exceeds threshold in absolute value. dates, if
// given, label the points by index.
func DetectAnomalies(values []float64, threshold float64, dates []string) []types.AnomalyPoint {
	out := make([]types.AnomalyPoint, 0)
	if len(values) < 3 {
		return out
	}
	mean := stats.Mean(values)
	std := stats.PopStdDev(values)
	if std == 0 {
		return out
	}
	for i, v := range values {
		z := (v - mean) / std
		if math.Abs(z) <= threshold {
			continue
		}
		p := types.AnomalyPoint{
			Index:     i,
			Value:     stats.Round(v, 2),
			Expected:  stats.Round(mean, 2),
			Deviation: stats.Round(z, 2),
		}
		if i < len(dates) {
			p.Date = dates[i]
		}
		out = append(out, p)
	}
	return out
}

// ScoreDistribution is a histogram of final percents over [0,100] with bins
// equal-width buckets. Values outside the scale are not counted.
func ScoreDistribution(ds *dataset.Dataset, bins int) []types.Bucket {
	if ds.Empty() || bins < 1 {
		return []types.Bucket{}
	}
	width := 100.0 / float64(bins)
	out := make([]types.Bucket, bins)
	for i := range out {
		start := math.Trunc(float64(i) * width)
		end := math.Trunc(float64(i+1) * width)
		out[i] = types.Bucket{Range: fmt.Sprintf("%g-%g", start, end), Min: start, Max: end}
	}
	for _, v := range ds.FinalPercents() {
		if v < 0 || v > 100 {
			continue
		}
		i := int(v / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// RollingStatistics runs a trailing window over the mean-score time series.
// The standard deviation is the sample one and is 0 while the window holds a
// single point.
func RollingStatistics(ds *dataset.Dataset, window int, g types.Granularity) []types.RollingPoint {
	series := TimeSeries(ds, MetricScore, g)
	if window < 1 {
		window = 1
	}
	values := lo.Map(series, func(p types.TimeSeriesPoint, _ int) float64 { return p.Value })
	out := make([]types.RollingPoint, len(series))
	for i, p := range series {
		win := values[trailing(i, window) : i+1]
		out[i] = types.RollingPoint{
			Period: p.Period,
			Value:  p.Value,
			Mean:   stats.Round(stats.Mean(win), 2),
			Std:    stats.Round(stats.StdDev(win), 2),
			Min:    stats.Round(floats.Min(win), 2),
			Max:    stats.Round(floats.Max(win), 2),
		}
	}
	return out
}

func trailing(i, window int) int {
	if start := i - window + 1; start > 0 {
		return start
	}
	return 0
}

func roundAll(xs []float64, places int) []float64 {
	return lo.Map(xs, func(v float64, _ int) float64 { return stats.Round(v, places) })
}
