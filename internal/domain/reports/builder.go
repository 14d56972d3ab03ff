// Package reports composes the analytics engines into role-specific reports.
// Builders are pure: the same calls and settings always produce the same
// report.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/period"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/prediction"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/trends"
)

const defaultForecastPeriods = 4

// Settings holds the thresholds the builders apply.
type Settings struct {
	WeakScoreThreshold     float64
	WeakMinCalls           int
	RiskWeakThreshold      float64
	CoachingScoreThreshold float64
	AnomalyThreshold       float64
	MovingAveragePeriod    int
	RecentCallsLimit       int
	ForestTrees            int
	ForestSeed             int64
	ForestMaxDepth         int
}

// DefaultSettings returns the stock thresholds.
func DefaultSettings() Settings {
	return Settings{
		WeakScoreThreshold:     70,
		WeakMinCalls:           10,
		RiskWeakThreshold:      60,
		CoachingScoreThreshold: 70,
		AnomalyThreshold:       trends.DefaultAnomalyThreshold,
		MovingAveragePeriod:    trends.DefaultPeriod,
		RecentCallsLimit:       10,
		ForestTrees:            prediction.DefaultTrees,
		ForestSeed:             prediction.DefaultSeed,
	}
}

// Builder produces reports from a call list.
type Builder struct {
	settings Settings
	now      func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock sets the clock used for open-ended report periods.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder creates a Builder.
func NewBuilder(settings Settings, opts ...Option) *Builder {
	b := &Builder{settings: settings, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Settings returns the builder's thresholds.
func (b *Builder) Settings() Settings { return b.settings }

// Build validates calls and dispatches req to the matching builder. The
// result is one of the report types in the types package.
func (b *Builder) Build(ctx context.Context, req model.ReportRequest, calls []model.Call) (any, error) {
	ds, err := dataset.New(calls)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := req.Query.Range

	switch req.Kind {
	case model.ReportExecutive:
		return b.Executive(ds, rng), nil
	case model.ReportTeam:
		return b.Team(ds, rng), nil
	case model.ReportManager:
		return b.Manager(ds, req.ManagerID, rng)
	case model.ReportQuickSummary:
		return b.QuickSummary(ds.Filter(rng)), nil
	case model.ReportCriteriaAnalysis:
		return b.CriteriaAnalysis(ds.Filter(rng)), nil
	case model.ReportWeeklyDigest:
		return b.WeeklyDigest(lastWeeks(ds.Filter(rng), req.Weeks)), nil
	case model.ReportManagerComparison:
		return b.ManagerComparison(ds.Filter(rng), req.ManagerIDs), nil
	case model.ReportProgress:
		if err := requireManager(ds, req.ManagerID); err != nil {
			return nil, err
		}
		return b.Progress(ds.Filter(rng), req.ManagerID), nil
	case model.ReportComparisonWithTeam:
		if err := requireManager(ds, req.ManagerID); err != nil {
			return nil, err
		}
		return b.ComparisonWithTeam(ds.Filter(rng), req.ManagerID), nil
	case model.ReportForecast:
		return b.forecast(ds.Filter(rng), req)
	case model.ReportFeatureImportance:
		out, err := prediction.FeatureImportance(ctx, ds.Filter(rng),
			prediction.WithTrees(b.settings.ForestTrees),
			prediction.WithSeed(b.settings.ForestSeed),
			prediction.WithMaxDepth(b.settings.ForestMaxDepth))
		if err != nil {
			return nil, err
		}
		return out, nil
	case model.ReportTrajectory:
		if err := requireManager(ds, req.ManagerID); err != nil {
			return nil, err
		}
		days := req.DaysAhead
		if days <= 0 {
			days = prediction.DefaultTrajectoryDays
		}
		return prediction.PredictManagerTrajectory(ds.Filter(rng), req.ManagerID, days), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, req.Kind)
	}
}

func (b *Builder) forecast(ds *dataset.Dataset, req model.ReportRequest) (any, error) {
	metric, err := trends.ParseMetric(req.Metric)
	if err != nil {
		return nil, err
	}
	g, err := period.Parse(req.Granularity)
	if err != nil {
		return nil, err
	}
	periods := req.Periods
	if periods <= 0 {
		periods = defaultForecastPeriods
	}
	series := trends.TimeSeries(ds, metric, g)
	return prediction.ForecastNextPeriods(series, periods, metric == trends.MetricScore), nil
}

func requireManager(ds *dataset.Dataset, id int64) error {
	if _, ok := ds.Manager(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownManager, id)
	}
	return nil
}

// lastWeeks keeps the calls of the final weeks*7 days up to the latest call.
func lastWeeks(ds *dataset.Dataset, weeks int) *dataset.Dataset {
	if weeks <= 0 {
		weeks = 1
	}
	_, last, ok := ds.DateSpan()
	if !ok {
		return ds
	}
	from := model.DateOf(last).AddDate(0, 0, -7*weeks+1)
	return ds.Filter(model.DateRange{From: from, To: last})
}
