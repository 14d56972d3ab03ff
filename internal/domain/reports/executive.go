package reports

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/correlation"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/kpi"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/stats"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/trends"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
)

const (
	worstCriteriaCount = 5
	maxRisks           = 10
	maxCriteriaRisks   = 3
	declineRisk        = 5.0
	declineHighRisk    = 10.0
	criteriaHighRisk   = 50.0
	managerRisk        = 60.0
	managerHighRisk    = 50.0
	decliningHighRisk  = 65.0
	quickTrendMinCalls = 10
	quickTrendDelta    = 3.0
)

var severityOrder = map[types.Level]int{types.LevelHigh: 0, types.LevelMedium: 1, types.LevelLow: 2}

// Executive builds the company-wide report for calls inside rng.
func (b *Builder) Executive(ds *dataset.Dataset, rng model.DateRange) types.ExecutiveReport {
	f := ds.Filter(rng)
	summary := kpi.Summary(ds, rng, b.now())
	daily := trends.TimeSeries(f, trends.MetricScore, types.Day)
	values := seriesValues(daily)
	ranking := kpi.ManagerRanking(f, model.DateRange{})

	worst := kpi.CriteriaScoresSorted(f)
	if len(worst) > worstCriteriaCount {
		worst = worst[:worstCriteriaCount]
	}

	es := types.ExecutiveSummary{
		KPI:   summary,
		Trend: trends.Trend(values, b.settings.MovingAveragePeriod),
	}
	if len(ranking) > 0 {
		best, last := ranking[0], ranking[len(ranking)-1]
		es.BestPerformer, es.WorstPerformer = &best, &last
	}

	return types.ExecutiveReport{
		Period:        types.Period{From: summary.PeriodStart, To: summary.PeriodEnd},
		Summary:       es,
		DailyTrends:   daily,
		Anomalies:     trends.DetectAnomalies(values, b.settings.AnomalyThreshold, seriesKeys(daily)),
		WorstCriteria: worst,
		Ranking:       ranking,
		Risks:         b.risks(f, ranking),
	}
}

func (b *Builder) risks(ds *dataset.Dataset, ranking []types.ManagerRanking) []types.RiskSignal {
	out := make([]types.RiskSignal, 0)

	weekly := trends.TimeSeries(ds, trends.MetricScore, types.Week)
	if len(weekly) >= 2 {
		tr := trends.Trend(seriesValues(weekly), b.settings.MovingAveragePeriod)
		if change := math.Abs(tr.ChangePercent); tr.Direction == types.DirectionDown && change > declineRisk {
			out = append(out, types.RiskSignal{
				Type:           "score_decline",
				Severity:       pick(change > declineHighRisk),
				Description:    fmt.Sprintf("Overall score fell by %.1f%% over the period", change),
				AffectedEntity: "Whole team",
				Recommendation: "Review the causes of the decline and agree a correction plan",
			})
		}
	}

	weak := correlation.WeakCriteria(ds, b.settings.RiskWeakThreshold, b.settings.WeakMinCalls)
	for _, w := range lo.Slice(weak, 0, maxCriteriaRisks) {
		out = append(out, types.RiskSignal{
			Type:           "criteria_issue",
			Severity:       pick(w.Average < criteriaHighRisk),
			Description:    fmt.Sprintf("Criterion '%s' has a low average score: %.1f%%", w.CriteriaName, w.Average),
			AffectedEntity: w.CriteriaName,
			Recommendation: "Run additional training on this criterion",
		})
	}

	for _, m := range ranking {
		down := m.Trend == types.DirectionDown
		if m.AverageScore >= managerRisk && !down {
			continue
		}
		desc := fmt.Sprintf("Manager '%s' shows low results (%.1f%%)", m.ManagerName, m.AverageScore)
		if down {
			desc += ", trend declining"
		}
		out = append(out, types.RiskSignal{
			Type:           "manager_risk",
			Severity:       pick(m.AverageScore < managerHighRisk || (down && m.AverageScore < decliningHighRisk)),
			Description:    desc,
			AffectedEntity: m.ManagerName,
			Recommendation: "Assign personal coaching and track progress",
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return severityOrder[out[i].Severity] < severityOrder[out[j].Severity] })
	return lo.Slice(out, 0, maxRisks)
}

func pick(high bool) types.Level {
	if high {
		return types.LevelHigh
	}
	return types.LevelMedium
}

// QuickSummary is the compact dashboard widget. The trend compares the two
// halves of the calls in input order and needs at least ten calls.
func (b *Builder) QuickSummary(ds *dataset.Dataset) types.QuickSummary {
	scores := ds.FinalPercents()
	trend := types.DirectionStable
	if len(scores) >= quickTrendMinCalls {
		mid := len(scores) / 2
		switch diff := stats.Mean(scores[mid:]) - stats.Mean(scores[:mid]); {
		case diff > quickTrendDelta:
			trend = types.DirectionUp
		case diff < -quickTrendDelta:
			trend = types.DirectionDown
		}
	}
	return types.QuickSummary{
		TotalCalls:   ds.Len(),
		AverageScore: stats.Round(stats.Mean(scores), 1),
		Trend:        trend,
		Managers:     len(ds.ManagerIDs()),
	}
}

func seriesValues(s []types.TimeSeriesPoint) []float64 {
	return lo.Map(s, func(p types.TimeSeriesPoint, _ int) float64 { return p.Value })
}

func seriesKeys(s []types.TimeSeriesPoint) []string {
	return lo.Map(s, func(p types.TimeSeriesPoint, _ int) string { return p.Period })
}
