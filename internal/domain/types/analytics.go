// Package types contains the serializable results produced by the analytics engines.
package types

// Direction is a categorical trend classification.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// Granularity selects the calendar bucket used for period keys.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// Level grades impact, severity and risk.
type Level string

const (
	LevelHigh    Level = "high"
	LevelMedium  Level = "medium"
	LevelLow     Level = "low"
	LevelUnknown Level = "unknown"
)

// ManagerAggregation summarises one manager's calls.
type ManagerAggregation struct {
	ManagerID            int64   `json:"manager_id"`
	ManagerName          string  `json:"manager_name"`
	TotalCalls           int     `json:"total_calls"`
	AverageScore         float64 `json:"average_score"`
	TotalDurationMinutes int     `json:"total_duration_minutes"`
	FirstCallDate        string  `json:"first_call_date"`
	LastCallDate         string  `json:"last_call_date"`
}

// Bucket is one histogram cell keyed by its "a-b" range.
type Bucket struct {
	Range string  `json:"range"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// CriteriaAggregation summarises the numeric scores of one criterion.
type CriteriaAggregation struct {
	CriteriaID     int64    `json:"criteria_id"`
	CriteriaNumber int      `json:"criteria_number"`
	CriteriaName   string   `json:"criteria_name"`
	GroupName      string   `json:"group_name"`
	AverageScore   float64  `json:"average_score"`
	TotalCalls     int      `json:"total_calls"`
	Distribution   []Bucket `json:"distribution"`
}

// GroupAggregation summarises the per-call group averages of one group.
type GroupAggregation struct {
	GroupID        int64   `json:"group_id"`
	GroupName      string  `json:"group_name"`
	AverageScore   float64 `json:"average_score"`
	CriteriaCount  int     `json:"criteria_count"`
	CallsEvaluated int     `json:"calls_evaluated"`
}

// PeriodAggregation summarises the calls of one calendar bucket.
type PeriodAggregation struct {
	Period               string  `json:"period"`
	Label                string  `json:"label"`
	TotalCalls           int     `json:"total_calls"`
	AverageScore         float64 `json:"average_score"`
	TotalDurationMinutes int     `json:"total_duration_minutes"`
}

// PercentilesResult holds the standard distribution cut points.
type PercentilesResult struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ManagerGroupScores maps group name to mean group average for one manager.
type ManagerGroupScores struct {
	ManagerID   int64              `json:"manager_id"`
	ManagerName string             `json:"manager_name"`
	Groups      map[string]float64 `json:"groups"`
}

// KPISummary is the headline block of every report.
type KPISummary struct {
	AverageScore         float64 `json:"average_score"`
	TotalCalls           int     `json:"total_calls"`
	TotalDurationMinutes int     `json:"total_duration_minutes"`
	ManagersCount        int     `json:"managers_count"`
	PeriodStart          string  `json:"period_start"`
	PeriodEnd            string  `json:"period_end"`
}

// ManagerRanking is one leaderboard row.
type ManagerRanking struct {
	Rank         int       `json:"rank"`
	ManagerID    int64     `json:"manager_id"`
	ManagerName  string    `json:"manager_name"`
	AverageScore float64   `json:"average_score"`
	TotalCalls   int       `json:"total_calls"`
	Trend        Direction `json:"trend"`
}

// CriteriaStats describes the numeric scores of one criterion.
type CriteriaStats struct {
	CriteriaID     int64   `json:"criteria_id"`
	CriteriaNumber int     `json:"criteria_number"`
	CriteriaName   string  `json:"criteria_name"`
	GroupName      string  `json:"group_name"`
	Average        float64 `json:"average"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	StdDev         float64 `json:"std_dev"`
	Count          int     `json:"count"`
}

// PeriodCount is the number of calls in one bucket.
type PeriodCount struct {
	Period string `json:"period"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
}

// TrendResult is the outcome of a least-squares trend fit.
type TrendResult struct {
	Direction     Direction `json:"direction"`
	ChangePercent float64   `json:"change_percent"`
	MovingAverage []float64 `json:"moving_average"`
	Slope         float64   `json:"slope"`
	Intercept     float64   `json:"intercept"`
	Confidence    float64   `json:"confidence"`
	PValue        float64   `json:"p_value"`
}

// WoWComparison compares two consecutive weeks.
type WoWComparison struct {
	CurrentWeekAvg    float64   `json:"current_week_avg"`
	PreviousWeekAvg   float64   `json:"previous_week_avg"`
	ChangePercent     float64   `json:"change_percent"`
	Direction         Direction `json:"direction"`
	CurrentWeekCalls  int       `json:"current_week_calls"`
	PreviousWeekCalls int       `json:"previous_week_calls"`
}

// TimeSeriesPoint is one bucket of a metric series.
type TimeSeriesPoint struct {
	Period string  `json:"period"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Count  int     `json:"count"`
}

// AnomalyPoint is a value more than the threshold away from the series mean.
type AnomalyPoint struct {
	Index     int     `json:"index"`
	Value     float64 `json:"value"`
	Expected  float64 `json:"expected"`
	Deviation float64 `json:"deviation"`
	Date      string  `json:"date,omitempty"`
}

// RollingPoint carries trailing-window statistics for one bucket.
type RollingPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
	Mean   float64 `json:"rolling_mean"`
	Std    float64 `json:"rolling_std"`
	Min    float64 `json:"rolling_min"`
	Max    float64 `json:"rolling_max"`
}

// CorrelationMatrix is a square Pearson matrix with row/column labels.
type CorrelationMatrix struct {
	IDs    []int64     `json:"ids"`
	Labels []string    `json:"labels"`
	Values [][]float64 `json:"values"`
}

// CriteriaImpact is the correlation of one criterion with the final percent.
type CriteriaImpact struct {
	CriteriaID   int64   `json:"criteria_id"`
	CriteriaName string  `json:"criteria_name"`
	Correlation  float64 `json:"correlation"`
	Impact       Level   `json:"impact_category"`
	Observations int     `json:"observations"`
}

// WeakCriterion is a criterion whose mean sits below the threshold.
type WeakCriterion struct {
	CriteriaID            int64   `json:"criteria_id"`
	CriteriaName          string  `json:"criteria_name"`
	GroupName             string  `json:"group_name"`
	Average               float64 `json:"average"`
	Min                   float64 `json:"min"`
	Max                   float64 `json:"max"`
	TotalCalls            int     `json:"total_calls"`
	BelowThresholdCount   int     `json:"below_threshold_count"`
	BelowThresholdPercent float64 `json:"below_threshold_percent"`
}

// HeatMapCell is a (manager, criterion) mean. HasData is false when the
// manager was never scored on the criterion; Value is then 0.
type HeatMapCell struct {
	Value   float64 `json:"value"`
	Count   int     `json:"count"`
	HasData bool    `json:"has_data"`
}

// HeatMapAxis labels a heat map row or column.
type HeatMapAxis struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// HeatMapData is the manager x criteria score grid.
type HeatMapData struct {
	Managers []HeatMapAxis   `json:"managers"`
	Criteria []HeatMapAxis   `json:"criteria"`
	Cells    [][]HeatMapCell `json:"cells"`
}

// PredictionPoint is one extrapolated value with its 95% band.
type PredictionPoint struct {
	Period     string  `json:"period"`
	Predicted  float64 `json:"predicted"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// AtRiskCriterion is a low score on the manager's latest call.
type AtRiskCriterion struct {
	CriteriaID   int64   `json:"criteria_id"`
	CriteriaName string  `json:"criteria_name"`
	Score        float64 `json:"score"`
}

// ImprovementPrediction projects a manager's score if nothing changes.
type ImprovementPrediction struct {
	ManagerID      int64             `json:"manager_id"`
	CurrentAverage float64           `json:"current_average"`
	Predicted30    float64           `json:"predicted_30_days"`
	Predicted90    float64           `json:"predicted_90_days"`
	Slope          float64           `json:"slope"`
	RiskLevel      Level             `json:"risk_level"`
	CallsAnalyzed  int               `json:"calls_analyzed"`
	AtRiskCriteria []AtRiskCriterion `json:"at_risk_criteria"`
}

// ImprovementSuggestion is one ranked coaching focus area.
type ImprovementSuggestion struct {
	Rank         int     `json:"rank"`
	CriteriaID   int64   `json:"criteria_id"`
	CriteriaName string  `json:"criteria_name"`
	GroupName    string  `json:"group_name"`
	CurrentScore float64 `json:"current_score"`
	TeamAverage  float64 `json:"team_average"`
	Gap          float64 `json:"gap"`
	Impact       float64 `json:"impact"`
	Priority     float64 `json:"priority"`
	Reason       string  `json:"reason"`
}

// Trajectory forecasts a manager's weekly mean score.
type Trajectory struct {
	ManagerID      int64             `json:"manager_id"`
	HasEnoughData  bool              `json:"has_enough_data"`
	Message        string            `json:"message,omitempty"`
	CurrentAverage float64           `json:"current_average"`
	TrendSlope     float64           `json:"trend_slope"`
	WeeksAnalyzed  int               `json:"weeks_analyzed"`
	Predictions    []PredictionPoint `json:"predictions"`
}

// FeatureImportance is the normalised ensemble importance of one criterion.
type FeatureImportance struct {
	CriteriaID   int64   `json:"criteria_id"`
	CriteriaName string  `json:"criteria_name"`
	Importance   float64 `json:"importance"`
}

// RadarDimension compares a manager with the team on one criteria group.
type RadarDimension struct {
	GroupID        int64   `json:"group_id"`
	GroupName      string  `json:"group_name"`
	TeamValue      float64 `json:"team_value"`
	ManagerValue   float64 `json:"manager_value"`
	TeamHasData    bool    `json:"team_has_data"`
	ManagerHasData bool    `json:"manager_has_data"`
}

// RadarChartData is the per-group manager profile.
type RadarChartData struct {
	Dimensions []RadarDimension `json:"dimensions"`
}
