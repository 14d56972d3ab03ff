package types

// Period is the date span a report covers.
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RiskSignal is one item in the executive risk list.
type RiskSignal struct {
	Type           string `json:"type"`
	Severity       Level  `json:"severity"`
	Description    string `json:"description"`
	AffectedEntity string `json:"affected_entity,omitempty"`
	Recommendation string `json:"recommendation"`
}

// ExecutiveSummary is the headline of the executive report.
type ExecutiveSummary struct {
	KPI            KPISummary      `json:"kpi"`
	Trend          TrendResult     `json:"trend"`
	BestPerformer  *ManagerRanking `json:"best_performer,omitempty"`
	WorstPerformer *ManagerRanking `json:"worst_performer,omitempty"`
}

// ExecutiveReport is the company-wide view.
type ExecutiveReport struct {
	Period        Period            `json:"period"`
	Summary       ExecutiveSummary  `json:"summary"`
	DailyTrends   []TimeSeriesPoint `json:"daily_trends"`
	Anomalies     []AnomalyPoint    `json:"anomalies"`
	WorstCriteria []CriteriaStats   `json:"worst_criteria"`
	Ranking       []ManagerRanking  `json:"ranking"`
	Risks         []RiskSignal      `json:"risks"`
}

// QuickSummary is the compact dashboard widget.
type QuickSummary struct {
	TotalCalls   int       `json:"total_calls"`
	AverageScore float64   `json:"average_score"`
	Trend        Direction `json:"trend"`
	Managers     int       `json:"managers"`
}

// CoachingItem is one manager in the coaching queue.
type CoachingItem struct {
	Priority     int       `json:"priority"`
	Rank         int       `json:"rank"`
	ManagerID    int64     `json:"manager_id"`
	ManagerName  string    `json:"manager_name"`
	AverageScore float64   `json:"average_score"`
	Trend        Direction `json:"trend"`
	FocusAreas   []string  `json:"focus_areas"`
}

// TeamReport is the sales-lead view.
type TeamReport struct {
	Period        Period            `json:"period"`
	TeamAverage   float64           `json:"team_average"`
	TotalCalls    int               `json:"total_calls"`
	Leaderboard   []ManagerRanking  `json:"leaderboard"`
	Heatmap       HeatMapData       `json:"heatmap"`
	CoachingQueue []CoachingItem    `json:"coaching_queue"`
	DailyTrends   []TimeSeriesPoint `json:"daily_trends"`
}

// ManagerComparisonEntry is one manager in a side-by-side comparison.
type ManagerComparisonEntry struct {
	ManagerAggregation
	Trend         Direction `json:"trend"`
	ChangePercent float64   `json:"change_percent"`
}

// CriteriaAnalysis groups the criteria-level diagnostics.
type CriteriaAnalysis struct {
	WeakCriteria       []WeakCriterion       `json:"weak_criteria"`
	HighImpactCriteria []CriteriaImpact      `json:"high_impact_criteria"`
	CriteriaStats      []CriteriaAggregation `json:"criteria_stats"`
}

// WeeklyDigest is the weekly team summary.
type WeeklyDigest struct {
	HasData       bool             `json:"has_data"`
	Message       string           `json:"message,omitempty"`
	TotalCalls    int              `json:"total_calls"`
	TeamAverage   float64          `json:"team_average"`
	StarPerformer *ManagerRanking  `json:"star_performer,omitempty"`
	NeedsHelp     []ManagerRanking `json:"needs_help"`
	Top3          []ManagerRanking `json:"top_3"`
	Bottom3       []ManagerRanking `json:"bottom_3"`
}

// RecentCall is a short listing row.
type RecentCall struct {
	CallID          int64   `json:"call_id"`
	Date            string  `json:"date"`
	Score           float64 `json:"score"`
	DurationMinutes int     `json:"duration_minutes"`
	Summary         string  `json:"summary,omitempty"`
}

// ManagerReport is the personal view.
type ManagerReport struct {
	ManagerID   int64                   `json:"manager_id"`
	ManagerName string                  `json:"manager_name"`
	Period      Period                  `json:"period"`
	KPI         KPISummary              `json:"kpi"`
	Radar       RadarChartData          `json:"radar"`
	Trend       TrendResult             `json:"trend"`
	DailyTrends []TimeSeriesPoint       `json:"daily_trends"`
	GrowthAreas []ImprovementSuggestion `json:"growth_areas"`
	RecentCalls []RecentCall            `json:"recent_calls"`
}

// ProgressReport tracks a manager's improvement over time.
type ProgressReport struct {
	HasData        bool        `json:"has_data"`
	Message        string      `json:"message,omitempty"`
	TotalCalls     int         `json:"total_calls"`
	CurrentAverage float64     `json:"current_average"`
	OverallAverage float64     `json:"overall_average"`
	BestScore      float64     `json:"best_score"`
	WorstScore     float64     `json:"worst_score"`
	Improvement    float64     `json:"improvement"`
	Consistency    float64     `json:"consistency"`
	Trajectory     *Trajectory `json:"trajectory,omitempty"`
}

// TeamComparison places a manager relative to the rest of the team.
type TeamComparison struct {
	HasData        bool    `json:"has_data"`
	Message        string  `json:"message,omitempty"`
	ManagerAverage float64 `json:"manager_average"`
	TeamAverage    float64 `json:"team_average"`
	Difference     float64 `json:"difference"`
	Percentile     float64 `json:"percentile"`
	Rank           int     `json:"rank"`
	TotalManagers  int     `json:"total_managers"`
}
