package model

import "time"

// DateRange is an inclusive calendar-date range. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls in the range, comparing dates only.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t)
	if !r.From.IsZero() && d.Before(DateOf(r.From)) {
		return false
	}
	if !r.To.IsZero() && d.After(DateOf(r.To)) {
		return false
	}
	return true
}

// IsOpen reports whether neither bound is set.
func (r DateRange) IsOpen() bool { return r.From.IsZero() && r.To.IsZero() }

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CallQuery selects the calls a report is built from.
type CallQuery struct {
	ProjectID int64 // 0 = all projects
	ManagerID int64 // 0 = all managers
	Range     DateRange
}

// ReportKind names a report builder.
type ReportKind string

const (
	ReportExecutive          ReportKind = "executive"
	ReportTeam               ReportKind = "team"
	ReportManager            ReportKind = "manager"
	ReportQuickSummary       ReportKind = "quick_summary"
	ReportCriteriaAnalysis   ReportKind = "criteria_analysis"
	ReportWeeklyDigest       ReportKind = "weekly_digest"
	ReportManagerComparison  ReportKind = "manager_comparison"
	ReportProgress           ReportKind = "progress"
	ReportComparisonWithTeam ReportKind = "comparison_with_team"
	ReportForecast           ReportKind = "forecast"
	ReportFeatureImportance  ReportKind = "feature_importance"
	ReportTrajectory         ReportKind = "trajectory"
)

// ReportRequest is a unit of work for the report workers.
type ReportRequest struct {
	Kind      ReportKind
	Query     CallQuery
	ManagerID int64 // subject of manager-scoped reports
	// ManagerIDs lists the managers to compare.
	ManagerIDs  []int64
	Granularity string
	Metric      string
	Periods     int
	DaysAhead   int
	Weeks       int
}
