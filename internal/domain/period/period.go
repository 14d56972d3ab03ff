// Package period maps call dates onto calendar buckets and their labels.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Parse validates a granularity name. Empty means day.
func Parse(s string) (types.Granularity, error) {
	switch g := types.Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return types.Day, nil
	case types.Day, types.Week, types.Month:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// Key returns the sortable bucket key of t: 2025-01-06, 2025-W02 or 2025-01.
// Weeks use the ISO year so late-December dates may belong to next year.
func Key(t time.Time, g types.Granularity) string {
	switch g {
	case types.Week:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case types.Month:
		return t.Format(monthLayout)
	default:
		return t.Format(dayLayout)
	}
}

// Label returns the human label of t's bucket: "Mon 06 Jan", "Week 2", "January 2025".
func Label(t time.Time, g types.Granularity) string {
	switch g {
	case types.Week:
		_, w := t.ISOWeek()
		return "Week " + strconv.Itoa(w)
	case types.Month:
		return t.Format("January 2006")
	default:
		return t.Format("Mon 02 Jan")
	}
}

// Date formats t as YYYY-MM-DD.
func Date(t time.Time) string { return t.Format(dayLayout) }

// Detect infers the granularity of a bucket key.
func Detect(key string) (types.Granularity, bool) {
	if _, _, ok := parseWeek(key); ok {
		return types.Week, true
	}
	if _, err := time.Parse(monthLayout, key); err == nil && len(key) == len(monthLayout) {
		return types.Month, true
	}
	if _, err := time.Parse(dayLayout, key); err == nil {
		return types.Day, true
	}
	return "", false
}

// Next returns the key i buckets after key. Unknown keys become "Period +i".
func Next(key string, i int) string {
	g, ok := Detect(key)
	if !ok {
		return fmt.Sprintf("Period +%d", i)
	}
	switch g {
	case types.Week:
		y, w, _ := parseWeek(key)
		return Key(isoWeekStart(y, w).AddDate(0, 0, 7*i), types.Week)
	case types.Month:
		t, _ := time.Parse(monthLayout, key)
		return Key(t.AddDate(0, i, 0), types.Month)
	default:
		t, _ := time.Parse(dayLayout, key)
		return Key(t.AddDate(0, 0, i), types.Day)
	}
}

func parseWeek(key string) (year, week int, ok bool) {
	y, w, found := strings.Cut(key, "-W")
	if !found || len(y) != 4 || len(w) != 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return 0, 0, false
	}
	week, err = strconv.Atoi(w)
	if err != nil || week < 1 || week > 53 {
		return 0, 0, false
	}
	return year, week, true
}

// isoWeekStart returns the Monday of ISO week w of year y.
func isoWeekStart(y, w int) time.Time {
	// January 4th is always in week 1.
	jan4 := time.Date(y, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+7*(w-1))
}

// WeekEnding returns the Sunday that closes the Monday-Sunday week of t.
func WeekEnding(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, (7-int(d.Weekday()))%7)
}
