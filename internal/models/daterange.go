/**
 * @description
 * Inclusive date ranges at day granularity.
 * Record timestamps are ISO-8601 strings; comparisons use the day part only,
 * so "2023-02-01T15:30:00Z" falls inside 2023-02-01..2023-02-01.
 */

package models

import (
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// DateRange is an inclusive [Start, End] interval at day granularity.
// An empty Start or End leaves that side unbounded.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Day truncates an ISO-8601 timestamp to its date part.
func Day(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 {
		return ts[:i]
	}
	return ts
}

// Bounded reports whether both ends of the range are set.
// Coverage of an unbounded range cannot be proven from stored data.
func (r DateRange) Bounded() bool {
	return r.Start != "" && r.End != ""
}

// IsZero reports whether the range is fully unbounded.
func (r DateRange) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// Contains reports whether the timestamp's day falls inside the range.
func (r DateRange) Contains(ts string) bool {
	d := Day(ts)
	if r.Start != "" && d < Day(r.Start) {
		return false
	}
	if r.End != "" && d > Day(r.End) {
		return false
	}
	return true
}

// Days enumerates every day in a bounded range, inclusive.
// Returns nil for unbounded or unparseable ranges.
func (r DateRange) Days() []string {
	if !r.Bounded() {
		return nil
	}
	start, err := time.Parse(dayLayout, Day(r.Start))
	if err != nil {
		return nil
	}
	end, err := time.Parse(dayLayout, Day(r.End))
	if err != nil {
		return nil
	}
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(dayLayout))
	}
	return days
}

// BusinessDays enumerates the weekdays in a bounded range, inclusive.
// Market data only exists for trading days; gap detection uses this.
func (r DateRange) BusinessDays() []string {
	var days []string
	for _, day := range r.Days() {
		d, err := time.Parse(dayLayout, day)
		if err != nil {
			continue
		}
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, day)
		}
	}
	return days
}

// NextDay returns the day after the given date, or "" if unparseable.
func NextDay(day string) string {
	d, err := time.Parse(dayLayout, Day(day))
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, 1).Format(dayLayout)
}

// PrevDay returns the day before the given date, or "" if unparseable.
func PrevDay(day string) string {
	d, err := time.Parse(dayLayout, Day(day))
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, -1).Format(dayLayout)
}
