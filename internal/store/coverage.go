/**
 * @description
 * Coverage describes which sub-intervals of a requested date range a tier
 * (or an accumulation of tiers) was able to supply. Intervals are inclusive
 * day ranges; adjacent and overlapping intervals are normalized into one.
 *
 * Coverage is derived from the day extent of stored rows. Days with no row
 * inside the extent (weekends, market holidays, sparse report periods) count
 * as covered: absence of data within a fetched span is information, not a
 * gap to re-fetch.
 */

package store

import (
	"github.com/LemonCANDY42/ai-hedge-fund/internal/models"
)

// Coverage is a normalized set of covered day intervals.
type Coverage struct {
	ranges []models.DateRange
}

// NewCoverage builds a coverage set from the given bounded intervals.
func NewCoverage(ranges ...models.DateRange) Coverage {
	var c Coverage
	for _, r := range ranges {
		c.Add(r)
	}
	return c
}

// CoverageOf derives the coverage a record sequence establishes: its day
// extent, or empty coverage for an empty sequence.
func CoverageOf(records []models.Record) Coverage {
	extent, ok := models.Extent(records)
	if !ok {
		return Coverage{}
	}
	return NewCoverage(extent)
}

// Empty reports whether nothing is covered.
func (c Coverage) Empty() bool { return len(c.ranges) == 0 }

// Ranges returns the normalized covered intervals, ascending.
func (c Coverage) Ranges() []models.DateRange {
	out := make([]models.DateRange, len(c.ranges))
	copy(out, c.ranges)
	return out
}

// Add inserts a bounded interval and re-normalizes. Unbounded or malformed
// intervals are ignored.
func (c *Coverage) Add(r models.DateRange) {
	r = models.DateRange{Start: models.Day(r.Start), End: models.Day(r.End)}
	if !r.Bounded() || r.Start > r.End {
		return
	}
	merged := append(c.ranges, r)
	c.ranges = normalize(merged)
}

// Union merges another coverage set into a copy of this one.
func (c Coverage) Union(other Coverage) Coverage {
	out := Coverage{ranges: append([]models.DateRange{}, c.ranges...)}
	for _, r := range other.ranges {
		out.Add(r)
	}
	return out
}

// Full reports whether the requested range is entirely covered. For an
// unbounded request full coverage cannot be proven from extents, so any
// non-empty coverage counts as full.
func (c Coverage) Full(requested models.DateRange) bool {
	if !requested.Bounded() {
		return !c.Empty()
	}
	return len(c.Missing(requested)) == 0
}

// Missing returns the sub-intervals of a bounded request not yet covered,
// ascending. An unbounded request yields the request itself when coverage is
// empty, nil otherwise.
func (c Coverage) Missing(requested models.DateRange) []models.DateRange {
	if !requested.Bounded() {
		if c.Empty() {
			return []models.DateRange{requested}
		}
		return nil
	}

	start := models.Day(requested.Start)
	end := models.Day(requested.End)
	var gaps []models.DateRange
	cursor := start

	for _, r := range c.ranges {
		if r.End < cursor {
			continue
		}
		if r.Start > end {
			break
		}
		if r.Start > cursor {
			gaps = append(gaps, models.DateRange{Start: cursor, End: models.PrevDay(r.Start)})
		}
		if r.End >= end {
			return gaps
		}
		cursor = models.NextDay(r.End)
	}

	if cursor <= end {
		gaps = append(gaps, models.DateRange{Start: cursor, End: end})
	}
	return gaps
}

// normalize sorts intervals and merges overlapping or adjacent ones.
func normalize(ranges []models.DateRange) []models.DateRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := append([]models.DateRange{}, ranges...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Start < sorted[j-1].Start; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	out := sorted[:1]
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Start <= models.NextDay(last.End) {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
