/**
 * @description
 * Sequence helpers shared by the storage tiers and the cache facade:
 * range filtering, natural-key merge and time-ascending ordering.
 *
 * Merge policy: when two sources hold a record with the same natural key but
 * different field values, the overlay (most recently fetched) wins.
 */

package models

import "sort"

// SortRecords orders a sequence by event time ascending, natural key as the
// tie-break so ordering is stable across runs.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, tj := records[i].EventTime(), records[j].EventTime()
		if ti != tj {
			return ti < tj
		}
		return records[i].NaturalKey() < records[j].NaturalKey()
	})
}

// FilterRange returns the records whose event time falls inside the range.
func FilterRange(records []Record, r DateRange) []Record {
	if r.IsZero() {
		return records
	}
	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.EventTime()) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// MergeRecords combines two sequences, deduplicating by natural key.
// On collision the overlay record replaces the base record. The result is
// sorted by event time ascending.
func MergeRecords(base, overlay []Record) []Record {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	merged := make(map[string]Record, len(base)+len(overlay))
	for _, rec := range base {
		merged[rec.NaturalKey()] = rec
	}
	for _, rec := range overlay {
		merged[rec.NaturalKey()] = rec
	}
	out := make([]Record, 0, len(merged))
	for _, rec := range merged {
		out = append(out, rec)
	}
	SortRecords(out)
	return out
}

// Extent returns the [min, max] day span of a sequence's event times.
// ok is false for an empty sequence.
func Extent(records []Record) (r DateRange, ok bool) {
	for _, rec := range records {
		d := Day(rec.EventTime())
		if d == "" {
			continue
		}
		if !ok {
			r = DateRange{Start: d, End: d}
			ok = true
			continue
		}
		if d < r.Start {
			r.Start = d
		}
		if d > r.End {
			r.End = d
		}
	}
	return r, ok
}
