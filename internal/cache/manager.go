/**
 * @description
 * Manager: operational helpers layered on the facade. Refreshes a ticker's
 * data through the fetcher, detects and fills gaps in daily price history,
 * reports per-kind cache statistics, and clears a ticker's volatile tiers
 * without touching the persistent store.
 *
 * @dependencies
 * - internal/logger
 * - internal/models
 */

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/logger"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/models"
)

// Manager wraps a facade with maintenance operations.
type Manager struct {
	cache *Cache
}

// NewManager creates a Manager over the given facade.
func NewManager(c *Cache) *Manager {
	return &Manager{cache: c}
}

// KindStats summarizes what the cache holds for one record kind.
type KindStats struct {
	Count    int    `json:"count"`
	Earliest string `json:"earliest,omitempty"`
	Latest   string `json:"latest,omitempty"`
}

// RefreshTicker re-pulls every record kind for the ticker over the given
// window and rewrites all tiers. An empty end defaults to today, an empty
// start to seven days before the end. Returns the per-kind outcome.
func (m *Manager) RefreshTicker(ctx context.Context, ticker, startDate, endDate string) map[models.Kind]error {
	if endDate == "" {
		endDate = time.Now().UTC().Format("2006-01-02")
	}
	if startDate == "" {
		if end, err := time.Parse("2006-01-02", endDate); err == nil {
			startDate = end.AddDate(0, 0, -7).Format("2006-01-02")
		}
	}
	r := models.DateRange{Start: startDate, End: endDate}

	results := make(map[models.Kind]error, len(models.Kinds))
	for _, kind := range models.Kinds {
		results[kind] = m.refreshKind(ctx, ticker, kind, r)
	}
	return results
}

func (m *Manager) refreshKind(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) error {
	if m.cache.fetcher == nil {
		return errNoFetcher
	}
	records, err := m.cache.fetcher.Fetch(ctx, ticker, kind, r)
	if err != nil {
		return &FetchError{Ticker: ticker, Kind: kind, Range: r, Err: err}
	}
	if len(records) == 0 || m.cache.chain.Empty() {
		return nil
	}
	if werr := m.cache.chain.Write(ctx, ticker, kind, records); werr != nil {
		logger.Warn("cache: refresh write incomplete for %s/%s: %v", kind, ticker, werr)
	}
	return nil
}

// FillMissingPrices checks a ticker's daily price history for missing
// business days inside the range, fetches the range again when gaps exist,
// and returns the complete history plus the days that were filled.
func (m *Manager) FillMissingPrices(ctx context.Context, ticker, startDate, endDate string) ([]models.Price, []string, error) {
	r := models.DateRange{Start: startDate, End: endDate}
	if !r.Bounded() {
		return nil, nil, errors.New("cache: gap detection needs a bounded range")
	}

	existing, err := m.cache.GetPrices(ctx, ticker, startDate, endDate)
	if err != nil {
		return nil, nil, err
	}

	have := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		have[models.Day(p.Time)] = struct{}{}
	}

	var missing []string
	for _, day := range r.BusinessDays() {
		if _, ok := have[day]; !ok {
			missing = append(missing, day)
		}
	}
	if len(missing) == 0 {
		return existing, nil, nil
	}

	// Re-fetch the whole window; the upstream API has no per-day endpoint
	// and the merge dedups anyway.
	fetched, err := m.cache.fetchRange(ctx, ticker, models.KindPrices, r)
	if err != nil {
		if len(existing) > 0 {
			return existing, missing, nil
		}
		return nil, missing, err
	}

	merged := models.MergeRecords(models.AsRecords(existing), fetched)
	if werr := m.cache.chain.Write(ctx, ticker, models.KindPrices, merged); werr != nil {
		logger.Warn("cache: gap-fill write incomplete for %s: %v", ticker, werr)
	}
	return models.FromRecords[models.Price](merged), missing, nil
}

// Stats reports, per record kind, how many records the cache can currently
// serve for the ticker and the date extent they span.
func (m *Manager) Stats(ctx context.Context, ticker string) map[models.Kind]KindStats {
	stats := make(map[models.Kind]KindStats, len(models.Kinds))
	for _, kind := range models.Kinds {
		result := m.cache.chain.Read(ctx, ticker, kind, models.DateRange{})
		s := KindStats{Count: len(result.Records)}
		if extent, ok := models.Extent(result.Records); ok {
			s.Earliest = extent.Start
			s.Latest = extent.End
		}
		stats[kind] = s
	}
	return stats
}

// ClearTicker drops the ticker's entries from the volatile tiers (memory
// and Redis). Rows in the persistent store are kept.
func (m *Manager) ClearTicker(ctx context.Context, ticker string) error {
	var errs []error
	for _, kind := range models.Kinds {
		if m.cache.memory != nil {
			m.cache.memory.Drop(kind, ticker)
		}
		if m.cache.redis != nil {
			if err := m.cache.redis.Drop(ctx, kind, ticker); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
