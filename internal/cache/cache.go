/**
 * @description
 * Cache facade: the single entry point agents use to read and write
 * financial records. Resolves the configured cache mode into a tier chain,
 * owns merge-on-read semantics, and fills residual misses from the upstream
 * fetcher, back-filling every tier with what it fetched.
 *
 * Merge policy: freshly fetched records win over cached ones on natural-key
 * collision; results are deduplicated by natural key and sorted by event
 * time ascending.
 *
 * @dependencies
 * - internal/store
 * - internal/models
 * - golang.org/x/sync/singleflight
 */

package cache

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/config"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/logger"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/models"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/store"
)

// Fetcher supplies records on a cache miss. Implementations call the
// upstream financial data API; tests inject fakes.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) ([]models.Record, error)
}

// errNoFetcher is reported when a miss needs upstream data but the facade
// was assembled without a fetcher.
var errNoFetcher = errors.New("no fetcher configured")

// FetchError reports an upstream failure for a sub-range no tier could
// supply. It reaches callers only when the cache has nothing at all for the
// requested range.
type FetchError struct {
	Ticker string
	Kind   models.Kind
	Range  models.DateRange
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s for %s [%s..%s]: %v", e.Kind, e.Ticker, e.Range.Start, e.Range.End, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Cache is the hierarchical cache facade.
type Cache struct {
	mode    config.CacheMode
	chain   *store.Chain
	fetcher Fetcher
	sf      singleflight.Group

	// direct tier handles for management operations; nil when the mode
	// excludes the tier
	memory *store.Memory
	redis  *store.Redis
}

// New assembles a facade over an explicit tier chain. Tests use this to
// inject fault-injecting backends; production goes through Build.
func New(mode config.CacheMode, chain *store.Chain, fetcher Fetcher) *Cache {
	c := &Cache{mode: mode, chain: chain, fetcher: fetcher}
	for _, tier := range chain.Tiers() {
		switch t := tier.(type) {
		case *store.Memory:
			c.memory = t
		case *store.Redis:
			c.redis = t
		}
	}
	return c
}

// Mode returns the operating mode the facade was built with.
func (c *Cache) Mode() config.CacheMode { return c.mode }

// get runs the read path: tier chain first, then the fetcher for exactly
// the missing sub-ranges, then back-fill of every tier.
func (c *Cache) get(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) ([]models.Record, error) {
	if c.chain.Empty() {
		// Mode "none": straight to the fetcher.
		fetched, err := c.fetchRange(ctx, ticker, kind, r)
		if err != nil {
			return nil, err
		}
		return models.MergeRecords(nil, fetched), nil
	}

	result := c.chain.Read(ctx, ticker, kind, r)
	if result.Coverage.Full(r) {
		return result.Records, nil
	}

	var (
		fetched  []models.Record
		fetchErr error
	)
	for _, gap := range result.Coverage.Missing(r) {
		records, err := c.fetchRange(ctx, ticker, kind, gap)
		if err != nil {
			fetchErr = err
			continue
		}
		fetched = models.MergeRecords(fetched, records)
	}

	// Fetched records are authoritative and overwrite cached ones.
	merged := models.MergeRecords(result.Records, fetched)

	if len(fetched) > 0 {
		// Back-fill the whole merged sequence so every tier, including ones
		// that held nothing, ends up covering the full range.
		if werr := c.chain.Write(ctx, ticker, kind, merged); werr != nil {
			logger.Warn("cache: back-fill incomplete for %s/%s: %v", kind, ticker, werr)
		}
	}

	if fetchErr != nil {
		if len(merged) == 0 {
			return nil, fetchErr
		}
		// Known-good partial data beats an error; the gap stays uncached.
		logger.Warn("cache: returning partial %s for %s, upstream fetch failed: %v", kind, ticker, fetchErr)
	}
	return merged, nil
}

// fetchRange pulls one missing sub-range through the fetcher, deduplicating
// concurrent identical requests.
func (c *Cache) fetchRange(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) ([]models.Record, error) {
	if c.fetcher == nil {
		return nil, &FetchError{Ticker: ticker, Kind: kind, Range: r, Err: errNoFetcher}
	}
	key := fmt.Sprintf("%s:%s:%s:%s", kind, ticker, r.Start, r.End)
	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		records, err := c.fetcher.Fetch(ctx, ticker, kind, r)
		if err != nil {
			return nil, &FetchError{Ticker: ticker, Kind: kind, Range: r, Err: err}
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Record), nil
}

// set validates the batch and writes it through every tier. In mode "none"
// it is a no-op.
func (c *Cache) set(ctx context.Context, ticker string, kind models.Kind, records []models.Record) error {
	if len(records) == 0 || c.chain.Empty() {
		return nil
	}

	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if t := rec.RecordTicker(); t != "" && t != ticker {
			return fmt.Errorf("cache: record ticker %q does not match batch ticker %q", t, ticker)
		}
		key := rec.NaturalKey()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("cache: duplicate natural key %q in %s batch for %s", key, kind, ticker)
		}
		seen[key] = struct{}{}
	}

	if err := c.chain.Write(ctx, ticker, kind, records); err != nil {
		// Write-through is best-effort per tier; surviving tiers hold the data.
		logger.Warn("cache: write-through incomplete for %s/%s: %v", kind, ticker, err)
	}
	return nil
}

func getAs[T models.Record](ctx context.Context, c *Cache, ticker string, kind models.Kind, r models.DateRange) ([]T, error) {
	records, err := c.get(ctx, ticker, kind, r)
	if err != nil {
		return nil, err
	}
	return models.FromRecords[T](records), nil
}

// GetPrices returns OHLCV bars for the ticker between startDate and endDate
// (inclusive, ISO-8601 days; empty means unbounded), sorted ascending.
func (c *Cache) GetPrices(ctx context.Context, ticker, startDate, endDate string) ([]models.Price, error) {
	return getAs[models.Price](ctx, c, ticker, models.KindPrices, models.DateRange{Start: startDate, End: endDate})
}

// SetPrices writes OHLCV bars through every tier.
func (c *Cache) SetPrices(ctx context.Context, ticker string, prices []models.Price) error {
	return c.set(ctx, ticker, models.KindPrices, models.AsRecords(prices))
}

// GetFinancialMetrics returns periodic ratio sets for the ticker.
func (c *Cache) GetFinancialMetrics(ctx context.Context, ticker, startDate, endDate string) ([]models.FinancialMetric, error) {
	return getAs[models.FinancialMetric](ctx, c, ticker, models.KindFinancialMetrics, models.DateRange{Start: startDate, End: endDate})
}

// SetFinancialMetrics writes ratio sets through every tier.
func (c *Cache) SetFinancialMetrics(ctx context.Context, ticker string, metrics []models.FinancialMetric) error {
	return c.set(ctx, ticker, models.KindFinancialMetrics, models.AsRecords(metrics))
}

// GetLineItems returns statement line items for the ticker.
func (c *Cache) GetLineItems(ctx context.Context, ticker, startDate, endDate string) ([]models.LineItem, error) {
	return getAs[models.LineItem](ctx, c, ticker, models.KindLineItems, models.DateRange{Start: startDate, End: endDate})
}

// SetLineItems writes statement line items through every tier.
func (c *Cache) SetLineItems(ctx context.Context, ticker string, items []models.LineItem) error {
	return c.set(ctx, ticker, models.KindLineItems, models.AsRecords(items))
}

// GetInsiderTrades returns insider transactions for the ticker.
func (c *Cache) GetInsiderTrades(ctx context.Context, ticker, startDate, endDate string) ([]models.InsiderTrade, error) {
	return getAs[models.InsiderTrade](ctx, c, ticker, models.KindInsiderTrades, models.DateRange{Start: startDate, End: endDate})
}

// SetInsiderTrades writes insider transactions through every tier, assigning
// deterministic trade identifiers to records that lack one.
func (c *Cache) SetInsiderTrades(ctx context.Context, ticker string, trades []models.InsiderTrade) error {
	for i := range trades {
		trades[i].EnsureTradeID()
	}
	return c.set(ctx, ticker, models.KindInsiderTrades, models.AsRecords(trades))
}

// GetCompanyNews returns published articles for the ticker.
func (c *Cache) GetCompanyNews(ctx context.Context, ticker, startDate, endDate string) ([]models.CompanyNews, error) {
	return getAs[models.CompanyNews](ctx, c, ticker, models.KindCompanyNews, models.DateRange{Start: startDate, End: endDate})
}

// SetCompanyNews writes published articles through every tier.
func (c *Cache) SetCompanyNews(ctx context.Context, ticker string, news []models.CompanyNews) error {
	return c.set(ctx, ticker, models.KindCompanyNews, models.AsRecords(news))
}
