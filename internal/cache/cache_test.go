package cache

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/config"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/models"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/store"
)

// faultTier wraps the memory backend so tier failures can be injected.
type faultTier struct {
	*store.Memory
	name  string
	down  bool
	reads int32
}

func newFaultTier(name string) *faultTier {
	return &faultTier{Memory: store.NewMemory(), name: name}
}

func (f *faultTier) Name() string                       { return f.name }
func (f *faultTier) Available(ctx context.Context) bool { return !f.down }

func (f *faultTier) Read(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) ([]models.Record, store.Coverage, error) {
	atomic.AddInt32(&f.reads, 1)
	return f.Memory.Read(ctx, ticker, kind, r)
}

// fakeFetcher counts calls and serves from a canned bar set.
type fakeFetcher struct {
	bars  map[string]models.Price // day -> bar
	err   error
	calls int32
}

func (f *fakeFetcher) Fetch(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) ([]models.Record, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Record
	for day, bar := range f.bars {
		if r.Contains(day) {
			out = append(out, bar)
		}
	}
	return out, nil
}

func (f *fakeFetcher) callCount() int32 { return atomic.LoadInt32(&f.calls) }

func testBar(day string, close float64) models.Price {
	return models.Price{Ticker: "AAPL", Time: day, Open: close - 1, Close: close, High: close + 1, Low: close - 2, Volume: 1_000_000}
}

func memoryCache(fetcher Fetcher) *Cache {
	return New(config.ModeMemory, store.NewChain(store.NewMemory()), fetcher)
}

func TestSetThenGetSingleRecord(t *testing.T) {
	c := memoryCache(nil)
	ctx := context.Background()

	bar := models.Price{Ticker: "AAPL", Time: "2023-02-01", Open: 150.0, Close: 155.0, High: 156.0, Low: 149.0, Volume: 1_000_000}
	if err := c.SetPrices(ctx, "AAPL", []models.Price{bar}); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := c.GetPrices(ctx, "AAPL", "2023-02-01", "2023-02-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Close != 155.0 || got[0].Volume != 1_000_000 {
		t.Errorf("record mangled: %+v", got[0])
	}
}

func TestSetGetRoundTripAcrossTiers(t *testing.T) {
	// full-shaped chain: distributed, persistent, memory
	redis := newFaultTier("redis")
	sql := newFaultTier("sql")
	mem := store.NewMemory()
	c := New(config.ModeFull, store.NewChain(redis, sql, mem), nil)
	ctx := context.Background()

	bars := []models.Price{testBar("2023-02-03", 152), testBar("2023-02-01", 150), testBar("2023-02-02", 151)}
	if err := c.SetPrices(ctx, "AAPL", bars); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := c.GetPrices(ctx, "AAPL", "2023-02-01", "2023-02-03")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Time > got[i].Time {
			t.Fatal("result should be sorted by time ascending")
		}
	}

	// The same data must come back when only a lower tier can answer.
	redis.down = true
	fromLower, err := c.GetPrices(ctx, "AAPL", "2023-02-01", "2023-02-03")
	if err != nil {
		t.Fatalf("degraded get: %v", err)
	}
	if !reflect.DeepEqual(got, fromLower) {
		t.Error("result should not depend on which tier answers")
	}
}

func TestSetIdempotent(t *testing.T) {
	c := memoryCache(nil)
	ctx := context.Background()
	bars := []models.Price{testBar("2023-02-01", 150)}

	for i := 0; i < 2; i++ {
		if err := c.SetPrices(ctx, "AAPL", bars); err != nil {
			t.Fatalf("set %d: %v", i, err)
		}
	}
	got, err := c.GetPrices(ctx, "AAPL", "2023-02-01", "2023-02-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("double set stored %d records, want 1", len(got))
	}
}

func TestSetRejectsDuplicateKeysInBatch(t *testing.T) {
	c := memoryCache(nil)
	bars := []models.Price{testBar("2023-02-01", 150), testBar("2023-02-01", 151)}
	if err := c.SetPrices(context.Background(), "AAPL", bars); err == nil {
		t.Error("batch with duplicate natural keys should be rejected")
	}
}

func TestSetRejectsTickerMismatch(t *testing.T) {
	c := memoryCache(nil)
	bar := testBar("2023-02-01", 150)
	bar.Ticker = "MSFT"
	if err := c.SetPrices(context.Background(), "AAPL", []models.Price{bar}); err == nil {
		t.Error("record ticker differing from batch ticker should be rejected")
	}
}

func TestDegradedTierIsNeverRead(t *testing.T) {
	redis := newFaultTier("redis")
	redis.down = true
	sql := newFaultTier("sql")
	seed := models.AsRecords([]models.Price{testBar("2023-02-01", 150)})
	_ = sql.Memory.Write(context.Background(), "AAPL", models.KindPrices, seed)

	c := New(config.ModeFull, store.NewChain(redis, sql, store.NewMemory()), nil)
	got, err := c.GetPrices(context.Background(), "AAPL", "2023-02-01", "2023-02-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("read should succeed from surviving tiers, got %d records", len(got))
	}
	if atomic.LoadInt32(&redis.reads) != 0 {
		t.Error("no request may be routed to an unavailable tier")
	}
}

func TestPartialCoverageFetchesOnlyMissingRange(t *testing.T) {
	fetcher := &fakeFetcher{bars: map[string]models.Price{}}
	for _, day := range (models.DateRange{Start: "2023-02-01", End: "2023-02-10"}).Days() {
		fetcher.bars[day] = testBar(day, 200)
	}

	redis := newFaultTier("redis")
	mem := store.NewMemory()
	ctx := context.Background()

	// Memory already holds days 1-5.
	var held []models.Price
	for _, day := range (models.DateRange{Start: "2023-02-01", End: "2023-02-05"}).Days() {
		held = append(held, testBar(day, 150))
	}
	_ = mem.Write(ctx, "AAPL", models.KindPrices, models.AsRecords(held))

	c := New(config.ModeRedis, store.NewChain(redis, mem), fetcher)
	got, err := c.GetPrices(ctx, "AAPL", "2023-02-01", "2023-02-10")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if len(got) != 10 {
		t.Fatalf("merged result covers %d days, want 10", len(got))
	}
	seen := map[string]bool{}
	for _, bar := range got {
		if seen[bar.Time] {
			t.Fatalf("duplicate day %s in merged result", bar.Time)
		}
		seen[bar.Time] = true
	}

	// Cached days keep their cached values; only the gap was fetched.
	if got[0].Close != 150 {
		t.Errorf("cached day should survive the merge, got close=%v", got[0].Close)
	}
	if got[9].Close != 200 {
		t.Errorf("fetched day missing from merge, got close=%v", got[9].Close)
	}

	// Every tier now holds the full 10-day range.
	for _, tier := range []store.Backend{redis, mem} {
		records, coverage, err := tier.Read(ctx, "AAPL", models.KindPrices, models.DateRange{Start: "2023-02-01", End: "2023-02-10"})
		if err != nil {
			t.Fatalf("tier read: %v", err)
		}
		if len(records) != 10 {
			t.Errorf("tier %s holds %d records after back-fill, want 10", tier.Name(), len(records))
		}
		if !coverage.Full(models.DateRange{Start: "2023-02-01", End: "2023-02-10"}) {
			t.Errorf("tier %s coverage incomplete after back-fill", tier.Name())
		}
	}
}

func TestFreshFetchWinsOnCollision(t *testing.T) {
	// The fetcher returns day 5 again, revised, alongside the missing days.
	fetcher := &fakeFetcher{bars: map[string]models.Price{
		"2023-02-05": testBar("2023-02-05", 500),
		"2023-02-06": testBar("2023-02-06", 501),
	}}

	mem := store.NewMemory()
	ctx := context.Background()
	_ = mem.Write(ctx, "AAPL", models.KindPrices, models.AsRecords([]models.Price{testBar("2023-02-05", 150)}))

	c := New(config.ModeMemory, store.NewChain(mem), fetcher)
	got, err := c.GetPrices(ctx, "AAPL", "2023-02-05", "2023-02-06")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Close != 500 {
		t.Errorf("most recently fetched record should win, got close=%v", got[0].Close)
	}
}

func TestModeNone(t *testing.T) {
	fetcher := &fakeFetcher{bars: map[string]models.Price{"2023-02-01": testBar("2023-02-01", 150)}}
	c := New(config.ModeNone, store.NewChain(), fetcher)
	ctx := context.Background()

	// set is a no-op
	if err := c.SetPrices(ctx, "AAPL", []models.Price{testBar("2023-02-01", 999)}); err != nil {
		t.Fatalf("set in mode none should be a silent no-op: %v", err)
	}

	// every get delegates to the fetcher, even for previously "set" data
	for i := 1; i <= 2; i++ {
		got, err := c.GetPrices(ctx, "AAPL", "2023-02-01", "2023-02-01")
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if len(got) != 1 || got[0].Close != 150 {
			t.Fatalf("get %d should serve fetched data, got %+v", i, got)
		}
		if fetcher.callCount() != int32(i) {
			t.Errorf("get %d: fetcher called %d times", i, fetcher.callCount())
		}
	}
}

func TestConcurrentColdReads(t *testing.T) {
	fetcher := &fakeFetcher{bars: map[string]models.Price{}}
	for _, day := range (models.DateRange{Start: "2023-02-01", End: "2023-02-10"}).Days() {
		fetcher.bars[day] = testBar(day, 200)
	}
	c := memoryCache(fetcher)

	const n = 8
	results := make([][]models.Price, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetPrices(context.Background(), "AAPL", "2023-02-01", "2023-02-10")
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("get %d: %v", i, errs[i])
		}
		if !reflect.DeepEqual(results[i], results[0]) {
			t.Fatalf("get %d returned a different merged result", i)
		}
	}
	if calls := fetcher.callCount(); calls < 1 || calls > n {
		t.Errorf("fetcher called %d times, want between 1 and %d", calls, n)
	}
}

func TestTotalMissWithFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream 503")}
	c := memoryCache(fetcher)

	_, err := c.GetPrices(context.Background(), "AAPL", "2023-02-01", "2023-02-10")
	if err == nil {
		t.Fatal("total miss plus fetch failure must surface an error")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error should be a FetchError, got %T: %v", err, err)
	}
	if fe.Range.Start != "2023-02-01" || fe.Range.End != "2023-02-10" {
		t.Errorf("FetchError should describe the unreachable range, got %v", fe.Range)
	}
}

func TestPartialDataSurvivesFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream 503")}
	mem := store.NewMemory()
	ctx := context.Background()

	var held []models.Price
	for _, day := range (models.DateRange{Start: "2023-02-01", End: "2023-02-05"}).Days() {
		held = append(held, testBar(day, 150))
	}
	_ = mem.Write(ctx, "AAPL", models.KindPrices, models.AsRecords(held))

	c := New(config.ModeMemory, store.NewChain(mem), fetcher)
	got, err := c.GetPrices(ctx, "AAPL", "2023-02-01", "2023-02-10")
	if err != nil {
		t.Fatalf("known-good partial data should be returned, got error: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("got %d records, want the 5 cached days", len(got))
	}
}

func TestGetUnboundedRangeServesAnyHit(t *testing.T) {
	fetcher := &fakeFetcher{bars: map[string]models.Price{"2023-02-01": testBar("2023-02-01", 150)}}
	c := memoryCache(fetcher)
	ctx := context.Background()

	if err := c.SetPrices(ctx, "AAPL", []models.Price{testBar("2023-02-01", 150)}); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.GetPrices(ctx, "AAPL", "", "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if fetcher.callCount() != 0 {
		t.Error("an open-ended request with a cache hit should not go upstream")
	}
}

func TestInsiderTradesGetAssignedIDs(t *testing.T) {
	c := memoryCache(nil)
	ctx := context.Background()

	trades := []models.InsiderTrade{
		{Ticker: "AAPL", FilingDate: "2023-02-03", TransactionDate: "2023-02-01", InsiderName: "J. Smith", Shares: 100},
		{Ticker: "AAPL", FilingDate: "2023-02-03", TransactionDate: "2023-02-01", InsiderName: "A. Jones", Shares: -50},
	}
	if err := c.SetInsiderTrades(ctx, "AAPL", trades); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := c.GetInsiderTrades(ctx, "AAPL", "2023-02-01", "2023-02-03")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("distinct trades sharing a timestamp should coexist, got %d", len(got))
	}
	for _, trade := range got {
		if trade.TradeID == "" {
			t.Error("stored trade should carry an identifier")
		}
	}
}

func TestAllKindsRoundTrip(t *testing.T) {
	c := memoryCache(nil)
	ctx := context.Background()

	if err := c.SetFinancialMetrics(ctx, "AAPL", []models.FinancialMetric{
		{Ticker: "AAPL", ReportPeriod: "2023-12-31", Period: "ttm", PERatio: 28.5},
	}); err != nil {
		t.Fatalf("set metrics: %v", err)
	}
	metrics, err := c.GetFinancialMetrics(ctx, "AAPL", "2023-01-01", "2023-12-31")
	if err != nil || len(metrics) != 1 {
		t.Fatalf("metrics round trip failed: %v (%d)", err, len(metrics))
	}

	if err := c.SetLineItems(ctx, "AAPL", []models.LineItem{
		{Ticker: "AAPL", ReportPeriod: "2023-12-31", Period: "ttm", Name: "revenue", Value: 383e9},
	}); err != nil {
		t.Fatalf("set line items: %v", err)
	}
	items, err := c.GetLineItems(ctx, "AAPL", "2023-01-01", "2023-12-31")
	if err != nil || len(items) != 1 {
		t.Fatalf("line items round trip failed: %v (%d)", err, len(items))
	}

	if err := c.SetCompanyNews(ctx, "AAPL", []models.CompanyNews{
		{Ticker: "AAPL", Date: "2023-02-01T12:00:00Z", Title: "Earnings beat", URL: "https://example.com/a"},
	}); err != nil {
		t.Fatalf("set news: %v", err)
	}
	news, err := c.GetCompanyNews(ctx, "AAPL", "2023-02-01", "2023-02-01")
	if err != nil || len(news) != 1 {
		t.Fatalf("news round trip failed: %v (%d)", err, len(news))
	}
}

func TestConcurrentMixedReadWrite(t *testing.T) {
	c := memoryCache(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		day := fmt.Sprintf("2023-02-%02d", i+1)
		go func() {
			defer wg.Done()
			_ = c.SetPrices(ctx, "AAPL", []models.Price{testBar(day, 150)})
		}()
		go func() {
			defer wg.Done()
			_, _ = c.GetPrices(ctx, "AAPL", "2023-02-01", "2023-02-08")
		}()
	}
	wg.Wait()

	got, err := c.GetPrices(ctx, "AAPL", "2023-02-01", "2023-02-08")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 8 {
		t.Errorf("got %d records after concurrent writes, want 8", len(got))
	}
}
