package store

import (
	"context"
	"errors"
	"testing"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/models"
)

// fakeTier wraps the memory backend with fault injection so degradation
// can be tested deterministically.
type fakeTier struct {
	*Memory
	name     string
	down     bool
	readErr  error
	writeErr error
	reads    int
	writes   int
}

func newFakeTier(name string) *fakeTier {
	return &fakeTier{Memory: NewMemory(), name: name}
}

func (f *fakeTier) Name() string                       { return f.name }
func (f *fakeTier) Available(ctx context.Context) bool { return !f.down }

func (f *fakeTier) Read(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) ([]models.Record, Coverage, error) {
	f.reads++
	if f.readErr != nil {
		return nil, Coverage{}, f.readErr
	}
	return f.Memory.Read(ctx, ticker, kind, r)
}

func (f *fakeTier) Write(ctx context.Context, ticker string, kind models.Kind, records []models.Record) error {
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.Memory.Write(ctx, ticker, kind, records)
}

func seedPrices(t *testing.T, tier *fakeTier, days ...string) {
	t.Helper()
	var bars []models.Price
	for _, day := range days {
		bars = append(bars, memBar(day, 150))
	}
	if err := tier.Memory.Write(context.Background(), "AAPL", models.KindPrices, models.AsRecords(bars)); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestChainSkipsUnavailableTier(t *testing.T) {
	down := newFakeTier("redis")
	down.down = true
	up := newFakeTier("sql")
	seedPrices(t, up, "2023-02-01", "2023-02-02")

	chain := NewChain(down, up)
	result := chain.Read(context.Background(), "AAPL", models.KindPrices, models.DateRange{Start: "2023-02-01", End: "2023-02-02"})

	if len(result.Records) != 2 {
		t.Fatalf("read %d records, want 2", len(result.Records))
	}
	if down.reads != 0 {
		t.Error("no read should be attempted against an unavailable tier")
	}
	if len(result.Degraded) != 1 || result.Degraded[0] != "redis" {
		t.Errorf("degraded = %v, want [redis]", result.Degraded)
	}
}

func TestChainReadFailureDegrades(t *testing.T) {
	failing := newFakeTier("redis")
	failing.readErr = unavailable("redis", "read", errors.New("connection reset"))
	up := newFakeTier("memory")
	seedPrices(t, up, "2023-02-01")

	chain := NewChain(failing, up)
	result := chain.Read(context.Background(), "AAPL", models.KindPrices, models.DateRange{Start: "2023-02-01", End: "2023-02-01"})

	if len(result.Records) != 1 {
		t.Fatalf("read %d records, want 1", len(result.Records))
	}
	if len(result.Degraded) != 1 || result.Degraded[0] != "redis" {
		t.Errorf("degraded = %v, want [redis]", result.Degraded)
	}
}

func TestChainCorruptTierIsAMiss(t *testing.T) {
	bad := newFakeTier("redis")
	bad.readErr = corrupt("redis", "read", errors.New("bad payload"))
	good := newFakeTier("sql")
	seedPrices(t, good, "2023-02-01")

	chain := NewChain(bad, good)
	result := chain.Read(context.Background(), "AAPL", models.KindPrices, models.DateRange{Start: "2023-02-01", End: "2023-02-01"})

	if len(result.Records) != 1 {
		t.Fatalf("corrupt tier should fall through, got %d records", len(result.Records))
	}
	if len(result.Degraded) != 0 {
		t.Errorf("corrupt is a miss, not degradation: %v", result.Degraded)
	}
}

func TestChainStopsAtFullCoverage(t *testing.T) {
	first := newFakeTier("redis")
	seedPrices(t, first, "2023-02-01", "2023-02-02", "2023-02-03")
	second := newFakeTier("sql")

	chain := NewChain(first, second)
	result := chain.Read(context.Background(), "AAPL", models.KindPrices, models.DateRange{Start: "2023-02-01", End: "2023-02-03"})

	if !result.Coverage.Full(models.DateRange{Start: "2023-02-01", End: "2023-02-03"}) {
		t.Fatal("coverage should be full")
	}
	if second.reads != 0 {
		t.Error("lower tiers should not be probed after full coverage")
	}
}

func TestChainAccumulatesPartialCoverage(t *testing.T) {
	first := newFakeTier("redis")
	seedPrices(t, first, "2023-02-01", "2023-02-02")
	second := newFakeTier("sql")
	seedPrices(t, second, "2023-02-03", "2023-02-04")

	requested := models.DateRange{Start: "2023-02-01", End: "2023-02-04"}
	chain := NewChain(first, second)
	result := chain.Read(context.Background(), "AAPL", models.KindPrices, requested)

	if len(result.Records) != 4 {
		t.Fatalf("accumulated %d records, want 4", len(result.Records))
	}
	if !result.Coverage.Full(requested) {
		t.Errorf("coverage %v should be full for %v", result.Coverage.Ranges(), requested)
	}
}

func TestChainHigherTierWinsOnCollision(t *testing.T) {
	first := newFakeTier("redis")
	_ = first.Memory.Write(context.Background(), "AAPL", models.KindPrices,
		models.AsRecords([]models.Price{memBar("2023-02-01", 100)}))
	second := newFakeTier("sql")
	_ = second.Memory.Write(context.Background(), "AAPL", models.KindPrices,
		models.AsRecords([]models.Price{memBar("2023-02-01", 200), memBar("2023-02-02", 201)}))

	chain := NewChain(first, second)
	result := chain.Read(context.Background(), "AAPL", models.KindPrices, models.DateRange{Start: "2023-02-01", End: "2023-02-02"})

	prices := models.FromRecords[models.Price](result.Records)
	if len(prices) != 2 {
		t.Fatalf("got %d records, want 2", len(prices))
	}
	if prices[0].Close != 100 {
		t.Errorf("higher-priority tier should win on collision, got close=%v", prices[0].Close)
	}
}

func TestChainWriteThroughBestEffort(t *testing.T) {
	bad := newFakeTier("redis")
	bad.writeErr = unavailable("redis", "write", errors.New("connection refused"))
	good := newFakeTier("sql")

	chain := NewChain(bad, good)
	err := chain.Write(context.Background(), "AAPL", models.KindPrices,
		models.AsRecords([]models.Price{memBar("2023-02-01", 150)}))

	if err == nil {
		t.Fatal("per-tier failures should be aggregated")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("aggregate should match ErrUnavailable, got %v", err)
	}
	if good.Memory.Len(models.KindPrices, "AAPL") != 1 {
		t.Error("a failure on one tier must not block writes to the next")
	}
}

func TestChainWriteSkipsUnavailableTier(t *testing.T) {
	down := newFakeTier("redis")
	down.down = true
	up := newFakeTier("memory")

	chain := NewChain(down, up)
	err := chain.Write(context.Background(), "AAPL", models.KindPrices,
		models.AsRecords([]models.Price{memBar("2023-02-01", 150)}))

	if err == nil {
		t.Fatal("skipped tier should surface in the aggregate warning")
	}
	if down.writes != 0 {
		t.Error("no write should be attempted against an unavailable tier")
	}
	if up.Memory.Len(models.KindPrices, "AAPL") != 1 {
		t.Error("available tier should still receive the write")
	}
}

func TestEmptyChain(t *testing.T) {
	chain := NewChain()
	if !chain.Empty() {
		t.Fatal("chain without tiers should report empty")
	}

	result := chain.Read(context.Background(), "AAPL", models.KindPrices, models.DateRange{Start: "2023-02-01", End: "2023-02-02"})
	if len(result.Records) != 0 {
		t.Error("empty chain should read nothing")
	}
	if err := chain.Write(context.Background(), "AAPL", models.KindPrices,
		models.AsRecords([]models.Price{memBar("2023-02-01", 150)})); err != nil {
		t.Errorf("empty chain write should be a no-op, got %v", err)
	}
}
