/**
 * @description
 * Tier chain: an ordered pipeline of storage backends with graceful
 * degradation. Reads probe tiers top-down, accumulating records and coverage
 * until the requested range is fully covered or tiers run out. Writes go
 * through every available tier best-effort; per-tier failures are aggregated
 * and surfaced as non-fatal warnings.
 *
 * An unavailable tier is skipped once per request and never retried within
 * it. Every probe and backend operation is bounded by a short timeout so one
 * unreachable tier cannot stall the chain.
 *
 * @dependencies
 * - internal/logger
 * - internal/models
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/logger"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/models"
)

// DefaultOpTimeout bounds each availability probe and backend operation.
const DefaultOpTimeout = 3 * time.Second

// Chain is an ordered list of storage tiers.
type Chain struct {
	tiers     []Backend
	opTimeout time.Duration
}

// ReadResult carries everything a chain read produced: the merged records,
// the coverage they establish, and the tiers skipped as unavailable.
type ReadResult struct {
	Records  []models.Record
	Coverage Coverage
	Degraded []string
}

// NewChain builds a chain probing the given tiers in order.
func NewChain(tiers ...Backend) *Chain {
	return &Chain{tiers: tiers, opTimeout: DefaultOpTimeout}
}

// WithOpTimeout overrides the per-operation timeout. Used by tests to keep
// fault-injection runs fast.
func (c *Chain) WithOpTimeout(d time.Duration) *Chain {
	c.opTimeout = d
	return c
}

// Empty reports whether the chain has no tiers (cache mode "none").
func (c *Chain) Empty() bool { return len(c.tiers) == 0 }

// Tiers returns the chain's backends in probe order.
func (c *Chain) Tiers() []Backend { return c.tiers }

// Read probes tiers in order and accumulates results until the requested
// range is fully covered. Records from earlier (higher-priority) tiers win
// on natural-key collisions. Tier failures never propagate: an unavailable
// tier is skipped, a corrupt one is treated as a miss.
func (c *Chain) Read(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) ReadResult {
	var result ReadResult

	for _, tier := range c.tiers {
		if !c.probe(ctx, tier) {
			result.Degraded = append(result.Degraded, tier.Name())
			logger.Warn("cache: tier %s unavailable, skipping for %s/%s", tier.Name(), kind, ticker)
			continue
		}

		opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
		records, coverage, err := tier.Read(opCtx, ticker, kind, r)
		cancel()

		if err != nil {
			if errors.Is(err, ErrCorrupt) {
				logger.Error("cache: tier %s returned corrupt data for %s/%s: %v", tier.Name(), kind, ticker, err)
				continue
			}
			result.Degraded = append(result.Degraded, tier.Name())
			logger.Warn("cache: tier %s read failed for %s/%s: %v", tier.Name(), kind, ticker, err)
			continue
		}

		// Earlier tiers are probed first and take precedence on collisions.
		result.Records = models.MergeRecords(records, result.Records)
		result.Coverage = result.Coverage.Union(coverage)

		if result.Coverage.Full(r) {
			break
		}
	}

	return result
}

// Write sends the records through every available tier in order,
// best-effort. The returned error aggregates per-tier failures; callers
// treat it as a warning, not a failure of the write.
func (c *Chain) Write(ctx context.Context, ticker string, kind models.Kind, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	var errs []error
	for _, tier := range c.tiers {
		if !c.probe(ctx, tier) {
			errs = append(errs, unavailable(tier.Name(), "write", errProbe))
			continue
		}

		opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
		err := tier.Write(opCtx, ticker, kind, records)
		cancel()

		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Chain) probe(ctx context.Context, tier Backend) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return tier.Available(probeCtx)
}
