/**
 * @description
 * Distributed storage tier backed by Redis. Each (kind, ticker) sequence is
 * one JSON blob under its cache key, written with a TTL so stale market data
 * ages out. A single failed attempt marks the tier unavailable for the
 * current request; the chain does not retry it.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9
 * - internal/models
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/models"
)

// Redis is the distributed tier.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an existing client. ttl applies to every written entry.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (s *Redis) Name() string { return "redis" }

// Available pings the server; the context bounds the probe.
func (s *Redis) Available(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}

func (s *Redis) Read(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) ([]models.Record, Coverage, error) {
	key := models.CacheKey(kind, ticker)

	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, Coverage{}, nil
	}
	if err != nil {
		return nil, Coverage{}, unavailable(s.Name(), "read", err)
	}

	stored, err := models.UnmarshalRecords(kind, payload)
	if err != nil {
		return nil, Coverage{}, corrupt(s.Name(), "read", err)
	}

	found := models.FilterRange(stored, r)
	return found, CoverageOf(found), nil
}

// Write merges the records into the stored sequence and rewrites the blob,
// refreshing its TTL. A corrupt stored blob is replaced outright.
func (s *Redis) Write(ctx context.Context, ticker string, kind models.Kind, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}
	key := models.CacheKey(kind, ticker)

	var stored []models.Record
	payload, err := s.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		// first write for this key
	case err != nil:
		return unavailable(s.Name(), "write", err)
	default:
		if decoded, decErr := models.UnmarshalRecords(kind, payload); decErr == nil {
			stored = decoded
		}
	}

	merged := models.MergeRecords(stored, records)
	encoded, err := models.MarshalRecords(merged)
	if err != nil {
		return corrupt(s.Name(), "write", err)
	}

	if err := s.client.Set(ctx, key, encoded, s.ttl).Err(); err != nil {
		return unavailable(s.Name(), "write", err)
	}
	return nil
}

// Drop deletes the stored blob for one (kind, ticker) key.
func (s *Redis) Drop(ctx context.Context, kind models.Kind, ticker string) error {
	if err := s.client.Del(ctx, models.CacheKey(kind, ticker)).Err(); err != nil {
		return unavailable(s.Name(), "write", err)
	}
	return nil
}
