/**
 * @description
 * In-process storage tier. Holds one sorted record sequence per
 * (kind, ticker) key under a read-write mutex, so concurrent readers and
 * writers of the same key are linearizable. Data is lost on restart and the
 * tier is always available.
 *
 * @dependencies
 * - internal/models
 */

package store

import (
	"context"
	"sync"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/models"
)

// Memory is the in-process tier.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]models.Record // CacheKey(kind, ticker) -> sorted sequence
}

// NewMemory creates an empty in-process tier.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]models.Record)}
}

func (m *Memory) Name() string { return "memory" }

// Available always reports true; process-local memory has no connectivity.
func (m *Memory) Available(ctx context.Context) bool { return true }

func (m *Memory) Read(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) ([]models.Record, Coverage, error) {
	m.mu.RLock()
	stored := m.data[models.CacheKey(kind, ticker)]
	m.mu.RUnlock()

	found := models.FilterRange(stored, r)
	return found, CoverageOf(found), nil
}

func (m *Memory) Write(ctx context.Context, ticker string, kind models.Kind, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}
	key := models.CacheKey(kind, ticker)

	m.mu.Lock()
	defer m.mu.Unlock()
	// Incoming records overwrite stored ones on key collision.
	m.data[key] = models.MergeRecords(m.data[key], records)
	return nil
}

// Flush drops every stored sequence.
func (m *Memory) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]models.Record)
}

// Drop removes the stored sequence for one (kind, ticker) key.
func (m *Memory) Drop(kind models.Kind, ticker string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, models.CacheKey(kind, ticker))
}

// Len reports the number of records held for one (kind, ticker) key.
func (m *Memory) Len(kind models.Kind, ticker string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[models.CacheKey(kind, ticker)])
}
