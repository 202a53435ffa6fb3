/**
 * @description
 * Backend is the capability contract shared by the three storage tiers
 * (memory, Redis, SQL). A backend never errors on "not found": an empty
 * coverage is a normal outcome. Connectivity failures surface as
 * ErrUnavailable, undecodable payloads as ErrCorrupt; the tier chain owns
 * the degradation policy for both.
 *
 * @dependencies
 * - internal/models
 */

package store

import (
	"context"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/models"
)

// Backend is one storage tier for cached record sequences.
type Backend interface {
	// Name identifies the tier in logs and degradation reports.
	Name() string

	// Available is a cheap liveness probe. The chain calls it before routing
	// a request to this backend; the context carries the probe timeout.
	Available(ctx context.Context) bool

	// Read returns whatever subset of the requested range this tier holds,
	// plus the coverage those records establish. Empty results are not an
	// error.
	Read(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) ([]models.Record, Coverage, error)

	// Write upserts records by natural key. Writing the same records twice
	// yields the same stored state.
	Write(ctx context.Context, ticker string, kind models.Kind, records []models.Record) error
}
