/**
 * @description
 * Tier chain assembly from configuration. The configured mode picks the
 * tier composition; a backing store that cannot be reached at startup
 * downgrades the mode rather than failing the process, mirroring how the
 * cache degrades per-request once running.
 *
 *   full   -> redis, sql, memory
 *   redis  -> redis, memory
 *   memory -> memory
 *   none   -> empty chain (every read goes upstream, writes are no-ops)
 *
 * @dependencies
 * - internal/config
 * - internal/db
 * - internal/store
 */

package cache

import (
	"time"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/config"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/db"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/logger"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/store"
)

// Build connects the tiers the configured mode calls for and assembles the
// facade. Malformed configuration has already been rejected by config.Load;
// unreachable stores downgrade the mode with a warning.
func Build(cfg *config.Config, fetcher Fetcher) (*Cache, error) {
	mode := cfg.Cache.Mode
	if mode == config.ModeNone {
		logger.Info("cache: disabled, all reads go upstream")
		return New(mode, store.NewChain(), fetcher), nil
	}

	var tiers []store.Backend

	if mode == config.ModeFull || mode == config.ModeRedis {
		if client, err := db.ConnectRedis(cfg); err != nil {
			logger.Warn("cache: redis unreachable, downgrading mode: %v", err)
			if mode == config.ModeRedis {
				mode = config.ModeMemory
			}
		} else {
			ttl := time.Duration(cfg.Redis.ExpirationSeconds) * time.Second
			tiers = append(tiers, store.NewRedis(client, ttl))
		}
	}

	if mode == config.ModeFull {
		if gormDB, err := db.ConnectDatabase(cfg); err != nil {
			logger.Warn("cache: database unreachable, downgrading mode: %v", err)
			if len(tiers) > 0 {
				mode = config.ModeRedis
			} else {
				mode = config.ModeMemory
			}
		} else {
			tiers = append(tiers, store.NewSQL(gormDB))
		}
	}

	tiers = append(tiers, store.NewMemory())

	logger.Info("cache: initialized in %s mode with %d tier(s)", mode, len(tiers))
	return New(mode, store.NewChain(tiers...), fetcher), nil
}
