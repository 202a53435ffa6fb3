/**
 * @description
 * Process-wide facade instance with an explicit lifecycle: built once,
 * torn down at process exit. AUTO_INITIALIZE selects eager construction at
 * startup versus lazy construction on first access.
 *
 * Tests construct their own instances via New/Build instead of sharing this
 * one; Reset exists so the rare test that exercises the singleton can leave
 * it clean.
 */

package cache

import (
	"sync"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/config"
)

var (
	globalMu sync.Mutex
	global   *Cache
	buildCfg *config.Config
	buildFet Fetcher
)

// Configure records the configuration and fetcher the singleton will use.
// When cfg.Cache.AutoInitialize is set, the facade is built immediately;
// otherwise construction is deferred to the first Instance call.
func Configure(cfg *config.Config, fetcher Fetcher) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	buildCfg = cfg
	buildFet = fetcher
	global = nil

	if cfg.Cache.AutoInitialize {
		c, err := Build(cfg, fetcher)
		if err != nil {
			return err
		}
		global = c
	}
	return nil
}

// Instance returns the process-wide facade, building it on first access
// when initialization was deferred.
func Instance() (*Cache, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil {
		return global, nil
	}

	cfg := buildCfg
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
		buildCfg = cfg
	}

	c, err := Build(cfg, buildFet)
	if err != nil {
		return nil, err
	}
	global = c
	return global, nil
}

// Reset drops the process-wide instance. Intended for tests.
func Reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = nil
	buildCfg = nil
	buildFet = nil
}
