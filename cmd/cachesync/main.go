/**
 * @description
 * Manual cache maintenance entry point. Refreshes, inspects or clears the
 * cached data for a list of tickers using the configured tier chain and the
 * live financial data API.
 *
 * Usage:
 *   cachesync -cmd refresh -tickers AAPL,MSFT -start 2024-01-01 -end 2024-01-31
 *   cachesync -cmd stats   -tickers AAPL
 *   cachesync -cmd fill    -tickers AAPL -start 2024-01-01 -end 2024-01-31
 *   cachesync -cmd clear   -tickers AAPL
 *
 * -ephemeral-redis runs the distributed tier against a throwaway in-process
 * server, so one-off syncs work without a Redis deployment.
 */

package main

import (
	"context"
	"flag"
	"log"
	"strings"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/cache"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/config"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/fetcher"
)

func main() {
	cmd := flag.String("cmd", "stats", "one of: refresh, stats, fill, clear")
	tickers := flag.String("tickers", "", "comma-separated ticker symbols")
	start := flag.String("start", "", "start date (YYYY-MM-DD)")
	end := flag.String("end", "", "end date (YYYY-MM-DD)")
	ephemeral := flag.Bool("ephemeral-redis", false, "use an in-process redis instead of REDIS_URL")
	flag.Parse()

	if *tickers == "" {
		log.Fatal("no tickers given, use -tickers AAPL,MSFT")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if *ephemeral {
		url, stop, err := startEphemeralRedis()
		if err != nil {
			log.Fatalf("failed to start in-process redis: %v", err)
		}
		defer stop()
		cfg.Redis.URL = url
		log.Printf("🧪 Using in-process redis at %s", url)
	}

	c, err := cache.Build(cfg, fetcher.NewClient(cfg))
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
	manager := cache.NewManager(c)

	ctx := context.Background()
	for _, ticker := range strings.Split(*tickers, ",") {
		ticker = strings.TrimSpace(strings.ToUpper(ticker))
		if ticker == "" {
			continue
		}

		switch *cmd {
		case "refresh":
			log.Printf("🔄 Refreshing %s...", ticker)
			for kind, err := range manager.RefreshTicker(ctx, ticker, *start, *end) {
				if err != nil {
					log.Printf("⚠️ %s/%s refresh failed: %v", ticker, kind, err)
				}
			}
			log.Printf("✅ %s refreshed", ticker)

		case "stats":
			for kind, s := range manager.Stats(ctx, ticker) {
				if s.Count == 0 {
					log.Printf("%s/%s: empty", ticker, kind)
					continue
				}
				log.Printf("%s/%s: %d records, %s .. %s", ticker, kind, s.Count, s.Earliest, s.Latest)
			}

		case "fill":
			prices, filled, err := manager.FillMissingPrices(ctx, ticker, *start, *end)
			if err != nil {
				log.Printf("⚠️ %s fill failed: %v", ticker, err)
				continue
			}
			log.Printf("✅ %s: %d bars, filled %d missing day(s)", ticker, len(prices), len(filled))

		case "clear":
			if err := manager.ClearTicker(ctx, ticker); err != nil {
				log.Printf("⚠️ %s clear incomplete: %v", ticker, err)
				continue
			}
			log.Printf("✅ %s cleared from volatile tiers", ticker)

		default:
			log.Fatalf("unknown command %q", *cmd)
		}
	}
}

// startEphemeralRedis runs a throwaway in-process server and returns the URL
// the distributed tier should connect to.
func startEphemeralRedis() (url string, stop func(), err error) {
	mr, err := miniredis.Run()
	if err != nil {
		return "", nil, err
	}
	return "redis://" + mr.Addr(), mr.Close, nil
}
