// Command quantsweep-fetch downloads daily adjusted closes from the Alpaca
// market-data API into the local Parquet store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"quantsweep/internal/config"
	"quantsweep/internal/fetch"
	"quantsweep/internal/store"
	"quantsweep/internal/util"
)

func main() {
	var (
		cfgPath = flag.String("config", defaultConfigPath(), "path to YAML configuration")
		symbols = flag.String("symbols", "", "comma-separated symbols (defaults to fetch.symbols from config)")
		start   = flag.String("start", "", "fetch range start YYYY-MM-DD (defaults to fetch.start_date)")
		end     = flag.String("end", time.Now().UTC().Format("2006-01-02"), "fetch range end YYYY-MM-DD")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: quantsweep-fetch [options]\n\n")
		fmt.Fprintf(os.Stderr, "Fetches daily adjusted closes into the Parquet data store.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level, cfg.Logging.Format))
	log := slog.Default()

	syms := cfg.Fetch.Symbols
	if *symbols != "" {
		syms = strings.Split(*symbols, ",")
	}
	if len(syms) == 0 {
		log.Error("no symbols to fetch: pass -symbols or set fetch.symbols")
		os.Exit(1)
	}

	startStr := cfg.Fetch.StartDate
	if *start != "" {
		startStr = *start
	}
	startDate, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		log.Error("parsing start date", "value", startStr, "err", err)
		os.Exit(1)
	}
	endDate, err := time.Parse("2006-01-02", *end)
	if err != nil {
		log.Error("parsing end date", "value", *end, "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ps := store.NewParquetStore(cfg.Storage.DataDir)
	f := fetch.NewDailyCloseFetcher(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
		ps, cfg.Fetch.RateLimitPerMin)

	if err := f.Fetch(ctx, syms, startDate, endDate); err != nil {
		log.Error("fetch failed", "err", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("QUANTSWEEP_CONFIG"); p != "" {
		return p
	}
	return "config/quantsweep.yaml"
}
