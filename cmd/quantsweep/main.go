// Command quantsweep runs a parameter sweep over historical daily prices
// and reports the ranked results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quantsweep/internal/config"
	"quantsweep/internal/loader"
	"quantsweep/internal/report"
	"quantsweep/internal/series"
	"quantsweep/internal/store"
	"quantsweep/internal/sweep"
	"quantsweep/internal/util"
)

func main() {
	var (
		cfgPath = flag.String("config", defaultConfigPath(), "path to YAML configuration")
		csvPath = flag.String("csv", "", "load prices from a CSV file instead of the data store")
		symbol  = flag.String("symbol", "", "symbol to sweep (reads the Parquet store unless -csv is set)")
		start   = flag.String("start", "1990-01-01", "store read range start (YYYY-MM-DD)")
		end     = flag.String("end", time.Now().UTC().Format("2006-01-02"), "store read range end (YYYY-MM-DD)")
		outPath = flag.String("out", "", "write the full result set to this CSV file")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: quantsweep [options]\n\n")
		fmt.Fprintf(os.Stderr, "Evaluates the configured strategy parameter grid against a daily\n")
		fmt.Fprintf(os.Stderr, "price series and prints the ranked results.\n\n")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prices, name, err := loadPrices(ctx, cfg, *csvPath, *symbol, *start, *end)
	if err != nil {
		log.Error("loading prices", "err", err)
		os.Exit(1)
	}
	log.Info("prices loaded", "symbol", name, "bars", prices.Len(),
		"from", prices.First().Format("2006-01-02"), "to", prices.Last().Format("2006-01-02"))

	rs, err := sweep.Run(ctx, prices, cfg.Grid.SweepGrid(), cfg.Sweep.Settings())
	if err != nil {
		log.Error("sweep failed", "err", err)
		os.Exit(1)
	}

	report.WriteSummary(os.Stdout, name, rs, cfg.Sweep.TopN)
	if err := report.WriteBest(os.Stdout, rs); err != nil {
		log.Warn("no best result", "err", err)
	}

	if *outPath != "" {
		if err := exportCSV(*outPath, rs); err != nil {
			log.Error("exporting results", "path", *outPath, "err", err)
			os.Exit(1)
		}
		log.Info("results exported", "path", *outPath)
	}

	if cfg.Storage.SQLitePath != "" {
		st, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Error("opening result store", "err", err)
			os.Exit(1)
		}
		defer st.Close()

		runID, err := st.SaveSweep(ctx, name, rs)
		if err != nil {
			log.Error("persisting sweep", "err", err)
			os.Exit(1)
		}
		log.Info("sweep persisted", "run_id", runID)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("QUANTSWEEP_CONFIG"); p != "" {
		return p
	}
	return "config/quantsweep.yaml"
}

// loadPrices reads the price series either from a CSV file or from the
// Parquet store, returning the series and a display name for it.
func loadPrices(ctx context.Context, cfg *config.Config, csvPath, symbol, start, end string) (*series.PriceSeries, string, error) {
	if csvPath != "" {
		s, err := loader.LoadCSV(csvPath)
		return s, csvPath, err
	}
	if symbol == "" {
		return nil, "", fmt.Errorf("either -csv or -symbol is required")
	}

	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, "", fmt.Errorf("parsing -start: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, "", fmt.Errorf("parsing -end: %w", err)
	}

	ps := store.NewParquetStore(cfg.Storage.DataDir)
	s, err := ps.ReadSeries(ctx, symbol, startDate, endDate)
	return s, symbol, err
}

func exportCSV(path string, rs *sweep.ResultSet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteCSV(f, rs)
}
