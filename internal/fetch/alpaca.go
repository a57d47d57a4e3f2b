// Package fetch pulls daily adjusted closing prices from the Alpaca
// market-data API into the local price store.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"quantsweep/internal/series"
	"quantsweep/internal/store"
	"quantsweep/internal/util"
)

// requestBurst lets a handful of symbols go out back to back before the
// per-minute rate takes over.
const requestBurst = 5

// DailyCloseFetcher fetches fully adjusted daily bars per symbol and keeps
// only the closes the backtest pipeline needs.
type DailyCloseFetcher struct {
	client  *marketdata.Client
	store   store.PriceStore
	limiter *util.RateLimiter
	log     *slog.Logger
}

// NewDailyCloseFetcher creates a fetcher with the given Alpaca credentials,
// target store, and API rate limit.
func NewDailyCloseFetcher(apiKey, apiSecret, dataURL string, s store.PriceStore, ratePerMin int) *DailyCloseFetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}

	return &DailyCloseFetcher{
		client:  marketdata.NewClient(opts),
		store:   s,
		limiter: util.NewRateLimiter(ratePerMin, requestBurst),
		log:     slog.Default().With("component", "fetch"),
	}
}

// Fetch downloads daily closes for every symbol in [start, end] and merges
// them into the store. A symbol that returns no bars is logged and skipped;
// an API error fails the run.
func (f *DailyCloseFetcher) Fetch(ctx context.Context, symbols []string, start, end time.Time) error {
	runStart := time.Now()
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}

		points, err := f.fetchSymbol(ctx, symbol, start, end)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", symbol, err)
		}
		if len(points) == 0 {
			f.log.Warn("no bars returned", "symbol", symbol)
			continue
		}

		if err := f.store.WriteCloses(ctx, symbol, points); err != nil {
			return fmt.Errorf("storing %s: %w", symbol, err)
		}
		f.log.Info("symbol stored",
			"symbol", symbol,
			"bars", len(points),
			"from", points[0].Date.Format("2006-01-02"),
			"to", points[len(points)-1].Date.Format("2006-01-02"),
		)
	}

	f.log.Info("fetch complete", "symbols", len(symbols), "elapsed", time.Since(runStart).Round(time.Second))
	return nil
}

// fetchSymbol pulls one symbol's daily bars, retrying transient API errors.
func (f *DailyCloseFetcher) fetchSymbol(ctx context.Context, symbol string, start, end time.Time) ([]series.PricePoint, error) {
	var bars []marketdata.Bar
	err := util.Retry(ctx, 3, time.Second, func() error {
		var err error
		bars, err = f.client.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame:  marketdata.OneDay,
			Adjustment: marketdata.All,
			Start:      start,
			End:        end,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	points := make([]series.PricePoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, series.PricePoint{
			Date:  b.Timestamp.UTC(),
			Close: b.Close,
		})
	}
	return points, nil
}
