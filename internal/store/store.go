// Package store persists price history and sweep results: daily closes live
// in Parquet files on disk, sweep outcomes in SQLite.
package store

import (
	"context"
	"time"

	"quantsweep/internal/series"
	"quantsweep/internal/sweep"
)

// PriceStore persists and retrieves daily adjusted closing prices.
type PriceStore interface {
	// WriteCloses persists daily close points for a symbol, merging with
	// whatever is already stored.
	WriteCloses(ctx context.Context, symbol string, points []series.PricePoint) error

	// ReadSeries returns the validated price series for a symbol within
	// [start, end].
	ReadSeries(ctx context.Context, symbol string, start, end time.Time) (*series.PriceSeries, error)

	// ListSymbols returns all distinct symbols with stored prices.
	ListSymbols(ctx context.Context) ([]string, error)
}

// ResultStore persists completed sweeps for later inspection.
type ResultStore interface {
	// SaveSweep records a finished sweep (results and failures) for the
	// given symbol and returns the run id.
	SaveSweep(ctx context.Context, symbol string, rs *sweep.ResultSet) (int64, error)

	// TopResults returns the best results of a stored run, ranked the same
	// way the sweep ranked them.
	TopResults(ctx context.Context, runID int64, limit int) ([]sweep.Result, error)
}
