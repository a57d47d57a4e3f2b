package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"quantsweep/internal/backtest"
	"quantsweep/internal/series"
	"quantsweep/internal/strategy"
	"quantsweep/internal/sweep"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data")
	got := ps.closePath("AAPL", 2024)
	want := filepath.Join("/data", "daily", "AAPL", "2024.parquet")
	if got != want {
		t.Errorf("closePath mismatch:\n  got  %s\n  want %s", got, want)
	}
}

func TestParquetStoreWriteReadSeries(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	points := []series.PricePoint{
		{Date: day(0), Close: 185.5},
		{Date: day(1), Close: 186.0},
		{Date: day(2), Close: 184.25},
	}
	if err := ps.WriteCloses(ctx, "aapl", points); err != nil {
		t.Fatalf("WriteCloses: %v", err)
	}

	s, err := ps.ReadSeries(ctx, "AAPL", day(0), day(30))
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("ReadSeries returned %d points, want 3", s.Len())
	}
	if s.Closes()[2] != 184.25 {
		t.Errorf("closes[2] = %v, want 184.25", s.Closes()[2])
	}
}

func TestParquetStoreMergesOnRewrite(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	if err := ps.WriteCloses(ctx, "MSFT", []series.PricePoint{{Date: day(0), Close: 400}}); err != nil {
		t.Fatalf("WriteCloses (first): %v", err)
	}
	// Second write for the same symbol+year must merge, and the duplicate
	// date must take the incoming value.
	err := ps.WriteCloses(ctx, "MSFT", []series.PricePoint{
		{Date: day(0), Close: 401},
		{Date: day(3), Close: 408},
	})
	if err != nil {
		t.Fatalf("WriteCloses (second): %v", err)
	}

	s, err := ps.ReadSeries(ctx, "MSFT", day(0), day(10))
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("ReadSeries returned %d points after merge, want 2", s.Len())
	}
	if s.Closes()[0] != 401 {
		t.Errorf("closes[0] = %v, want incoming value 401", s.Closes()[0])
	}
}

func TestParquetStoreReadSeriesEmpty(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	_, err := ps.ReadSeries(context.Background(), "NONE", day(0), day(10))
	if !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestParquetStoreListSymbols(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	for _, sym := range []string{"GOOGL", "AAPL"} {
		err := ps.WriteCloses(ctx, sym, []series.PricePoint{{Date: day(0), Close: 100}})
		if err != nil {
			t.Fatalf("WriteCloses(%s): %v", sym, err)
		}
	}

	symbols, err := ps.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "AAPL" || symbols[1] != "GOOGL" {
		t.Errorf("ListSymbols = %v, want [AAPL GOOGL]", symbols)
	}
}

func TestSQLiteStoreSaveAndTopResults(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sweeps.db")
	st, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	rs := &sweep.ResultSet{
		Results: []sweep.Result{
			{
				Params:  strategy.Params{Type: strategy.Momentum, Window: 20},
				Metrics: backtest.Metrics{Sharpe: 1.4, CAGR: 0.2, MaxDrawdown: -0.1, Trades: 12},
			},
			{
				Params:  strategy.Params{Type: strategy.SMACrossover, ShortWindow: 10, LongWindow: 50, AllowShorting: true},
				Metrics: backtest.Metrics{Sharpe: 0.9, CAGR: 0.1, MaxDrawdown: -0.15, Trades: 6},
			},
		},
		Failures: []sweep.Failure{
			{
				Params: strategy.Params{Type: strategy.SMACrossover, ShortWindow: 50, LongWindow: 20},
				Err:    strategy.ErrInvalidParameter,
			},
		},
	}

	runID, err := st.SaveSweep(ctx, "SPY", rs)
	if err != nil {
		t.Fatalf("SaveSweep: %v", err)
	}
	if runID <= 0 {
		t.Fatalf("SaveSweep returned run id %d, want > 0", runID)
	}

	got, err := st.TopResults(ctx, runID, 10)
	if err != nil {
		t.Fatalf("TopResults: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("TopResults returned %d rows, want 2", len(got))
	}
	// Rank order preserved.
	if got[0].Metrics.Sharpe != 1.4 {
		t.Errorf("top sharpe = %v, want 1.4", got[0].Metrics.Sharpe)
	}
	if got[1].Params.Type != strategy.SMACrossover {
		t.Errorf("second strategy = %q, want sma_crossover", got[1].Params.Type)
	}
	if !got[1].Params.AllowShorting {
		t.Error("second result lost AllowShorting on round trip")
	}

	// Limit applies.
	got, err = st.TopResults(ctx, runID, 1)
	if err != nil {
		t.Fatalf("TopResults(limit=1): %v", err)
	}
	if len(got) != 1 {
		t.Errorf("TopResults(limit=1) returned %d rows, want 1", len(got))
	}
}
