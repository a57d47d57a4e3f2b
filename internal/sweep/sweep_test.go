package sweep

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"quantsweep/internal/series"
	"quantsweep/internal/strategy"
)

func newSeries(t *testing.T, closes []float64) *series.PriceSeries {
	t.Helper()
	points := make([]series.PricePoint, len(closes))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		points[i] = series.PricePoint{Date: base.AddDate(0, 0, i), Close: c}
	}
	s, err := series.New(points)
	if err != nil {
		t.Fatalf("series.New: %v", err)
	}
	return s
}

func defaultSettings() Settings {
	return Settings{InitialCapital: 100000, RiskFreeRate: 0, PeriodsPerYear: 252, Workers: 2}
}

func TestEnumerateCounts(t *testing.T) {
	g := Grid{
		Momentum:      MomentumGrid{Windows: []int{10, 20}},
		MeanReversion: MeanReversionGrid{Windows: []int{20}, EntryZ: []float64{1.5, 2.0}, ExitZ: []float64{0, 0.5}},
		SMACrossover:  SMACrossoverGrid{ShortWindows: []int{5, 10}, LongWindows: []int{50}},
		AllowShorting: []bool{false, true},
	}

	combos := g.Enumerate()
	// (2 momentum + 1*2*2 mean reversion + 2*1 sma) * 2 shorting = 16.
	if len(combos) != 16 {
		t.Fatalf("Enumerate returned %d combinations, want 16", len(combos))
	}
}

func TestEnumerateDefaultsToLongOnly(t *testing.T) {
	g := Grid{Momentum: MomentumGrid{Windows: []int{10}}}
	combos := g.Enumerate()
	if len(combos) != 1 {
		t.Fatalf("Enumerate returned %d combinations, want 1", len(combos))
	}
	if combos[0].AllowShorting {
		t.Error("AllowShorting = true, want false by default")
	}
}

// A monotonically rising series under a 1/2 SMA crossover
// goes Long after warm-up and stays Long, so equity rises, drawdown is 0,
// and Calmar reports 0 under the zero-drawdown rule.
func TestEvaluateRisingSMACrossover(t *testing.T) {
	prices := newSeries(t, []float64{100, 110, 121, 133.1, 146.41})
	p := strategy.Params{Type: strategy.SMACrossover, ShortWindow: 1, LongWindow: 2}

	res, err := Evaluate(prices, p, defaultSettings())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	eq := res.Curves.Equity
	// Flat over the first period (no signal yet to execute), then strictly
	// increasing once the lagged Long position is in force.
	if eq[1] != eq[0] {
		t.Errorf("equity moved during warm-up lag: %v", eq[:2])
	}
	for i := 2; i < len(eq); i++ {
		if eq[i] <= eq[i-1] {
			t.Errorf("equity[%d] = %v not greater than equity[%d] = %v", i, eq[i], i-1, eq[i-1])
		}
	}

	m := res.Metrics
	if m.CAGR <= 0 {
		t.Errorf("CAGR = %v, want > 0", m.CAGR)
	}
	if m.MaxDrawdown != 0 {
		t.Errorf("MaxDrawdown = %v, want 0", m.MaxDrawdown)
	}
	if m.Calmar != 0 {
		t.Errorf("Calmar = %v, want 0 when drawdown is 0", m.Calmar)
	}
}

func TestRunRecordsFailuresAndContinues(t *testing.T) {
	prices := newSeries(t, []float64{100, 102, 101, 104, 103, 106, 105, 108})
	g := Grid{
		Momentum: MomentumGrid{Windows: []int{2}},
		// short >= long is rejected per combination, not fatally.
		SMACrossover: SMACrossoverGrid{ShortWindows: []int{5}, LongWindows: []int{5}},
	}

	rs, err := Run(context.Background(), prices, g, defaultSettings())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rs.Results) != 1 {
		t.Fatalf("Results = %d, want 1", len(rs.Results))
	}
	if len(rs.Failures) != 1 {
		t.Fatalf("Failures = %d, want 1", len(rs.Failures))
	}
	if !errors.Is(rs.Failures[0].Err, strategy.ErrInvalidParameter) {
		t.Errorf("failure cause = %v, want ErrInvalidParameter", rs.Failures[0].Err)
	}
	if rs.Attempted() != 2 {
		t.Errorf("Attempted = %d, want 2", rs.Attempted())
	}
}

func TestRunAllInvalidGrid(t *testing.T) {
	prices := newSeries(t, []float64{100, 102, 104})
	g := Grid{
		Momentum:     MomentumGrid{Windows: []int{-1, 0}},
		SMACrossover: SMACrossoverGrid{ShortWindows: []int{50}, LongWindows: []int{20}},
	}

	rs, err := Run(context.Background(), prices, g, defaultSettings())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rs.Results) != 0 {
		t.Fatalf("Results = %d, want 0", len(rs.Results))
	}
	if len(rs.Failures) != 3 {
		t.Fatalf("Failures = %d, want 3", len(rs.Failures))
	}

	// Best must fail with the distinct no-results condition, not panic.
	if _, err := Best(rs); !errors.Is(err, ErrNoResults) {
		t.Errorf("Best: err = %v, want ErrNoResults", err)
	}
	if top := TopN(rs, 5); len(top) != 0 {
		t.Errorf("TopN = %d results, want 0", len(top))
	}
}

func TestRunRejectsInvalidSeries(t *testing.T) {
	g := Grid{Momentum: MomentumGrid{Windows: []int{5}}}
	if _, err := Run(context.Background(), nil, g, defaultSettings()); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("Run(nil series): err = %v, want ErrInvalidInput", err)
	}

	prices := newSeries(t, []float64{100, 101})
	if _, err := Run(context.Background(), prices, g, Settings{InitialCapital: 0, PeriodsPerYear: 252}); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("Run(zero capital): err = %v, want ErrInvalidInput", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	prices := newSeries(t, []float64{100, 102, 104, 103, 105})
	g := Grid{Momentum: MomentumGrid{Windows: []int{1, 2, 3, 4}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rs, err := Run(ctx, prices, g, defaultSettings())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Aborting must not corrupt the set: whatever completed is well-formed.
	if rs.Attempted() > 4 {
		t.Errorf("Attempted = %d, want at most 4", rs.Attempted())
	}
	for _, r := range rs.Results {
		if math.IsNaN(r.Metrics.Sharpe) {
			t.Errorf("collected result has NaN sharpe: %+v", r.Metrics)
		}
	}
}

func TestRankingOrder(t *testing.T) {
	// Trending series: longer momentum windows trade less and differ in
	// Sharpe; verify the sorted ordering is monotonic on the ranking key.
	closes := make([]float64, 60)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		step := 1.01
		if i%7 == 0 {
			step = 0.98
		}
		closes[i] = closes[i-1] * step
	}
	prices := newSeries(t, closes)

	g := Grid{Momentum: MomentumGrid{Windows: []int{2, 5, 10, 20}}}
	rs, err := Run(context.Background(), prices, g, defaultSettings())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rs.Results) != 4 {
		t.Fatalf("Results = %d, want 4", len(rs.Results))
	}
	for i := 1; i < len(rs.Results); i++ {
		if rs.Results[i].Metrics.Sharpe > rs.Results[i-1].Metrics.Sharpe {
			t.Errorf("results not sorted by sharpe desc at %d: %v > %v",
				i, rs.Results[i].Metrics.Sharpe, rs.Results[i-1].Metrics.Sharpe)
		}
	}

	best, err := Best(rs)
	if err != nil {
		t.Fatalf("Best: %v", err)
	}
	if best.Metrics.Sharpe != rs.Results[0].Metrics.Sharpe {
		t.Error("Best does not match the first ranked result")
	}
	if top := TopN(rs, 2); len(top) != 2 {
		t.Errorf("TopN(2) = %d results, want 2", len(top))
	}
}
