package backtest

import (
	"fmt"
	"math"

	"quantsweep/internal/series"
	"quantsweep/internal/strategy"
)

// Curves holds the simulated equity curve alongside its buy-and-hold
// benchmark. Both start at the same initial capital and have length
// len(returns)+1.
type Curves struct {
	Equity    []float64
	Benchmark []float64
	// Returns are the realized per-period strategy returns
	// (executed position × market return), length len(Equity)-1.
	Returns []float64
}

// BuildEquity compounds executed positions against period returns into an
// equity curve, and period returns alone into the benchmark curve. The
// executed sequence must be aligned to the price index, so its length is
// len(returns)+1. Non-finite inputs fail the build instead of propagating
// NaN into the metrics.
func BuildEquity(executed []strategy.Signal, returns []float64, initialCapital float64) (*Curves, error) {
	if initialCapital <= 0 || math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) {
		return nil, fmt.Errorf("%w: initial capital %v must be positive", series.ErrInvalidInput, initialCapital)
	}
	if len(executed) != len(returns)+1 {
		return nil, fmt.Errorf("%w: %d positions for %d returns, want returns+1",
			series.ErrInvalidInput, len(executed), len(returns))
	}

	c := &Curves{
		Equity:    make([]float64, len(returns)+1),
		Benchmark: make([]float64, len(returns)+1),
		Returns:   make([]float64, len(returns)),
	}
	c.Equity[0] = initialCapital
	c.Benchmark[0] = initialCapital

	for i, r := range returns {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("%w: non-finite return %v at period %d", series.ErrInvalidInput, r, i)
		}
		// The position held over period i (bar i → bar i+1) is the executed
		// position at bar i+1; Short earns the negated return.
		c.Returns[i] = float64(executed[i+1]) * r
		c.Equity[i+1] = c.Equity[i] * (1 + c.Returns[i])
		c.Benchmark[i+1] = c.Benchmark[i] * (1 + r)
	}
	return c, nil
}
