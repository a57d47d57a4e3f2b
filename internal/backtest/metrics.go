package backtest

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrInvalidMetric indicates a metric whose computation would be undefined
// or non-finite for the given inputs.
var ErrInvalidMetric = errors.New("invalid metric")

// Metrics is the fixed set of risk/return statistics derived from one
// equity curve. MaxDrawdown uses the signed convention: always ≤ 0, and 0
// only when the curve never declines.
type Metrics struct {
	CumulativeReturn float64
	CAGR             float64
	AnnualVolatility float64
	Sharpe           float64
	Sortino          float64
	MaxDrawdown      float64
	Calmar           float64
	Trades           int
	// LowConfidence marks records whose return series was too short for a
	// meaningful volatility estimate (< 2 observations).
	LowConfidence bool
}

// Compute reduces an equity curve and its per-period strategy returns to a
// Metrics record. riskFreeRate is annualized; periodsPerYear is 252 for
// daily data. Zero-denominator cases (zero volatility, zero downside
// deviation, zero drawdown) report 0 for the affected ratio rather than an
// infinity, so degenerate runs rank neutrally instead of corrupting a sweep.
func Compute(equity, returns []float64, riskFreeRate, periodsPerYear float64, trades int) (Metrics, error) {
	if len(equity) < 2 || len(equity) != len(returns)+1 {
		return Metrics{}, fmt.Errorf("%w: equity curve of %d points for %d returns", ErrInvalidMetric, len(equity), len(returns))
	}
	if periodsPerYear <= 0 {
		return Metrics{}, fmt.Errorf("%w: periods per year %v must be positive", ErrInvalidMetric, periodsPerYear)
	}

	m := Metrics{Trades: trades}

	// Growth base guards: equity cannot reach ≤ 0 under the fixed-state
	// position model, but a bad input must not turn into a NaN ranking key.
	if equity[0] <= 0 {
		return Metrics{}, fmt.Errorf("%w: non-positive starting equity %v", ErrInvalidMetric, equity[0])
	}
	base := equity[len(equity)-1] / equity[0]
	if base <= 0 || math.IsNaN(base) {
		return Metrics{}, fmt.Errorf("%w: non-positive equity growth %v", ErrInvalidMetric, base)
	}
	m.CumulativeReturn = base - 1
	m.CAGR = math.Pow(base, periodsPerYear/float64(len(returns))) - 1

	if len(returns) < 2 {
		m.LowConfidence = true
	} else {
		m.AnnualVolatility = stat.StdDev(returns, nil) * math.Sqrt(periodsPerYear)
	}

	excess := stat.Mean(returns, nil)*periodsPerYear - riskFreeRate
	if m.AnnualVolatility > 0 {
		m.Sharpe = excess / m.AnnualVolatility
	}

	if dd := downsideDeviation(returns, periodsPerYear); dd > 0 {
		m.Sortino = excess / dd
	}

	m.MaxDrawdown = maxDrawdown(equity)
	if m.MaxDrawdown != 0 {
		m.Calmar = m.CAGR / math.Abs(m.MaxDrawdown)
	}
	return m, nil
}

// downsideDeviation is the annualized standard deviation of the negative
// returns only. Fewer than two negative observations yield 0.
func downsideDeviation(returns []float64, periodsPerYear float64) float64 {
	var negative []float64
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	if len(negative) < 2 {
		return 0
	}
	return stat.StdDev(negative, nil) * math.Sqrt(periodsPerYear)
}

// maxDrawdown is the most negative peak-to-trough decline of the curve,
// measured against the running maximum. The result is ≤ 0.
func maxDrawdown(equity []float64) float64 {
	peak := equity[0]
	worst := 0.0
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if dd := v/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}
