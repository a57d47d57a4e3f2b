// Package sweep enumerates strategy parameter grids, evaluates every
// combination through the signal → position → equity → metrics pipeline,
// and ranks the surviving results.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"quantsweep/internal/backtest"
	"quantsweep/internal/series"
	"quantsweep/internal/strategy"
)

// ErrNoResults is returned by Best when a sweep produced no successful
// combinations.
var ErrNoResults = errors.New("no successful combinations")

// Settings is the shared configuration for one sweep. It is threaded
// explicitly through the run; there is no package-level state.
type Settings struct {
	InitialCapital float64
	RiskFreeRate   float64 // annualized
	PeriodsPerYear float64 // 252 for daily data
	Workers        int     // 0 means GOMAXPROCS
}

// Grid lists the candidate parameter values per strategy type. Every listed
// value combines with every value of the other axes of the same strategy,
// and the AllowShorting axis applies orthogonally to all strategies. An
// empty AllowShorting list means long-only.
type Grid struct {
	Momentum      MomentumGrid
	MeanReversion MeanReversionGrid
	SMACrossover  SMACrossoverGrid
	AllowShorting []bool
}

// MomentumGrid lists candidate momentum lookback windows.
type MomentumGrid struct {
	Windows []int
}

// MeanReversionGrid lists candidate mean-reversion parameters.
type MeanReversionGrid struct {
	Windows []int
	EntryZ  []float64
	ExitZ   []float64 // empty means "no exit band" (a single 0 value)
}

// SMACrossoverGrid lists candidate moving-average window pairs.
type SMACrossoverGrid struct {
	ShortWindows []int
	LongWindows  []int
}

// Enumerate expands the grid into the full Cartesian product of parameter
// sets, in a deterministic order.
func (g Grid) Enumerate() []strategy.Params {
	shorting := g.AllowShorting
	if len(shorting) == 0 {
		shorting = []bool{false}
	}
	exits := g.MeanReversion.ExitZ
	if len(exits) == 0 {
		exits = []float64{0}
	}

	var combos []strategy.Params
	for _, allow := range shorting {
		for _, w := range g.Momentum.Windows {
			combos = append(combos, strategy.Params{
				Type: strategy.Momentum, Window: w, AllowShorting: allow,
			})
		}
		for _, w := range g.MeanReversion.Windows {
			for _, entry := range g.MeanReversion.EntryZ {
				for _, exit := range exits {
					combos = append(combos, strategy.Params{
						Type: strategy.MeanReversion, Window: w,
						EntryZ: entry, ExitZ: exit, AllowShorting: allow,
					})
				}
			}
		}
		for _, sw := range g.SMACrossover.ShortWindows {
			for _, lw := range g.SMACrossover.LongWindows {
				combos = append(combos, strategy.Params{
					Type: strategy.SMACrossover, ShortWindow: sw, LongWindow: lw,
					AllowShorting: allow,
				})
			}
		}
	}
	return combos
}

// Result is one successfully evaluated combination.
type Result struct {
	Params  strategy.Params
	Metrics backtest.Metrics
	Curves  *backtest.Curves
}

// Failure records a combination that could not be evaluated, with its cause.
type Failure struct {
	Params strategy.Params
	Err    error
}

// ResultSet collects the outcome of a whole sweep. Results are sorted by
// rank (best first); Failures carry no ordering guarantee.
type ResultSet struct {
	Results  []Result
	Failures []Failure
}

// Attempted returns the total number of combinations the sweep tried.
func (rs *ResultSet) Attempted() int { return len(rs.Results) + len(rs.Failures) }

// Run evaluates every combination of the grid against the shared read-only
// price series. Combinations are independent and run on a bounded worker
// pool; a validation failure skips that combination and the sweep
// continues. Cancelling the context aborts the remaining combinations
// without discarding results already collected. Run fails only when the
// price series itself is unusable.
func Run(ctx context.Context, prices *series.PriceSeries, grid Grid, st Settings) (*ResultSet, error) {
	if prices == nil || prices.Len() < 2 {
		return nil, fmt.Errorf("%w: price series is missing or too short", series.ErrInvalidInput)
	}
	if st.InitialCapital <= 0 {
		return nil, fmt.Errorf("%w: initial capital %v must be positive", series.ErrInvalidInput, st.InitialCapital)
	}

	combos := grid.Enumerate()
	workers := st.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(combos) {
		workers = len(combos)
	}

	log := slog.Default().With("component", "sweep")
	log.Info("starting sweep", "combinations", len(combos), "workers", workers)

	jobs := make(chan strategy.Params)
	rs := &ResultSet{}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				res, err := Evaluate(prices, p, st)
				mu.Lock()
				if err != nil {
					rs.Failures = append(rs.Failures, Failure{Params: p, Err: err})
				} else {
					rs.Results = append(rs.Results, res)
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, p := range combos {
		select {
		case jobs <- p:
		case <-ctx.Done():
			log.Warn("sweep aborted", "err", ctx.Err())
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	sortResults(rs.Results)
	log.Info("sweep complete", "succeeded", len(rs.Results), "failed", len(rs.Failures))
	return rs, nil
}

// Evaluate runs the full pipeline for a single combination: signal
// generation, lagged execution, equity compounding, and metrics.
func Evaluate(prices *series.PriceSeries, p strategy.Params, st Settings) (Result, error) {
	signals, err := strategy.Generate(prices, p)
	if err != nil {
		return Result{}, err
	}

	executed := backtest.Simulate(signals, p.AllowShorting)
	curves, err := backtest.BuildEquity(executed, prices.Returns(), st.InitialCapital)
	if err != nil {
		return Result{}, err
	}

	metrics, err := backtest.Compute(curves.Equity, curves.Returns,
		st.RiskFreeRate, st.PeriodsPerYear, backtest.CountTrades(executed))
	if err != nil {
		return Result{}, err
	}
	return Result{Params: p, Metrics: metrics, Curves: curves}, nil
}

// sortResults orders results best-first: Sharpe descending, ties broken by
// higher CAGR, then smaller drawdown magnitude, then by parameters so the
// ordering is deterministic regardless of worker scheduling.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i].Metrics, results[j].Metrics
		if a.Sharpe != b.Sharpe {
			return a.Sharpe > b.Sharpe
		}
		if a.CAGR != b.CAGR {
			return a.CAGR > b.CAGR
		}
		if a.MaxDrawdown != b.MaxDrawdown {
			return a.MaxDrawdown > b.MaxDrawdown // less negative ranks higher
		}
		return results[i].Params.String() < results[j].Params.String()
	})
}

// Best returns the top-ranked result, or ErrNoResults for an empty sweep.
func Best(rs *ResultSet) (Result, error) {
	if rs == nil || len(rs.Results) == 0 {
		return Result{}, ErrNoResults
	}
	return rs.Results[0], nil
}

// TopN returns the n best results (fewer when the sweep produced fewer).
func TopN(rs *ResultSet, n int) []Result {
	if n > len(rs.Results) {
		n = len(rs.Results)
	}
	return rs.Results[:n]
}
