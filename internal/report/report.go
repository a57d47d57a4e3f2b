// Package report renders completed sweeps for the console and exports the
// full result set as CSV, one flat row per combination.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"quantsweep/internal/sweep"
)

// WriteSummary renders a human-readable sweep summary: the success/failure
// counts, a ranked table of the top n results, and the skipped combinations
// with their causes.
func WriteSummary(w io.Writer, symbol string, rs *sweep.ResultSet, n int) {
	fmt.Fprintf(w, "Sweep for %s: %d combinations attempted, %d succeeded, %d failed\n\n",
		symbol, rs.Attempted(), len(rs.Results), len(rs.Failures))

	top := sweep.TopN(rs, n)
	if len(top) == 0 {
		fmt.Fprintln(w, "No successful combinations.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tStrategy\tSharpe\tSortino\tCAGR\tVol\tMaxDD\tCalmar\tTrades")
		for i, r := range top {
			m := r.Metrics
			flag := ""
			if m.LowConfidence {
				flag = " *"
			}
			fmt.Fprintf(tw, "%d\t%s\t%.3f%s\t%.3f\t%.2f%%\t%.2f%%\t%.2f%%\t%.3f\t%d\n",
				i+1, r.Params, m.Sharpe, flag, m.Sortino,
				m.CAGR*100, m.AnnualVolatility*100, m.MaxDrawdown*100, m.Calmar, m.Trades)
		}
		tw.Flush()
	}

	if len(rs.Failures) > 0 {
		fmt.Fprintf(w, "\nSkipped combinations:\n")
		for _, f := range rs.Failures {
			fmt.Fprintf(w, "  %s: %v\n", f.Params, f.Err)
		}
	}
}

// WriteBest renders the top-ranked result with its final equity against the
// buy-and-hold benchmark.
func WriteBest(w io.Writer, rs *sweep.ResultSet) error {
	best, err := sweep.Best(rs)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nBest: %s\n", best.Params)
	if c := best.Curves; c != nil {
		fmt.Fprintf(w, "  final equity    %.2f (started at %.2f)\n", c.Equity[len(c.Equity)-1], c.Equity[0])
		fmt.Fprintf(w, "  buy-and-hold    %.2f\n", c.Benchmark[len(c.Benchmark)-1])
	}
	fmt.Fprintf(w, "  cumulative return %.2f%%, sharpe %.3f, max drawdown %.2f%%\n",
		best.Metrics.CumulativeReturn*100, best.Metrics.Sharpe, best.Metrics.MaxDrawdown*100)
	return nil
}

// csvHeader lists one column per parameter field and per metric.
var csvHeader = []string{
	"strategy", "window", "entry_z", "exit_z", "short_window", "long_window", "allow_shorting",
	"cumulative_return", "cagr", "annual_volatility", "sharpe", "sortino",
	"max_drawdown", "calmar", "trades", "low_confidence",
}

// WriteCSV exports every successful result as one flat CSV row in rank
// order, suitable for tabular import elsewhere.
func WriteCSV(w io.Writer, rs *sweep.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rs.Results {
		p, m := r.Params, r.Metrics
		row := []string{
			string(p.Type),
			strconv.Itoa(p.Window),
			formatFloat(p.EntryZ),
			formatFloat(p.ExitZ),
			strconv.Itoa(p.ShortWindow),
			strconv.Itoa(p.LongWindow),
			strconv.FormatBool(p.AllowShorting),
			formatFloat(m.CumulativeReturn),
			formatFloat(m.CAGR),
			formatFloat(m.AnnualVolatility),
			formatFloat(m.Sharpe),
			formatFloat(m.Sortino),
			formatFloat(m.MaxDrawdown),
			formatFloat(m.Calmar),
			strconv.Itoa(m.Trades),
			strconv.FormatBool(m.LowConfidence),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
