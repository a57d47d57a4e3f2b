// Package backtest turns intended signals into executed positions, equity
// curves, and risk/return metrics. All functions are pure transforms over
// immutable inputs; nothing here blocks or performs I/O.
package backtest

import "quantsweep/internal/strategy"

// Simulate converts intended signals into executed positions. The position
// at bar t is the signal from bar t-1: the close used to decide a signal is
// never the close the position earns on, which is what keeps the simulation
// free of lookahead. Bar 0 has no prior signal and is always Flat. When
// shorting is not permitted, Short intents coerce to Flat.
func Simulate(signals []strategy.Signal, allowShorting bool) []strategy.Signal {
	executed := make([]strategy.Signal, len(signals))
	for t := 1; t < len(signals); t++ {
		s := signals[t-1]
		if s == strategy.Short && !allowShorting {
			s = strategy.Flat
		}
		executed[t] = s
	}
	return executed
}

// CountTrades counts the bars where the executed position changed, a coarse
// turnover proxy rather than an exact fill count.
func CountTrades(executed []strategy.Signal) int {
	trades := 0
	for t := 1; t < len(executed); t++ {
		if executed[t] != executed[t-1] {
			trades++
		}
	}
	return trades
}
