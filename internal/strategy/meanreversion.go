package strategy

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// generateMeanReversion bets against extremes: it goes Short when the
// z-score of the current price against its rolling mean reaches EntryZ, Long
// when it falls to -EntryZ, and otherwise stays Flat. With a non-zero ExitZ
// an open position is instead held until |z| retreats inside the exit band.
// Bars with insufficient history or a degenerate (zero) rolling standard
// deviation are Flat.
func generateMeanReversion(closes []float64, p Params) []Signal {
	signals := make([]Signal, len(closes))

	cur := Flat
	for t := p.Window - 1; t < len(closes); t++ {
		window := closes[t-p.Window+1 : t+1]
		mean := stat.Mean(window, nil)
		sd := stat.StdDev(window, nil)
		if sd <= 0 || math.IsNaN(sd) {
			cur = Flat
			continue
		}

		z := (closes[t] - mean) / sd
		switch {
		case z >= p.EntryZ:
			cur = short(p.AllowShorting)
		case z <= -p.EntryZ:
			cur = Long
		default:
			if p.ExitZ == 0 || math.Abs(z) < p.ExitZ {
				cur = Flat
			}
			// Between the exit and entry bands an open position is held.
		}
		signals[t] = cur
	}
	return signals
}
