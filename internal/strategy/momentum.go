package strategy

// generateMomentum signals Long when the price is above its level one window
// ago, Short (or Flat without shorting) when below, and Flat on an exact
// tie. The first Window bars have no reference price and stay Flat.
func generateMomentum(closes []float64, p Params) []Signal {
	signals := make([]Signal, len(closes))
	for t := p.Window; t < len(closes); t++ {
		switch {
		case closes[t] > closes[t-p.Window]:
			signals[t] = Long
		case closes[t] < closes[t-p.Window]:
			signals[t] = short(p.AllowShorting)
		}
	}
	return signals
}
