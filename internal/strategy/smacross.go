package strategy

// generateSMACrossover signals Long while the short-window simple moving
// average is above the long-window one, Short (or Flat without shorting)
// while below, and Flat on an exact tie. Bars before the long window is
// filled stay Flat.
//
// Both averages are maintained as running sums so the scan stays O(n).
func generateSMACrossover(closes []float64, p Params) []Signal {
	signals := make([]Signal, len(closes))
	if len(closes) < p.LongWindow {
		return signals
	}

	var shortSum, longSum float64
	for t, c := range closes {
		shortSum += c
		if t >= p.ShortWindow {
			shortSum -= closes[t-p.ShortWindow]
		}
		longSum += c
		if t >= p.LongWindow {
			longSum -= closes[t-p.LongWindow]
		}

		if t < p.LongWindow-1 {
			continue
		}
		shortSMA := shortSum / float64(p.ShortWindow)
		longSMA := longSum / float64(p.LongWindow)
		switch {
		case shortSMA > longSMA:
			signals[t] = Long
		case shortSMA < longSMA:
			signals[t] = short(p.AllowShorting)
		}
	}
	return signals
}
