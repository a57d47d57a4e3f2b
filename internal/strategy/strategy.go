// Package strategy generates position-intent signals from daily price
// history. The strategy set is closed: each variant is a Type tag with one
// generator function, selected through a dispatch table.
package strategy

import (
	"errors"
	"fmt"

	"quantsweep/internal/series"
)

// Signal is an intended position state for one bar.
type Signal int8

const (
	Short Signal = -1
	Flat  Signal = 0
	Long  Signal = 1
)

// Type identifies a strategy variant.
type Type string

const (
	Momentum      Type = "momentum"
	MeanReversion Type = "mean_reversion"
	SMACrossover  Type = "sma_crossover"
)

// Types lists every known strategy variant.
var Types = []Type{Momentum, MeanReversion, SMACrossover}

// ErrInvalidParameter indicates a malformed or logically inconsistent
// parameter set.
var ErrInvalidParameter = errors.New("invalid parameter")

// Params holds one strategy configuration. A Params value is created once
// per sweep combination and never mutated afterwards; only the fields used
// by the tagged variant are meaningful.
type Params struct {
	Type          Type
	Window        int     // momentum / mean-reversion lookback
	EntryZ        float64 // mean-reversion entry threshold (z-score)
	ExitZ         float64 // mean-reversion exit threshold, 0 disables exits
	ShortWindow   int     // sma-crossover fast window
	LongWindow    int     // sma-crossover slow window
	AllowShorting bool
}

// Validate checks the parameter set against the rules of its variant.
func (p Params) Validate() error {
	switch p.Type {
	case Momentum:
		if p.Window <= 0 {
			return fmt.Errorf("%w: momentum window %d must be positive", ErrInvalidParameter, p.Window)
		}
	case MeanReversion:
		if p.Window <= 0 {
			return fmt.Errorf("%w: mean-reversion window %d must be positive", ErrInvalidParameter, p.Window)
		}
		if p.EntryZ <= 0 {
			return fmt.Errorf("%w: entry z-score %v must be positive", ErrInvalidParameter, p.EntryZ)
		}
		if p.ExitZ < 0 || p.ExitZ >= p.EntryZ {
			return fmt.Errorf("%w: exit z-score %v must be in [0, entry z %v)", ErrInvalidParameter, p.ExitZ, p.EntryZ)
		}
	case SMACrossover:
		if p.ShortWindow <= 0 || p.LongWindow <= 0 {
			return fmt.Errorf("%w: sma windows (%d, %d) must be positive", ErrInvalidParameter, p.ShortWindow, p.LongWindow)
		}
		if p.ShortWindow >= p.LongWindow {
			return fmt.Errorf("%w: short window %d must be less than long window %d", ErrInvalidParameter, p.ShortWindow, p.LongWindow)
		}
	default:
		return fmt.Errorf("%w: unknown strategy type %q", ErrInvalidParameter, p.Type)
	}
	return nil
}

// String renders the parameter set in a compact form for logs and reports.
func (p Params) String() string {
	switch p.Type {
	case Momentum:
		return fmt.Sprintf("momentum(window=%d, short=%t)", p.Window, p.AllowShorting)
	case MeanReversion:
		return fmt.Sprintf("mean_reversion(window=%d, entry_z=%g, exit_z=%g, short=%t)",
			p.Window, p.EntryZ, p.ExitZ, p.AllowShorting)
	case SMACrossover:
		return fmt.Sprintf("sma_crossover(short=%d, long=%d, short_sell=%t)",
			p.ShortWindow, p.LongWindow, p.AllowShorting)
	}
	return string(p.Type)
}

type generateFunc func(closes []float64, p Params) []Signal

// generators is the closed dispatch table: adding a variant means adding a
// Type constant, a generator, and one entry here.
var generators = map[Type]generateFunc{
	Momentum:      generateMomentum,
	MeanReversion: generateMeanReversion,
	SMACrossover:  generateSMACrossover,
}

// Generate produces one intended position state per bar of the price series.
// It is a pure function of its inputs: the same series and parameters always
// yield the same signal sequence. Bars without sufficient history yield Flat.
func Generate(prices *series.PriceSeries, p Params) ([]Signal, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	gen := generators[p.Type]
	return gen(prices.Closes(), p), nil
}

// short returns Short when shorting is permitted, Flat otherwise.
func short(allowShorting bool) Signal {
	if allowShorting {
		return Short
	}
	return Flat
}
