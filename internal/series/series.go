// Package series provides the validated price and return series consumed by
// the backtest pipeline. A PriceSeries is built once per run and shared
// read-only across every sweep combination.
package series

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidInput indicates malformed price or return data reaching a
// pipeline stage.
var ErrInvalidInput = errors.New("invalid input")

// PricePoint is one daily observation of an adjusted closing price.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceSeries is an ordered, date-indexed sequence of adjusted closing
// prices. It is immutable after construction; slices returned by accessors
// must not be modified by callers.
type PriceSeries struct {
	dates   []time.Time
	closes  []float64
	returns []float64
}

// New validates the given points and builds a PriceSeries. It fails with
// ErrInvalidInput when fewer than two points are supplied, dates are not
// strictly increasing, or any price is non-positive or non-finite.
func New(points []PricePoint) (*PriceSeries, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 price points, got %d", ErrInvalidInput, len(points))
	}

	s := &PriceSeries{
		dates:  make([]time.Time, len(points)),
		closes: make([]float64, len(points)),
	}
	for i, p := range points {
		if p.Close <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			return nil, fmt.Errorf("%w: non-positive price %v at %s", ErrInvalidInput, p.Close, p.Date.Format("2006-01-02"))
		}
		if i > 0 && !p.Date.After(points[i-1].Date) {
			return nil, fmt.Errorf("%w: dates not strictly increasing at %s", ErrInvalidInput, p.Date.Format("2006-01-02"))
		}
		s.dates[i] = p.Date
		s.closes[i] = p.Close
	}

	// Simple period returns: returns[i] = closes[i+1]/closes[i] - 1.
	s.returns = make([]float64, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		s.returns[i] = s.closes[i+1]/s.closes[i] - 1
	}
	return s, nil
}

// Len returns the number of price observations.
func (s *PriceSeries) Len() int { return len(s.closes) }

// Dates returns the observation dates in ascending order.
func (s *PriceSeries) Dates() []time.Time { return s.dates }

// Closes returns the adjusted closing prices aligned with Dates.
func (s *PriceSeries) Closes() []float64 { return s.closes }

// Returns returns the simple period returns. Its length is Len()-1 and
// element i covers the move from bar i to bar i+1.
func (s *PriceSeries) Returns() []float64 { return s.returns }

// First returns the earliest observation date.
func (s *PriceSeries) First() time.Time { return s.dates[0] }

// Last returns the latest observation date.
func (s *PriceSeries) Last() time.Time { return s.dates[len(s.dates)-1] }
