package series

import (
	"errors"
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNewValidSeries(t *testing.T) {
	s, err := New([]PricePoint{
		{Date: day(0), Close: 100},
		{Date: day(1), Close: 110},
		{Date: day(2), Close: 99},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}

	rets := s.Returns()
	if len(rets) != 2 {
		t.Fatalf("Returns length = %d, want 2", len(rets))
	}
	if math.Abs(rets[0]-0.1) > 1e-12 {
		t.Errorf("returns[0] = %v, want 0.1", rets[0])
	}
	if math.Abs(rets[1]-(99.0/110.0-1)) > 1e-12 {
		t.Errorf("returns[1] = %v, want %v", rets[1], 99.0/110.0-1)
	}
}

func TestNewRejectsShortSeries(t *testing.T) {
	_, err := New([]PricePoint{{Date: day(0), Close: 100}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("New with 1 point: err = %v, want ErrInvalidInput", err)
	}
}

func TestNewRejectsNonIncreasingDates(t *testing.T) {
	cases := [][]PricePoint{
		{{Date: day(1), Close: 100}, {Date: day(0), Close: 101}}, // descending
		{{Date: day(0), Close: 100}, {Date: day(0), Close: 101}}, // duplicate
	}
	for _, points := range cases {
		if _, err := New(points); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("New(%v): err = %v, want ErrInvalidInput", points, err)
		}
	}
}

func TestNewRejectsBadPrices(t *testing.T) {
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := New([]PricePoint{
			{Date: day(0), Close: 100},
			{Date: day(1), Close: bad},
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("New with price %v: err = %v, want ErrInvalidInput", bad, err)
		}
	}
}
