// Package loader reads historical daily price data from CSV files into a
// validated PriceSeries.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"quantsweep/internal/series"
)

// dateLayouts are tried in order when parsing the Date column.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006"}

// LoadCSV reads a CSV file with a header row containing a "Date" column and
// an "Adj Close" column (falling back to "Close" when no adjusted column
// exists). Rows are sorted chronologically before validation, so files in
// reverse order load fine; duplicate dates still fail.
func LoadCSV(path string) (*series.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header of %s: %v", series.ErrInvalidInput, path, err)
	}

	dateCol, closeCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			dateCol = i
		case "adj close", "adj_close", "adjclose":
			closeCol = i
		case "close":
			if closeCol < 0 {
				closeCol = i
			}
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("%w: %s is missing a Date or Adj Close column", series.ErrInvalidInput, path)
	}

	var points []series.PricePoint
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", series.ErrInvalidInput, path, line, err)
		}
		if dateCol >= len(record) || closeCol >= len(record) {
			return nil, fmt.Errorf("%w: %s line %d has too few columns", series.ErrInvalidInput, path, line)
		}

		date, err := parseDate(record[dateCol])
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", series.ErrInvalidInput, path, line, err)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[closeCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: bad price %q", series.ErrInvalidInput, path, line, record[closeCol])
		}
		points = append(points, series.PricePoint{Date: date, Close: price})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return series.New(points)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
