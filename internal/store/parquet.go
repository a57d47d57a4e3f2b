package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"quantsweep/internal/series"
)

// Compile-time interface check.
var _ PriceStore = (*ParquetStore)(nil)

// ParquetStore implements PriceStore using Parquet files on disk, one file
// per symbol and year.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// CloseRecord is the on-disk Parquet schema for daily adjusted closes.
type CloseRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	AdjClose  float64 `parquet:"adj_close"`
}

// WriteCloses writes daily close points grouped by year under:
//
//	<DataDir>/daily/<SYMBOL>/<YYYY>.parquet
//
// Existing records for the same dates are replaced; everything else in the
// touched files is preserved.
func (s *ParquetStore) WriteCloses(_ context.Context, symbol string, points []series.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	symbol = strings.ToUpper(symbol)

	groups := make(map[int][]CloseRecord)
	for _, p := range points {
		y := p.Date.Year()
		groups[y] = append(groups[y], CloseRecord{
			Symbol:    symbol,
			Timestamp: p.Date.UnixMilli(),
			AdjClose:  p.Close,
		})
	}

	for year, records := range groups {
		path := s.closePath(symbol, year)

		existing, _ := readParquetFile[CloseRecord](path)
		merged := mergeCloseRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing closes for %s/%d: %w", symbol, year, err)
		}
	}
	return nil
}

// ReadSeries reads daily closes for the symbol within [start, end] and
// builds a validated PriceSeries from them.
func (s *ParquetStore) ReadSeries(_ context.Context, symbol string, start, end time.Time) (*series.PriceSeries, error) {
	symbol = strings.ToUpper(symbol)

	var points []series.PricePoint
	for year := start.Year(); year <= end.Year(); year++ {
		records, err := readParquetFile[CloseRecord](s.closePath(symbol, year))
		if err != nil {
			// No file for this year.
			continue
		}
		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp).UTC()
			if !ts.Before(start) && !ts.After(end) {
				points = append(points, series.PricePoint{Date: ts, Close: r.AdjClose})
			}
		}
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no stored prices for %s in [%s, %s]",
			series.ErrInvalidInput, symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return series.New(points)
}

// ListSymbols lists all symbols that have stored price data.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, "daily"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// closePath returns the Parquet file path for one symbol-year.
func (s *ParquetStore) closePath(symbol string, year int) string {
	return filepath.Join(s.DataDir, "daily", symbol, fmt.Sprintf("%d.parquet", year))
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}

// mergeCloseRecords deduplicates by timestamp, preferring incoming records,
// and returns the union sorted by timestamp.
func mergeCloseRecords(existing, incoming []CloseRecord) []CloseRecord {
	seen := make(map[int64]CloseRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]CloseRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
