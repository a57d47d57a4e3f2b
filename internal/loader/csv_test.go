package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quantsweep/internal/series"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp csv: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTemp(t, `Date,Open,Adj Close
2024-01-02,99.5,100.0
2024-01-03,100.2,101.5
2024-01-04,101.0,99.75
`)

	s, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	closes := s.Closes()
	if closes[0] != 100.0 || closes[1] != 101.5 || closes[2] != 99.75 {
		t.Errorf("Closes = %v, want [100 101.5 99.75]", closes)
	}
}

func TestLoadCSVSortsReverseChronological(t *testing.T) {
	path := writeTemp(t, `Date,Adj Close
2024-01-04,102
2024-01-02,100
2024-01-03,101
`)

	s, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	closes := s.Closes()
	if closes[0] != 100 || closes[2] != 102 {
		t.Errorf("Closes = %v, want sorted [100 101 102]", closes)
	}
}

func TestLoadCSVFallsBackToClose(t *testing.T) {
	path := writeTemp(t, `Date,Close
2024-01-02,50
2024-01-03,51
`)

	s, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if s.Closes()[1] != 51 {
		t.Errorf("Closes[1] = %v, want 51", s.Closes()[1])
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := writeTemp(t, `Date,Volume
2024-01-02,1000
`)
	if _, err := LoadCSV(path); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestLoadCSVBadRows(t *testing.T) {
	cases := []struct {
		name, content string
	}{
		{"bad date", "Date,Adj Close\nnot-a-date,100\n2024-01-03,101\n"},
		{"bad price", "Date,Adj Close\n2024-01-02,abc\n2024-01-03,101\n"},
		{"duplicate dates", "Date,Adj Close\n2024-01-02,100\n2024-01-02,101\n"},
		{"single row", "Date,Adj Close\n2024-01-02,100\n"},
		{"extra fields mid-file", "Date,Adj Close\n2024-01-02,100\n2024-01-03,101\n2024-01-04,102,bogus\n2024-01-05,103\n2024-01-08,104\n"},
		{"bare quote mid-file", "Date,Adj Close\n2024-01-02,100\n2024-01-03,10\"1\n2024-01-04,102\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTemp(t, tc.content)
			if _, err := LoadCSV(path); !errors.Is(err, series.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("LoadCSV on missing file returned nil error")
	}
}
