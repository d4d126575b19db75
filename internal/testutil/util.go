// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/contactkeval/option-pricer/internal/data"
)

var Update = flag.Bool(
	"update",
	false,
	"update golden files",
)

//
// --- Stub market data ---
//

// StubProvider is a data.Provider returning canned values.
type StubProvider struct {
	Spot       float64
	Volatility float64
	Bars       []data.Bar

	// Err, when set, is returned by every method.
	Err error

	mu      sync.Mutex
	calls   int
	lookups []int
}

// Secondary always returns nil.
func (s *StubProvider) Secondary() data.Provider { return nil }

func (s *StubProvider) GetBars(ctx context.Context, ticker string, fromDate, toDate time.Time) ([]data.Bar, error) {
	s.record(0)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Bars, nil
}

func (s *StubProvider) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	s.record(0)
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Spot, nil
}

func (s *StubProvider) GetHistoricalVolatility(ctx context.Context, ticker string, lookbackDays int) (float64, error) {
	s.record(lookbackDays)
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Volatility, nil
}

// Calls returns the number of provider calls made so far.
func (s *StubProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Lookbacks returns the lookback windows requested for volatility.
func (s *StubProvider) Lookbacks() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.lookups...)
}

func (s *StubProvider) record(lookback int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if lookback > 0 {
		s.lookups = append(s.lookups, lookback)
	}
}

//
// --- Golden file helpers ---
//

func writeGolden(t *testing.T, name string, b []byte) {
	t.Helper()
	path := filepath.Join("testdata", name+".golden")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create testdata dir: %v", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("failed to write golden file: %v", err)
	}
}

func loadGolden(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name+".golden")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file: %v", err)
	}
	return b
}

// CompareWithGolden marshals v as indented JSON and compares it with
// testdata/<name>.golden. Run tests with -update to rewrite the file.
func CompareWithGolden(t *testing.T, name string, v any) {
	t.Helper()

	actual, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal actual JSON: %v", err)
	}
	CompareBytesWithGolden(t, name, actual)
}

// CompareBytesWithGolden compares raw output with testdata/<name>.golden.
func CompareBytesWithGolden(t *testing.T, name string, actual []byte) {
	t.Helper()

	if *Update {
		writeGolden(t, name, actual)
		return
	}

	expected := loadGolden(t, name)
	if !bytes.Equal(expected, actual) {
		t.Fatalf("golden mismatch for %s\nexpected:\n%s\nactual:\n%s",
			name, string(expected), string(actual))
	}
}
