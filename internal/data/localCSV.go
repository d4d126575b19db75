package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// csvBar is one row of a <TICKER>.csv daily bar file.
type csvBar struct {
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// localFileDataProvider implements Provider from CSV files in a directory,
// one file per ticker.
type localFileDataProvider struct {
	quoteSource

	dir string
}

// NewLocalFileDataProvider convenience constructor.
func NewLocalFileDataProvider(dir string, secondary Provider) *localFileDataProvider {
	l := &localFileDataProvider{dir: dir}
	l.quoteSource = quoteSource{name: "csv", bars: l.GetBars, secondary: secondary}
	return l
}

// GetBars reads <dir>/<TICKER>.csv and returns the rows dated within
// [fromDate, toDate], oldest first.
func (l *localFileDataProvider) GetBars(ctx context.Context, ticker string, fromDate, toDate time.Time) ([]Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(l.dir, strings.ToUpper(strings.TrimSpace(ticker))+".csv")
	logger.Debugf("csv: reading bars from %s", path)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no bar file for %s in %s", ErrNoData, ticker, l.dir)
		}
		return nil, fmt.Errorf("open bar file: %w", err)
	}
	defer f.Close()

	var rows []*csvBar
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	from := fromDate.UTC().Truncate(24 * time.Hour)
	out := make([]Bar, 0, len(rows))
	for _, row := range rows {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(row.Date))
		if err != nil {
			return nil, fmt.Errorf("parse %s: bad date %q: %w", path, row.Date, err)
		}
		if d.Before(from) || d.After(toDate) {
			continue
		}
		out = append(out, Bar{Date: d, Open: row.Open, High: row.High, Low: row.Low, Close: row.Close, Vol: row.Volume})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s between %s and %s", ErrNoData, ticker,
			fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"))
	}
	sortBars(out)

	logger.Tracef("csv: %d bars for %s", len(out), ticker)
	return out, nil
}
