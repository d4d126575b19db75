package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	massive "github.com/massive-com/client-go/v2/rest"
	"github.com/massive-com/client-go/v2/rest/models"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// massiveDataProvider implements Provider with the Massive REST client.
type massiveDataProvider struct {
	quoteSource

	client *massive.Client
}

// NewMassiveDataProvider constructs a Massive-backed provider.
func NewMassiveDataProvider(apiKey string) *massiveDataProvider {
	m := &massiveDataProvider{client: massive.New(apiKey)}
	m.quoteSource = quoteSource{name: "massive", bars: m.GetBars}
	return m
}

// GetBars retrieves adjusted daily aggregates, oldest first.
func (m *massiveDataProvider) GetBars(ctx context.Context, ticker string, fromDate, toDate time.Time) ([]Bar, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	logger.Debugf("massive: fetching bars %s from=%s to=%s", ticker, fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"))

	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(fromDate),
		To:         models.Millis(toDate),
	}.WithOrder(models.Asc).WithAdjusted(true)

	var out []Bar
	iter := m.client.ListAggs(ctx, params)
	for iter.Next() {
		agg := iter.Item()
		out = append(out, Bar{
			Date:  time.Time(agg.Timestamp).UTC(),
			Open:  agg.Open,
			High:  agg.High,
			Low:   agg.Low,
			Close: agg.Close,
			Vol:   agg.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		logger.Errorf("massive: aggregates for %s failed: %v", ticker, err)
		return nil, fmt.Errorf("massive aggregates for %s: %w", ticker, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: massive returned no bars for %s", ErrNoData, ticker)
	}

	logger.Tracef("massive: bars received: %d records", len(out))
	return out, nil
}
