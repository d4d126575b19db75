package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// DefaultPolygonURL is the production aggregates endpoint root.
const DefaultPolygonURL = "https://api.polygon.io"

// maxRateLimitRetries bounds how often a 429 response is retried.
const maxRateLimitRetries = 3

// polygonDataProvider implements Provider against the Polygon.io REST
// aggregates endpoint using plain HTTP.
type polygonDataProvider struct {
	quoteSource

	// APIKey used for authenticating requests with Polygon.
	APIKey string

	// Client is the HTTP client used to make API requests.
	Client *http.Client

	// BaseURL is the root endpoint, overridable for tests.
	BaseURL string

	// rateLimitWait returns how long to back off after a 429.
	rateLimitWait func() time.Duration
}

// NewPolygonDataProvider constructs a Polygon-backed provider.
func NewPolygonDataProvider(apiKey string) *polygonDataProvider {
	p := &polygonDataProvider{
		APIKey:        apiKey,
		Client:        &http.Client{Timeout: 30 * time.Second},
		BaseURL:       DefaultPolygonURL,
		rateLimitWait: untilNextMinute,
	}
	p.quoteSource = quoteSource{name: "polygon", bars: p.GetBars}
	return p
}

// polygonAggsResp is the aggregates payload.
type polygonAggsResp struct {
	Ticker       string `json:"ticker"`
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Message      string `json:"message"`
	Results      []struct {
		Open      float64 `json:"o"`
		Close     float64 `json:"c"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Volume    float64 `json:"v"`
		Timestamp int64   `json:"t"` // epoch millis
	} `json:"results"`
}

// GetBars retrieves daily bars for ticker between fromDate and toDate.
func (p *polygonDataProvider) GetBars(ctx context.Context, ticker string, fromDate, toDate time.Time) ([]Bar, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	logger.Debugf("polygon: fetching bars %s from=%s to=%s", ticker, fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"))

	reqURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?%s",
		p.BaseURL,
		url.PathEscape(ticker),
		fromDate.Format("2006-01-02"),
		toDate.Format("2006-01-02"),
		url.Values{
			"adjusted": {"true"},
			"sort":     {"asc"},
			"limit":    {"50000"},
			"apiKey":   {p.APIKey},
		}.Encode(),
	)

	resp, err := p.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("polygon api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading polygon response: %w", err)
	}

	var aggs polygonAggsResp
	if resp.StatusCode != http.StatusOK {
		_ = json.Unmarshal(body, &aggs)
		logger.Errorf("polygon aggs API error status=%d message=%s", resp.StatusCode, aggs.Message)
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: polygon has no bars for %s", ErrNoData, ticker)
		}
		return nil, fmt.Errorf("polygon daily bars status=%d: %s", resp.StatusCode, aggs.Message)
	}

	if err := json.Unmarshal(body, &aggs); err != nil {
		return nil, fmt.Errorf("parsing polygon response: %w", err)
	}
	if len(aggs.Results) == 0 {
		return nil, fmt.Errorf("%w: polygon returned no bars for %s", ErrNoData, ticker)
	}

	logger.Tracef("polygon: bars received: %d records", len(aggs.Results))

	out := make([]Bar, 0, len(aggs.Results))
	for _, r := range aggs.Results {
		out = append(out, Bar{
			Date:  time.UnixMilli(r.Timestamp).UTC(),
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
			Vol:   r.Volume,
		})
	}
	return out, nil
}

// get issues a GET request, sleeping through per-minute rate limits.
func (p *polygonDataProvider) get(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := p.Client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRateLimitRetries {
			return resp, nil
		}
		resp.Body.Close()

		wait := p.rateLimitWait()
		logger.Infof("polygon: rate limit hit, sleeping for %s", wait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func untilNextMinute() time.Duration {
	now := time.Now()
	return now.Truncate(time.Minute).Add(time.Minute).Sub(now)
}
