package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

const alphaVantageBaseURL = "https://www.alphavantage.co/query"

// AlphaVantageProvider fetches quotes via the Alpha Vantage daily series API
type AlphaVantageProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewAlphaVantageProvider creates an Alpha Vantage provider adapter
func NewAlphaVantageProvider(apiKey string, timeout time.Duration) *AlphaVantageProvider {
	return &AlphaVantageProvider{
		apiKey:  apiKey,
		baseURL: alphaVantageBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// Name returns the provider name used in breaker state and quote metadata
func (p *AlphaVantageProvider) Name() string {
	return "alphavantage"
}

type alphaVantageDailyResponse struct {
	TimeSeries map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
}

type alphaVantageOverviewResponse struct {
	MarketCapitalization string `json:"MarketCapitalization"`
}

// FetchQuote fetches the daily close series and derives the quote snapshot
func (p *AlphaVantageProvider) FetchQuote(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("alpha vantage not configured")
	}

	url := fmt.Sprintf("%s?function=TIME_SERIES_DAILY&symbol=%s&outputsize=compact&apikey=%s",
		p.baseURL, symbol, p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var daily alphaVantageDailyResponse
	if err := json.Unmarshal(body, &daily); err != nil {
		return nil, fmt.Errorf("failed to parse alpha vantage response: %w", err)
	}
	if daily.ErrorMessage != "" {
		return nil, fmt.Errorf("alpha vantage error: %s", daily.ErrorMessage)
	}
	if daily.Note != "" {
		// Rate limit notes come back as 200s with no series
		return nil, fmt.Errorf("alpha vantage throttled: %s", daily.Note)
	}
	if len(daily.TimeSeries) == 0 {
		return nil, fmt.Errorf("no data returned for symbol %s", symbol)
	}

	series := make([]dailyClose, 0, len(daily.TimeSeries))
	for date, bar := range daily.TimeSeries {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		close, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil {
			continue
		}
		series = append(series, dailyClose{Date: d, Close: close})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no parsable closes for symbol %s", symbol)
	}

	q := quoteFromSeries(symbol, p.Name(), series, p.now())
	q.MarketCap = p.fetchMarketCap(ctx, symbol)
	return q, nil
}

// fetchMarketCap reads the company overview for its market
// capitalization. Best-effort: a throttled or missing overview leaves
// the field zero, it never fails the quote.
func (p *AlphaVantageProvider) fetchMarketCap(ctx context.Context, symbol string) int64 {
	url := fmt.Sprintf("%s?function=OVERVIEW&symbol=%s&apikey=%s", p.baseURL, symbol, p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0
	}

	var overview alphaVantageOverviewResponse
	if err := json.Unmarshal(body, &overview); err != nil {
		return 0
	}
	marketCap, err := strconv.ParseInt(overview.MarketCapitalization, 10, 64)
	if err != nil {
		return 0
	}
	return marketCap
}
