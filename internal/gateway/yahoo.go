package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

const (
	yahooBaseURL  = "https://query1.finance.yahoo.com/v8/finance/chart"
	yahooQuoteURL = "https://query1.finance.yahoo.com/v7/finance/quote"
)

// YahooProvider fetches quotes via the Yahoo Finance chart API. It needs
// no credentials, which makes it the natural fallback provider.
type YahooProvider struct {
	baseURL    string
	quoteURL   string
	httpClient *http.Client
	now        func() time.Time
}

// NewYahooProvider creates a Yahoo Finance provider adapter
func NewYahooProvider(timeout time.Duration) *YahooProvider {
	return &YahooProvider{
		baseURL:  yahooBaseURL,
		quoteURL: yahooQuoteURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// Name returns the provider name used in breaker state and quote metadata
func (p *YahooProvider) Name() string {
	return "yahoo"
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchQuote fetches three months of daily closes and derives the quote
func (p *YahooProvider) FetchQuote(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&range=3mo", p.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "portfolio-advisor/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo finance returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var chart yahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("failed to parse yahoo response: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data returned for symbol %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no close series for symbol %s", symbol)
	}
	closes := result.Indicators.Quote[0].Close

	series := make([]dailyClose, 0, len(closes))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] <= 0 {
			continue
		}
		series = append(series, dailyClose{
			Date:  time.Unix(ts, 0).UTC(),
			Close: closes[i],
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no parsable closes for symbol %s", symbol)
	}

	quote := quoteFromSeries(symbol, p.Name(), series, p.now())
	if result.Meta.RegularMarketPrice > 0 {
		quote.CurrentPrice = result.Meta.RegularMarketPrice
	}
	quote.MarketCap = p.fetchMarketCap(ctx, symbol)
	return quote, nil
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			MarketCap int64 `json:"marketCap"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// fetchMarketCap reads the quote endpoint for market capitalization.
// Best-effort: any failure leaves the field zero, it never fails the
// chart-derived quote.
func (p *YahooProvider) fetchMarketCap(ctx context.Context, symbol string) int64 {
	url := fmt.Sprintf("%s?symbols=%s&fields=marketCap", p.quoteURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0
	}
	req.Header.Set("User-Agent", "portfolio-advisor/1.0")

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

	var out yahooQuoteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0
	}
	if len(out.QuoteResponse.Result) == 0 {
		return 0
	}
	return out.QuoteResponse.Result[0].MarketCap
}
