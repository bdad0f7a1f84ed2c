package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// YahooClient fetches quotes and historical series from the public Yahoo
// Finance chart endpoint. It serves as the fallback provider when Alpha
// Vantage is unconfigured or errors.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ QuoteProvider = (*YahooClient)(nil)

// YahooConfig holds configuration for the Yahoo Finance client
type YahooConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewYahooClient creates a new Yahoo Finance chart client.
func NewYahooClient(config YahooConfig) *YahooClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://query1.finance.yahoo.com"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &YahooClient{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
				RegularMarketVol   int64   `json:"regularMarketVolume"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *YahooClient) fetchChart(ctx context.Context, symbol, rng, interval string) (*yahooChartResponse, error) {
	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", interval)

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "advisor-engine/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yahoo chart API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var chartResp yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chartResp); err != nil {
		return nil, fmt.Errorf("failed to decode yahoo response: %w", err)
	}

	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart API error: %s", chartResp.Chart.Error.Description)
	}

	if len(chartResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data found for %s", symbol)
	}

	return &chartResp, nil
}

// GetQuote fetches the latest quote for a symbol from the chart metadata.
func (c *YahooClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	chartResp, err := c.fetchChart(ctx, symbol, "1d", "5m")
	if err != nil {
		return nil, err
	}

	meta := chartResp.Chart.Result[0].Meta
	change := meta.RegularMarketPrice - meta.PreviousClose

	var changePercent float64
	if meta.PreviousClose != 0 {
		changePercent = (change / meta.PreviousClose) * 100
	}

	reported := meta.Symbol
	if reported == "" {
		reported = symbol
	}

	return &Quote{
		Symbol:        reported,
		Price:         meta.RegularMarketPrice,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        meta.RegularMarketVol,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// GetHistory fetches the closing-price series for a symbol over a period.
// The interval follows the period the same way the original advisor did:
// intraday granularity for short ranges, daily bars for anything longer.
func (c *YahooClient) GetHistory(ctx context.Context, symbol, period string) (*History, error) {
	interval := intervalForPeriod(period)

	chartResp, err := c.fetchChart(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}

	result := chartResp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no historical data found for %s", symbol)
	}

	closes := result.Indicators.Quote[0].Close
	history := &History{Symbol: symbol}

	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		history.Points = append(history.Points, HistoryPoint{
			Date:  time.Unix(ts, 0).UTC().Format(time.RFC3339),
			Price: *closes[i],
		})
	}

	if len(history.Points) == 0 {
		return nil, fmt.Errorf("no historical data found for %s", symbol)
	}

	return history, nil
}

func intervalForPeriod(period string) string {
	switch period {
	case "1d":
		return "5m"
	case "5d":
		return "15m"
	default:
		return "1d"
	}
}

// Health verifies the Yahoo chart endpoint responds.
func (c *YahooClient) Health(ctx context.Context) error {
	_, err := c.GetQuote(ctx, "SPY")
	if err != nil {
		return fmt.Errorf("yahoo finance health check failed: %w", err)
	}
	return nil
}
