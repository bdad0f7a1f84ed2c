package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// AlphaVantageClient fetches quotes from the Alpha Vantage GLOBAL_QUOTE
// endpoint.
type AlphaVantageClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ QuoteProvider = (*AlphaVantageClient)(nil)

// AlphaVantageConfig holds configuration for the Alpha Vantage client
type AlphaVantageConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewAlphaVantageClient creates a new Alpha Vantage client instance
func NewAlphaVantageClient(config AlphaVantageConfig) (*AlphaVantageClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Alpha Vantage API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://www.alphavantage.co/query"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &AlphaVantageClient{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Alpha Vantage keys its quote payload by numbered field names.
type alphaVantageQuoteResponse struct {
	GlobalQuote map[string]string `json:"Global Quote"`
	Note        string            `json:"Note,omitempty"`
}

// GetQuote fetches the latest quote for a symbol.
func (c *AlphaVantageClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("alpha vantage API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var quoteResp alphaVantageQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
		return nil, fmt.Errorf("failed to decode alpha vantage response: %w", err)
	}

	// Rate-limit notices arrive as a 200 with a Note instead of a quote.
	if quoteResp.Note != "" {
		return nil, fmt.Errorf("alpha vantage rate limit reached: %s", quoteResp.Note)
	}

	if len(quoteResp.GlobalQuote) == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	return parseGlobalQuote(symbol, quoteResp.GlobalQuote)
}

func parseGlobalQuote(symbol string, quote map[string]string) (*Quote, error) {
	price, err := strconv.ParseFloat(quote["05. price"], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price for %s: %w", symbol, err)
	}

	change, err := strconv.ParseFloat(quote["09. change"], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid change for %s: %w", symbol, err)
	}

	changePercent, err := strconv.ParseFloat(strings.TrimSuffix(quote["10. change percent"], "%"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid change percent for %s: %w", symbol, err)
	}

	volume, err := strconv.ParseInt(quote["06. volume"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid volume for %s: %w", symbol, err)
	}

	reported := quote["01. symbol"]
	if reported == "" {
		reported = symbol
	}

	return &Quote{
		Symbol:        reported,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        volume,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Health verifies the Alpha Vantage endpoint responds.
func (c *AlphaVantageClient) Health(ctx context.Context) error {
	_, err := c.GetQuote(ctx, "SPY")
	if err != nil {
		return fmt.Errorf("alpha vantage health check failed: %w", err)
	}
	return nil
}
