package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantfolio/advisor-engine/internal/testenv"
)

func TestMain(m *testing.M) {
	testenv.Setup()
	os.Exit(m.Run())
}

const globalQuotePayload = `{
	"Global Quote": {
		"01. symbol": "SPY",
		"02. open": "447.75",
		"03. high": "451.00",
		"04. low": "447.10",
		"05. price": "450.25",
		"06. volume": "50000000",
		"07. latest trading day": "2024-03-20",
		"08. previous close": "447.75",
		"09. change": "2.50",
		"10. change percent": "0.5600%"
	}
}`

func TestNewAlphaVantageClient_RequiresAPIKey(t *testing.T) {
	_, err := NewAlphaVantageClient(AlphaVantageConfig{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestAlphaVantageGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "SPY", r.URL.Query().Get("symbol"))
		assert.Equal(t, testenv.PlaceholderKey, r.URL.Query().Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(globalQuotePayload))
	}))
	defer server.Close()

	client, err := NewAlphaVantageClient(AlphaVantageConfig{
		APIKey:  testenv.PlaceholderKey,
		BaseURL: server.URL,
	})
	assert.NoError(t, err)

	quote, err := client.GetQuote(context.Background(), "SPY")

	assert.NoError(t, err)
	assert.Equal(t, "SPY", quote.Symbol)
	assert.Equal(t, 450.25, quote.Price)
	assert.Equal(t, 2.50, quote.Change)
	assert.Equal(t, 0.56, quote.ChangePercent)
	assert.Equal(t, int64(50000000), quote.Volume)
	assert.NotEmpty(t, quote.Timestamp)
}

func TestAlphaVantageGetQuote_RateLimitNote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer server.Close()

	client, err := NewAlphaVantageClient(AlphaVantageConfig{
		APIKey:  testenv.PlaceholderKey,
		BaseURL: server.URL,
	})
	assert.NoError(t, err)

	_, err = client.GetQuote(context.Background(), "SPY")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestAlphaVantageGetQuote_EmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Global Quote": {}}`))
	}))
	defer server.Close()

	client, err := NewAlphaVantageClient(AlphaVantageConfig{
		APIKey:  testenv.PlaceholderKey,
		BaseURL: server.URL,
	})
	assert.NoError(t, err)

	_, err = client.GetQuote(context.Background(), "NOPE")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no quote data")
}

func TestAlphaVantageGetQuote_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewAlphaVantageClient(AlphaVantageConfig{
		APIKey:  testenv.PlaceholderKey,
		BaseURL: server.URL,
	})
	assert.NoError(t, err)

	_, err = client.GetQuote(context.Background(), "SPY")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestAlphaVantageGetQuote_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewAlphaVantageClient(AlphaVantageConfig{
		APIKey:  testenv.PlaceholderKey,
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	})
	assert.NoError(t, err)

	_, err = client.GetQuote(context.Background(), "SPY")

	assert.Error(t, err)
}

const yahooChartPayload = `{
	"chart": {
		"result": [{
			"meta": {
				"symbol": "SPY",
				"regularMarketPrice": 450.25,
				"chartPreviousClose": 447.75,
				"regularMarketVolume": 50000000
			},
			"timestamp": [1710921600, 1710921900, 1710922200],
			"indicators": {
				"quote": [{
					"close": [449.10, null, 450.25]
				}]
			}
		}],
		"error": null
	}
}`

func TestYahooGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/SPY", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		assert.Equal(t, "5m", r.URL.Query().Get("interval"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(yahooChartPayload))
	}))
	defer server.Close()

	client := NewYahooClient(YahooConfig{BaseURL: server.URL})

	quote, err := client.GetQuote(context.Background(), "SPY")

	assert.NoError(t, err)
	assert.Equal(t, "SPY", quote.Symbol)
	assert.Equal(t, 450.25, quote.Price)
	assert.InDelta(t, 2.50, quote.Change, 0.0001)
	assert.InDelta(t, 0.5584, quote.ChangePercent, 0.001)
	assert.Equal(t, int64(50000000), quote.Volume)
}

func TestYahooGetHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/SPY", r.URL.Path)
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(yahooChartPayload))
	}))
	defer server.Close()

	client := NewYahooClient(YahooConfig{BaseURL: server.URL})

	history, err := client.GetHistory(context.Background(), "SPY", "1mo")

	assert.NoError(t, err)
	assert.Equal(t, "SPY", history.Symbol)
	// the null close is skipped
	assert.Len(t, history.Points, 2)
	assert.Equal(t, 449.10, history.Points[0].Price)
	assert.Equal(t, 450.25, history.Points[1].Price)
}

func TestYahooGetHistory_ChartError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer server.Close()

	client := NewYahooClient(YahooConfig{BaseURL: server.URL})

	_, err := client.GetHistory(context.Background(), "NOPE", "1d")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "symbol may be delisted")
}

func TestIntervalForPeriod(t *testing.T) {
	assert.Equal(t, "5m", intervalForPeriod("1d"))
	assert.Equal(t, "15m", intervalForPeriod("5d"))
	assert.Equal(t, "1d", intervalForPeriod("1mo"))
	assert.Equal(t, "1d", intervalForPeriod("1y"))
	assert.Equal(t, "1d", intervalForPeriod("max"))
}
