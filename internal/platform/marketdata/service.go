package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/quantfolio/advisor-engine/internal/platform/cache"
)

// Quote is the normalized quote shape shared by all providers.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	Timestamp     string  `json:"timestamp"`
}

// History is a closing-price series for one symbol.
type History struct {
	Symbol string         `json:"symbol"`
	Points []HistoryPoint `json:"history"`
}

type HistoryPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// IndexQuote is a named quote for a major market index.
type IndexQuote struct {
	Name string `json:"name"`
	Quote
}

// Summary aggregates the benchmark quote with a coarse sentiment reading.
type Summary struct {
	Timestamp       string `json:"timestamp"`
	Benchmark       *Quote `json:"benchmark"`
	MarketSentiment string `json:"market_sentiment"`
}

// QuoteProvider fetches the latest quote for a symbol.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	Health(ctx context.Context) error
}

// HistoryProvider fetches a historical price series.
type HistoryProvider interface {
	GetHistory(ctx context.Context, symbol, period string) (*History, error)
}

// The benchmark the sentiment reading is derived from.
const benchmarkSymbol = "SPY"

// Major indices tracked by the indices endpoint, in display order.
var majorIndices = []struct {
	Name   string
	Symbol string
}{
	{"Dow", "^DJI"},
	{"S&P 500", "^GSPC"},
	{"Nasdaq", "^IXIC"},
	{"VIX", "^VIX"},
	{"Gold", "GC=F"},
	{"Oil", "CL=F"},
}

// Service combines the primary and fallback providers behind a TTL cache.
// primary may be nil when Alpha Vantage is unconfigured; every quote then
// comes from the fallback, matching the original service's behavior.
type Service struct {
	primary  QuoteProvider
	fallback QuoteProvider
	history  HistoryProvider
	cache    cache.Cache
	cacheTTL time.Duration
}

// ServiceConfig holds quote service configuration
type ServiceConfig struct {
	CacheTTL time.Duration
}

// NewService creates a quote service over the given providers.
func NewService(primary, fallback QuoteProvider, history HistoryProvider, quoteCache cache.Cache, config ServiceConfig) *Service {
	if config.CacheTTL == 0 {
		config.CacheTTL = time.Hour
	}

	return &Service{
		primary:  primary,
		fallback: fallback,
		history:  history,
		cache:    quoteCache,
		cacheTTL: config.CacheTTL,
	}
}

// GetQuote returns the latest quote for a symbol, served from cache when
// fresh, the primary provider when configured, and the fallback otherwise.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	cacheKey := "quote:" + symbol

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			var quote Quote
			if err := json.Unmarshal([]byte(cached), &quote); err == nil {
				return &quote, nil
			}
		}
	}

	quote, err := s.fetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(quote); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(payload), s.cacheTTL); err != nil {
				log.Printf("Failed to cache quote for %s: %v", symbol, err)
			}
		}
	}

	return quote, nil
}

func (s *Service) fetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	if s.primary != nil {
		quote, err := s.primary.GetQuote(ctx, symbol)
		if err == nil {
			return quote, nil
		}
		log.Printf("Primary market data provider failed for %s, falling back: %v", symbol, err)
	}

	quote, err := s.fallback.GetQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	return quote, nil
}

// GetMarketSummary returns the benchmark quote with a sentiment reading.
func (s *Service) GetMarketSummary(ctx context.Context) (*Summary, error) {
	quote, err := s.GetQuote(ctx, benchmarkSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to build market summary: %w", err)
	}

	return &Summary{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Benchmark:       quote,
		MarketSentiment: sentimentFor(quote.ChangePercent),
	}, nil
}

func sentimentFor(changePercent float64) string {
	switch {
	case changePercent > 1:
		return "Strongly Positive"
	case changePercent > 0:
		return "Slightly Positive"
	case changePercent > -1:
		return "Slightly Negative"
	default:
		return "Strongly Negative"
	}
}

// GetMajorIndices returns quotes for the tracked indices, VIX, Gold and Oil.
// Symbols that fail to resolve are skipped rather than failing the batch.
func (s *Service) GetMajorIndices(ctx context.Context) ([]IndexQuote, error) {
	var quotes []IndexQuote

	for _, index := range majorIndices {
		quote, err := s.GetQuote(ctx, index.Symbol)
		if err != nil {
			log.Printf("Skipping index %s (%s): %v", index.Name, index.Symbol, err)
			continue
		}
		quotes = append(quotes, IndexQuote{Name: index.Name, Quote: *quote})
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("no index data available")
	}

	return quotes, nil
}

// GetHistory returns the closing-price series for a symbol over a period.
func (s *Service) GetHistory(ctx context.Context, symbol, period string) (*History, error) {
	if period == "" {
		period = "1d"
	}

	history, err := s.history.GetHistory(ctx, symbol, period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}

	return history, nil
}

// Health verifies at least one quote provider is reachable.
func (s *Service) Health(ctx context.Context) error {
	if s.primary != nil {
		if err := s.primary.Health(ctx); err == nil {
			return nil
		}
	}

	if err := s.fallback.Health(ctx); err != nil {
		return fmt.Errorf("market data providers unavailable: %w", err)
	}

	return nil
}
