package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantfolio/advisor-engine/internal/platform/marketdata"
)

// MarketDataService is the market data surface the agent depends on.
type MarketDataService interface {
	GetMarketSummary(ctx context.Context) (*marketdata.Summary, error)
	GetMajorIndices(ctx context.Context) ([]marketdata.IndexQuote, error)
}

// MarketAnalysis is a point-in-time read of overall market conditions.
type MarketAnalysis struct {
	CurrentPrice       float64 `json:"current_price"`
	DailyChange        float64 `json:"daily_change"`
	DailyChangePercent float64 `json:"daily_change_percent"`
	Volume             int64   `json:"volume"`
	MarketSentiment    string  `json:"market_sentiment"`
	Timestamp          string  `json:"timestamp"`
}

// MarketAgent reads current market conditions from the market data service.
type MarketAgent struct {
	marketData MarketDataService
}

// NewMarketAgent creates a market analysis agent.
func NewMarketAgent(marketData MarketDataService) *MarketAgent {
	return &MarketAgent{marketData: marketData}
}

// Analyze fetches the benchmark market summary and converts it into an
// analysis snapshot.
func (a *MarketAgent) Analyze(ctx context.Context) (*MarketAnalysis, error) {
	summary, err := a.marketData.GetMarketSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("market analysis failed: %w", err)
	}

	quote := summary.Benchmark
	return &MarketAnalysis{
		CurrentPrice:       quote.Price,
		DailyChange:        quote.Change,
		DailyChangePercent: quote.ChangePercent,
		Volume:             quote.Volume,
		MarketSentiment:    summary.MarketSentiment,
		Timestamp:          summary.Timestamp,
	}, nil
}

// Summary renders the analysis as readable text for chat responses.
func (m *MarketAnalysis) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Benchmark Price: $%.2f\n", m.CurrentPrice))
	sb.WriteString(fmt.Sprintf("Daily Change: %.2f (%.2f%%)\n", m.DailyChange, m.DailyChangePercent))
	sb.WriteString(fmt.Sprintf("Volume: %d\n", m.Volume))
	sb.WriteString(fmt.Sprintf("Market Sentiment: %s\n", m.MarketSentiment))
	return sb.String()
}
