package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/quantfolio/advisor-engine/internal/platform/cache"
)

// MockQuoteProvider is a mock for the QuoteProvider interface.
type MockQuoteProvider struct {
	mock.Mock
}

func (m *MockQuoteProvider) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Quote), args.Error(1)
}

func (m *MockQuoteProvider) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockHistoryProvider is a mock for the HistoryProvider interface.
type MockHistoryProvider struct {
	mock.Mock
}

func (m *MockHistoryProvider) GetHistory(ctx context.Context, symbol, period string) (*History, error) {
	args := m.Called(ctx, symbol, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*History), args.Error(1)
}

func spyQuote(changePercent float64) *Quote {
	return &Quote{
		Symbol:        "SPY",
		Price:         450.25,
		Change:        2.5,
		ChangePercent: changePercent,
		Volume:        50000000,
		Timestamp:     "2024-03-20T10:00:00Z",
	}
}

func TestGetQuote_PrimaryProvider(t *testing.T) {
	primary := new(MockQuoteProvider)
	fallback := new(MockQuoteProvider)

	primary.On("GetQuote", mock.Anything, "SPY").Return(spyQuote(0.56), nil)

	service := NewService(primary, fallback, nil, cache.NewMemory(), ServiceConfig{})

	quote, err := service.GetQuote(context.Background(), "SPY")

	assert.NoError(t, err)
	assert.Equal(t, 450.25, quote.Price)
	primary.AssertExpectations(t)
	fallback.AssertNotCalled(t, "GetQuote", mock.Anything, mock.Anything)
}

func TestGetQuote_FallsBackWhenPrimaryFails(t *testing.T) {
	primary := new(MockQuoteProvider)
	fallback := new(MockQuoteProvider)

	primary.On("GetQuote", mock.Anything, "SPY").Return(nil, assert.AnError)
	fallback.On("GetQuote", mock.Anything, "SPY").Return(spyQuote(0.56), nil)

	service := NewService(primary, fallback, nil, cache.NewMemory(), ServiceConfig{})

	quote, err := service.GetQuote(context.Background(), "SPY")

	assert.NoError(t, err)
	assert.Equal(t, "SPY", quote.Symbol)
	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
}

func TestGetQuote_NilPrimaryUsesFallback(t *testing.T) {
	fallback := new(MockQuoteProvider)
	fallback.On("GetQuote", mock.Anything, "SPY").Return(spyQuote(0.56), nil)

	service := NewService(nil, fallback, nil, cache.NewMemory(), ServiceConfig{})

	quote, err := service.GetQuote(context.Background(), "SPY")

	assert.NoError(t, err)
	assert.Equal(t, "SPY", quote.Symbol)
	fallback.AssertExpectations(t)
}

func TestGetQuote_ServedFromCache(t *testing.T) {
	fallback := new(MockQuoteProvider)
	fallback.On("GetQuote", mock.Anything, "SPY").Return(spyQuote(0.56), nil).Once()

	service := NewService(nil, fallback, nil, cache.NewMemory(), ServiceConfig{CacheTTL: time.Minute})

	first, err := service.GetQuote(context.Background(), "SPY")
	assert.NoError(t, err)

	second, err := service.GetQuote(context.Background(), "SPY")
	assert.NoError(t, err)

	assert.Equal(t, first.Price, second.Price)
	fallback.AssertNumberOfCalls(t, "GetQuote", 1)
}

func TestGetQuote_BothProvidersFail(t *testing.T) {
	primary := new(MockQuoteProvider)
	fallback := new(MockQuoteProvider)

	primary.On("GetQuote", mock.Anything, "SPY").Return(nil, assert.AnError)
	fallback.On("GetQuote", mock.Anything, "SPY").Return(nil, assert.AnError)

	service := NewService(primary, fallback, nil, cache.NewMemory(), ServiceConfig{})

	_, err := service.GetQuote(context.Background(), "SPY")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch quote for SPY")
}

func TestGetMarketSummary_Sentiment(t *testing.T) {
	tests := []struct {
		name          string
		changePercent float64
		sentiment     string
	}{
		{"strong rally", 1.5, "Strongly Positive"},
		{"mild gain", 0.3, "Slightly Positive"},
		{"mild loss", -0.5, "Slightly Negative"},
		{"selloff", -2.0, "Strongly Negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := new(MockQuoteProvider)
			fallback.On("GetQuote", mock.Anything, "SPY").Return(spyQuote(tt.changePercent), nil)

			service := NewService(nil, fallback, nil, cache.NewMemory(), ServiceConfig{})

			summary, err := service.GetMarketSummary(context.Background())

			assert.NoError(t, err)
			assert.Equal(t, tt.sentiment, summary.MarketSentiment)
			assert.NotNil(t, summary.Benchmark)
		})
	}
}

func TestGetMajorIndices_SkipsFailedSymbols(t *testing.T) {
	fallback := new(MockQuoteProvider)
	fallback.On("GetQuote", mock.Anything, "^DJI").Return(&Quote{Symbol: "^DJI", Price: 39000}, nil)
	fallback.On("GetQuote", mock.Anything, "^GSPC").Return(&Quote{Symbol: "^GSPC", Price: 5200}, nil)
	fallback.On("GetQuote", mock.Anything, "^IXIC").Return(nil, assert.AnError)
	fallback.On("GetQuote", mock.Anything, "^VIX").Return(&Quote{Symbol: "^VIX", Price: 14.2}, nil)
	fallback.On("GetQuote", mock.Anything, "GC=F").Return(nil, assert.AnError)
	fallback.On("GetQuote", mock.Anything, "CL=F").Return(nil, assert.AnError)

	service := NewService(nil, fallback, nil, cache.NewMemory(), ServiceConfig{})

	quotes, err := service.GetMajorIndices(context.Background())

	assert.NoError(t, err)
	assert.Len(t, quotes, 3)
	assert.Equal(t, "Dow", quotes[0].Name)
	assert.Equal(t, "S&P 500", quotes[1].Name)
	assert.Equal(t, "VIX", quotes[2].Name)
}

func TestGetHistory_DefaultsPeriod(t *testing.T) {
	history := new(MockHistoryProvider)
	history.On("GetHistory", mock.Anything, "SPY", "1d").Return(&History{
		Symbol: "SPY",
		Points: []HistoryPoint{{Date: "2024-03-20T10:00:00Z", Price: 450.25}},
	}, nil)

	service := NewService(nil, new(MockQuoteProvider), history, cache.NewMemory(), ServiceConfig{})

	result, err := service.GetHistory(context.Background(), "SPY", "")

	assert.NoError(t, err)
	assert.Len(t, result.Points, 1)
	history.AssertExpectations(t)
}
