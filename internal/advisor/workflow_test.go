package advisor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tmc/langchaingo/llms"

	"github.com/quantfolio/advisor-engine/internal/platform/marketdata"
	"github.com/quantfolio/advisor-engine/internal/store"
)

type mockMarketData struct {
	mock.Mock
}

func (m *mockMarketData) GetMarketSummary(ctx context.Context) (*marketdata.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketdata.Summary), args.Error(1)
}

func (m *mockMarketData) GetMajorIndices(ctx context.Context) ([]marketdata.IndexQuote, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketdata.IndexQuote), args.Error(1)
}

// scriptedModel returns a fixed response and records the last prompt it saw.
type scriptedModel struct {
	response   string
	err        error
	lastPrompt string
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.lastPrompt = text.Text
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

type fakeMemory struct {
	remembered []string
	recalled   []string
}

func (f *fakeMemory) Remember(ctx context.Context, report string, metadata map[string]string) error {
	f.remembered = append(f.remembered, report)
	return nil
}

func (f *fakeMemory) Recall(ctx context.Context, query string, limit int) ([]string, error) {
	return f.recalled, nil
}

func bullishSummary() *marketdata.Summary {
	return &marketdata.Summary{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Benchmark: &marketdata.Quote{
			Symbol:        "SPY",
			Price:         450.50,
			Change:        5.20,
			ChangePercent: 1.17,
			Volume:        75000000,
		},
		MarketSentiment: "Strongly Positive",
	}
}

func newTestProfiles(t *testing.T) *store.ProfileStore {
	t.Helper()
	profiles, err := store.NewProfileStore(t.TempDir())
	assert.NoError(t, err)
	return profiles
}

func TestWorkflowRunProducesFullPipeline(t *testing.T) {
	market := new(mockMarketData)
	market.On("GetMarketSummary", mock.Anything).Return(bullishSummary(), nil)

	model := &scriptedModel{response: "Here is your tailored advice."}
	memory := &fakeMemory{}
	agent := NewMarketAgent(market)
	coordinator := NewCoordinator(model, newTestProfiles(t), agent, memory)
	workflow := NewWorkflow(coordinator, agent, 2)

	pipeline, err := workflow.Run(context.Background(), AdviceRequest{
		Name: "Ada", Age: 28, Income: 220000, RiskTolerance: "aggressive",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, pipeline.SessionID)
	assert.Equal(t, "High", pipeline.RiskAssessment.RiskLevel)
	assert.Equal(t, 0.65, pipeline.Allocation["stocks"])
	assert.Equal(t, "Strongly Positive", pipeline.MarketAnalysis.MarketSentiment)
	assert.Equal(t, "Here is your tailored advice.", pipeline.Report)
	assert.False(t, pipeline.UsedFallback)

	stages := make([]string, 0, len(pipeline.History))
	for _, snapshot := range pipeline.History {
		stages = append(stages, snapshot.Stage)
	}
	assert.Equal(t, []string{"start", "risk_assessment", "market_analysis", "portfolio_allocation", "report"}, stages)

	// Generated reports get stored for later recall.
	assert.Len(t, memory.remembered, 1)
}

func TestWorkflowFallsBackWhenModelFails(t *testing.T) {
	market := new(mockMarketData)
	market.On("GetMarketSummary", mock.Anything).Return(bullishSummary(), nil)

	model := &scriptedModel{err: fmt.Errorf("model unavailable")}
	agent := NewMarketAgent(market)
	coordinator := NewCoordinator(model, newTestProfiles(t), agent, nil)
	workflow := NewWorkflow(coordinator, agent, 1)

	pipeline, err := workflow.Run(context.Background(), AdviceRequest{
		Name: "Ada", Age: 60, Income: 80000, RiskTolerance: "conservative",
	})

	assert.NoError(t, err)
	assert.True(t, pipeline.UsedFallback)
	assert.Contains(t, pipeline.Report, "INVESTMENT ADVISORY REPORT")
	assert.Contains(t, pipeline.Report, "Overall Risk Level: Low")
	assert.Contains(t, pipeline.Report, "- Stocks: 25%")
}

func TestWorkflowContinuesWithoutMarketData(t *testing.T) {
	market := new(mockMarketData)
	market.On("GetMarketSummary", mock.Anything).Return(nil, fmt.Errorf("all providers down"))

	model := &scriptedModel{response: "advice"}
	agent := NewMarketAgent(market)
	coordinator := NewCoordinator(model, newTestProfiles(t), agent, nil)
	workflow := NewWorkflow(coordinator, agent, 1)

	pipeline, err := workflow.Run(context.Background(), AdviceRequest{
		Name: "Ada", Age: 40, Income: 150000, RiskTolerance: "moderate",
	})

	assert.NoError(t, err)
	assert.Nil(t, pipeline.MarketAnalysis)
	assert.Equal(t, "advice", pipeline.Report)
}

func TestWorkflowFallbackOnRequest(t *testing.T) {
	market := new(mockMarketData)
	market.On("GetMarketSummary", mock.Anything).Return(bullishSummary(), nil)

	model := &scriptedModel{response: "should never be used"}
	agent := NewMarketAgent(market)
	coordinator := NewCoordinator(model, newTestProfiles(t), agent, nil)
	workflow := NewWorkflow(coordinator, agent, 1)

	pipeline, err := workflow.Run(context.Background(), AdviceRequest{
		Name: "Ada", Age: 40, Income: 150000, RiskTolerance: "moderate", Fallback: true,
	})

	assert.NoError(t, err)
	assert.True(t, pipeline.UsedFallback)
	assert.Contains(t, pipeline.Report, "INVESTMENT ADVISORY REPORT")
	assert.Empty(t, model.lastPrompt)
}

func TestAdviceRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		request AdviceRequest
		errText string
	}{
		{"missing name", AdviceRequest{Age: 30, Income: 100000, RiskTolerance: "moderate"}, "name is required"},
		{"zero age", AdviceRequest{Name: "Ada", Income: 100000, RiskTolerance: "moderate"}, "age must be positive"},
		{"zero income", AdviceRequest{Name: "Ada", Age: 30, RiskTolerance: "moderate"}, "income must be positive"},
		{"bad tolerance", AdviceRequest{Name: "Ada", Age: 30, Income: 100000, RiskTolerance: "yolo"}, "risk_tolerance"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.request.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestCoordinatorChatBuildsContextualPrompt(t *testing.T) {
	market := new(mockMarketData)
	market.On("GetMarketSummary", mock.Anything).Return(bullishSummary(), nil)

	profiles := newTestProfiles(t)
	assert.NoError(t, profiles.Save(store.DefaultProfile("user-1", "Ada Lovelace", 36, 180000)))

	model := &scriptedModel{response: "```\nConsider index funds.\n```"}
	memory := &fakeMemory{recalled: []string{"previous report about bonds"}}
	coordinator := NewCoordinator(model, profiles, NewMarketAgent(market), memory)

	reply, err := coordinator.Chat(context.Background(), "should I buy more stocks?")

	assert.NoError(t, err)
	assert.Equal(t, "Consider index funds.", reply)
	assert.Contains(t, model.lastPrompt, "Ada Lovelace")
	assert.Contains(t, model.lastPrompt, "Strongly Positive")
	assert.Contains(t, model.lastPrompt, "previous report about bonds")
	assert.Contains(t, model.lastPrompt, "should I buy more stocks?")
}

func TestCoordinatorChatRejectsEmptyQuestion(t *testing.T) {
	market := new(mockMarketData)
	coordinator := NewCoordinator(&scriptedModel{}, newTestProfiles(t), NewMarketAgent(market), nil)

	_, err := coordinator.Chat(context.Background(), "   ")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "question cannot be empty")
}

func TestCoordinatorChatWithoutProfileOrMarket(t *testing.T) {
	market := new(mockMarketData)
	market.On("GetMarketSummary", mock.Anything).Return(nil, fmt.Errorf("down"))

	model := &scriptedModel{response: "general advice"}
	coordinator := NewCoordinator(model, newTestProfiles(t), NewMarketAgent(market), nil)

	reply, err := coordinator.Chat(context.Background(), "where do I start?")

	assert.NoError(t, err)
	assert.Equal(t, "general advice", reply)
	assert.Contains(t, model.lastPrompt, "No profile on file.")
	assert.Contains(t, model.lastPrompt, "Market data unavailable.")
}
