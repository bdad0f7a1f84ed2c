package advisor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// AdviceRequest is the investor input to the advisory pipeline. Fallback
// skips the LLM and returns the structured report directly.
type AdviceRequest struct {
	Name          string  `json:"name"`
	Age           int     `json:"age"`
	Income        float64 `json:"income"`
	RiskTolerance string  `json:"risk_tolerance"`
	Fallback      bool    `json:"fallback,omitempty"`
}

// Validate checks that every required pipeline input is present.
func (r AdviceRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Age <= 0 {
		return fmt.Errorf("age must be positive")
	}
	if r.Income <= 0 {
		return fmt.Errorf("income must be positive")
	}
	switch r.RiskTolerance {
	case "conservative", "moderate", "aggressive":
	default:
		return fmt.Errorf("risk_tolerance must be conservative, moderate or aggressive")
	}
	return nil
}

// StageSnapshot records the pipeline state after one stage completed.
type StageSnapshot struct {
	Stage     string    `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail"`
}

// PipelineContext carries state between pipeline stages and is returned to
// the caller with the full stage history.
type PipelineContext struct {
	SessionID      string          `json:"session_id"`
	Request        AdviceRequest   `json:"request"`
	RiskAssessment *RiskAssessment `json:"risk_assessment,omitempty"`
	MarketAnalysis *MarketAnalysis `json:"market_analysis,omitempty"`
	Allocation     Allocation      `json:"allocation,omitempty"`
	Report         string          `json:"report,omitempty"`
	UsedFallback   bool            `json:"used_fallback"`
	History        []StageSnapshot `json:"history"`
}

func (p *PipelineContext) snapshot(stage, detail string) {
	p.History = append(p.History, StageSnapshot{
		Stage:     stage,
		Timestamp: time.Now().UTC(),
		Detail:    detail,
	})
}

// Workflow runs the advisory pipeline: risk assessment, market analysis,
// portfolio allocation, then report generation. A semaphore bounds concurrent
// runs since each run may hold an LLM call open.
type Workflow struct {
	coordinator *Coordinator
	risk        *RiskAgent
	market      *MarketAgent
	portfolio   *PortfolioAgent
	semaphore   chan struct{}
}

// NewWorkflow creates an advisory workflow allowing up to maxConcurrent
// simultaneous runs.
func NewWorkflow(coordinator *Coordinator, market *MarketAgent, maxConcurrent int) *Workflow {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Workflow{
		coordinator: coordinator,
		risk:        NewRiskAgent(),
		market:      market,
		portfolio:   NewPortfolioAgent(),
		semaphore:   make(chan struct{}, maxConcurrent),
	}
}

// Run executes the full pipeline for one advice request.
func (w *Workflow) Run(ctx context.Context, request AdviceRequest) (*PipelineContext, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	select {
	case w.semaphore <- struct{}{}:
		defer func() { <-w.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	pipeline := &PipelineContext{
		SessionID: uuid.New().String(),
		Request:   request,
	}
	pipeline.snapshot("start", fmt.Sprintf("advice request for %s", request.Name))

	pipeline.RiskAssessment = w.risk.AssessProfile(RiskProfile{
		Age:           request.Age,
		Income:        request.Income,
		RiskTolerance: request.RiskTolerance,
	})
	pipeline.snapshot("risk_assessment",
		fmt.Sprintf("risk level %s (score %.2f)",
			pipeline.RiskAssessment.RiskLevel, pipeline.RiskAssessment.RiskScore))

	analysis, err := w.market.Analyze(ctx)
	if err != nil {
		log.Printf("Warning: market analysis unavailable, continuing without it: %v", err)
		pipeline.snapshot("market_analysis", "unavailable: "+err.Error())
	} else {
		pipeline.MarketAnalysis = analysis
		pipeline.snapshot("market_analysis",
			fmt.Sprintf("benchmark $%.2f, sentiment %s", analysis.CurrentPrice, analysis.MarketSentiment))
	}

	pipeline.Allocation = w.portfolio.Recommend(pipeline.RiskAssessment.RiskLevel)
	pipeline.snapshot("portfolio_allocation",
		fmt.Sprintf("diversification score %.1f", w.portfolio.DiversificationScore(pipeline.Allocation)))

	var report string
	fallback := request.Fallback
	if fallback {
		report = w.coordinator.ComprehensiveReport(
			pipeline.RiskAssessment, pipeline.Allocation, pipeline.MarketAnalysis)
	} else {
		report, fallback = w.coordinator.NarrativeReport(ctx,
			pipeline.RiskAssessment, pipeline.Allocation, pipeline.MarketAnalysis)
	}
	pipeline.Report = report
	pipeline.UsedFallback = fallback
	if fallback {
		pipeline.snapshot("report", "structured fallback report")
	} else {
		pipeline.snapshot("report", "narrative report generated")
	}

	w.coordinator.RememberReport(ctx, report, pipeline.RiskAssessment.RiskLevel)

	return pipeline, nil
}
