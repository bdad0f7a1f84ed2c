package advisor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"

	"github.com/quantfolio/advisor-engine/internal/store"
)

// ReportMemory stores generated advisory reports and recalls similar past
// reports as additional chat context.
type ReportMemory interface {
	Remember(ctx context.Context, report string, metadata map[string]string) error
	Recall(ctx context.Context, query string, limit int) ([]string, error)
}

const chatPromptTemplate = `You are a professional financial investment advisor.
Answer the user's question using the context below. Be specific and practical.
Never recommend individual securities without noting the risks involved.

INVESTOR PROFILE:
{{.profile}}

CURRENT MARKET CONDITIONS:
{{.market}}

RISK ASSESSMENT:
{{.risk}}

RELEVANT PAST ADVICE:
{{.history}}

USER QUESTION:
{{.question}}

Respond in plain text without markdown formatting.`

// Coordinator routes investor questions through the specialist agents and an
// LLM to produce contextualized advice.
type Coordinator struct {
	model     llms.Model
	profiles  *store.ProfileStore
	market    *MarketAgent
	risk      *RiskAgent
	portfolio *PortfolioAgent
	memory    ReportMemory
}

// NewCoordinator wires the coordinator from its agents and model. memory may
// be nil when no report store is configured.
func NewCoordinator(model llms.Model, profiles *store.ProfileStore, market *MarketAgent, memory ReportMemory) *Coordinator {
	return &Coordinator{
		model:     model,
		profiles:  profiles,
		market:    market,
		risk:      NewRiskAgent(),
		portfolio: NewPortfolioAgent(),
		memory:    memory,
	}
}

// Chat answers an investor question with profile, market and risk context.
func (c *Coordinator) Chat(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question cannot be empty")
	}

	profileText := "No profile on file."
	riskText := "No risk assessment available."
	if profile, err := c.profiles.Load(); err == nil && profile != nil {
		profileText = describeProfile(profile)
		assessment := c.risk.AssessProfile(RiskProfile{
			Age:           profile.Age,
			Income:        profile.Income,
			RiskTolerance: profile.RiskTolerance,
		})
		riskText = assessment.Summary()
	}

	marketText := "Market data unavailable."
	if analysis, err := c.market.Analyze(ctx); err == nil {
		marketText = analysis.Summary()
	} else {
		log.Printf("Warning: market context unavailable for chat: %v", err)
	}

	historyText := "None."
	if c.memory != nil {
		if past, err := c.memory.Recall(ctx, question, 3); err == nil && len(past) > 0 {
			historyText = strings.Join(past, "\n---\n")
		}
	}

	template := prompts.NewPromptTemplate(chatPromptTemplate,
		[]string{"profile", "market", "risk", "history", "question"})
	prompt, err := template.Format(map[string]any{
		"profile":  profileText,
		"market":   marketText,
		"risk":     riskText,
		"history":  historyText,
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format chat prompt: %w", err)
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate chat response: %w", err)
	}

	return stripCodeFences(response), nil
}

// ComprehensiveReport builds a deterministic advisory report from a risk
// assessment and its matching allocation. It never calls the LLM, so it also
// serves as the fallback when generation fails.
func (c *Coordinator) ComprehensiveReport(assessment *RiskAssessment, allocation Allocation, analysis *MarketAnalysis) string {
	var sb strings.Builder

	sb.WriteString("INVESTMENT ADVISORY REPORT\n")
	sb.WriteString("==========================\n\n")

	sb.WriteString("RISK ASSESSMENT\n")
	sb.WriteString(assessment.Summary())
	sb.WriteString("\n")

	if analysis != nil {
		sb.WriteString("MARKET CONDITIONS\n")
		sb.WriteString(analysis.Summary())
		sb.WriteString("\n")
	}

	sb.WriteString("RECOMMENDED ALLOCATION\n")
	sb.WriteString(allocation.Render())
	sb.WriteString(fmt.Sprintf("\nDiversification Score: %.1f/100\n",
		c.portfolio.DiversificationScore(allocation)))

	return sb.String()
}

// NarrativeReport asks the LLM to turn the deterministic report into advisory
// prose. On failure the deterministic report is returned with fallback=true.
func (c *Coordinator) NarrativeReport(ctx context.Context, assessment *RiskAssessment, allocation Allocation, analysis *MarketAnalysis) (report string, fallback bool) {
	base := c.ComprehensiveReport(assessment, allocation, analysis)

	template := prompts.NewPromptTemplate(
		`You are a professional financial investment advisor. Rewrite the
following structured report as clear advisory prose for the investor. Keep
every figure exactly as given. Do not add figures that are not in the report.

{{.report}}

Respond in plain text without markdown formatting.`,
		[]string{"report"})
	prompt, err := template.Format(map[string]any{"report": base})
	if err != nil {
		log.Printf("Warning: failed to format report prompt, using structured report: %v", err)
		return base, true
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		log.Printf("Warning: report generation failed, using structured report: %v", err)
		return base, true
	}

	return stripCodeFences(response), false
}

// RememberReport stores a generated report in memory when one is configured.
func (c *Coordinator) RememberReport(ctx context.Context, report string, riskLevel string) {
	if c.memory == nil {
		return
	}
	metadata := map[string]string{"risk_level": riskLevel}
	if err := c.memory.Remember(ctx, report, metadata); err != nil {
		log.Printf("Warning: failed to store advisory report: %v", err)
	}
}

func describeProfile(profile *store.UserProfile) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name: %s\n", profile.Name))
	sb.WriteString(fmt.Sprintf("Age: %d\n", profile.Age))
	sb.WriteString(fmt.Sprintf("Annual Income: $%s\n", formatIncome(profile.Income)))
	sb.WriteString(fmt.Sprintf("Risk Tolerance: %s\n", titleCase(profile.RiskTolerance)))
	sb.WriteString(fmt.Sprintf("Investment Goal: %s\n", profile.InvestmentGoal))
	sb.WriteString(fmt.Sprintf("Investment Horizon: %s\n", profile.InvestmentHorizon))

	if len(profile.Preferences) > 0 {
		sb.WriteString("Preferences:\n")
		for _, pref := range profile.Preferences {
			if !pref.IsActive {
				continue
			}
			sb.WriteString(fmt.Sprintf("- %s: %.0f%%\n", assetLabel(pref.AssetType), pref.AllocationPercentage))
		}
	}

	return sb.String()
}

// stripCodeFences removes markdown code fences that some models wrap around
// plain-text responses.
func stripCodeFences(response string) string {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	return strings.TrimSpace(cleaned)
}
