package advisor

import (
	"fmt"
	"strconv"
	"strings"
)

// RiskProfile is the structured form of a free-text investor description.
type RiskProfile struct {
	Age             int     `json:"age"`
	Income          float64 `json:"income"`
	RiskTolerance   string  `json:"risk_tolerance"`
	InvestmentGoals string  `json:"investment_goals"`
	TimeHorizon     string  `json:"time_horizon"`
}

// RiskAssessment is the structured result of a risk evaluation.
type RiskAssessment struct {
	RiskLevel       string            `json:"risk_level"`
	RiskScore       float64           `json:"risk_score"`
	ProfileAnalysis map[string]string `json:"profile_analysis"`
	Recommendations []string          `json:"recommendations"`
}

// RiskAgent evaluates investor risk from profile information.
type RiskAgent struct{}

// NewRiskAgent creates a risk assessment agent.
func NewRiskAgent() *RiskAgent {
	return &RiskAgent{}
}

// ParseProfile extracts structured profile data from free text. Unrecognized
// fields keep moderate defaults.
func (a *RiskAgent) ParseProfile(text string) RiskProfile {
	profile := RiskProfile{
		Age:             30,
		Income:          100000,
		RiskTolerance:   "moderate",
		InvestmentGoals: "retirement",
		TimeHorizon:     "long_term",
	}

	lower := strings.ToLower(text)

	if idx := strings.Index(lower, "year old"); idx >= 0 {
		fields := strings.Fields(strings.TrimSpace(text[:idx]))
		if len(fields) > 0 {
			if age, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
				profile.Age = age
			}
		}
	}

	if idx := strings.Index(text, "$"); idx >= 0 {
		fields := strings.Fields(text[idx+1:])
		if len(fields) > 0 {
			raw := strings.ReplaceAll(strings.Trim(fields[0], ".,"), ",", "")
			if income, err := strconv.ParseFloat(raw, 64); err == nil {
				profile.Income = income
			}
		}
	}

	for _, level := range []string{"conservative", "moderate", "aggressive"} {
		if strings.Contains(lower, level) {
			profile.RiskTolerance = level
			break
		}
	}

	return profile
}

// Score computes a normalized 0-1 risk score from age, income and stated
// tolerance.
func (a *RiskAgent) Score(profile RiskProfile) float64 {
	var score float64

	switch {
	case profile.Age < 30:
		score += 0.8
	case profile.Age < 50:
		score += 0.5
	default:
		score += 0.2
	}

	switch {
	case profile.Income > 200000:
		score += 0.8
	case profile.Income > 100000:
		score += 0.5
	default:
		score += 0.3
	}

	switch profile.RiskTolerance {
	case "aggressive":
		score += 0.8
	case "moderate":
		score += 0.5
	default:
		score += 0.2
	}

	return score / 3.0
}

// Assess parses a free-text profile and produces a risk assessment with
// level-appropriate recommendations.
func (a *RiskAgent) Assess(text string) *RiskAssessment {
	profile := a.ParseProfile(text)
	return a.AssessProfile(profile)
}

// AssessProfile produces a risk assessment from an already-structured profile.
func (a *RiskAgent) AssessProfile(profile RiskProfile) *RiskAssessment {
	score := a.Score(profile)

	var level string
	switch {
	case score >= 0.7:
		level = "High"
	case score >= 0.4:
		level = "Moderate"
	default:
		level = "Low"
	}

	assessment := &RiskAssessment{
		RiskLevel: level,
		RiskScore: score,
		ProfileAnalysis: map[string]string{
			"age":            fmt.Sprintf("%d years", profile.Age),
			"income":         fmt.Sprintf("$%s", formatIncome(profile.Income)),
			"risk_tolerance": titleCase(profile.RiskTolerance),
		},
	}

	switch level {
	case "High":
		assessment.Recommendations = []string{
			"Consider a growth-oriented portfolio",
			"Focus on equities with some alternative investments",
			"Regular portfolio rebalancing recommended",
		}
	case "Moderate":
		assessment.Recommendations = []string{
			"Balanced portfolio of stocks and bonds",
			"Consider index funds for core holdings",
			"Quarterly portfolio review recommended",
		}
	default:
		assessment.Recommendations = []string{
			"Conservative portfolio with focus on stability",
			"Higher allocation to bonds and cash equivalents",
			"Annual portfolio review sufficient",
		}
	}

	return assessment
}

// Summary renders the assessment as readable text for chat responses.
func (r *RiskAssessment) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall Risk Level: %s\n", r.RiskLevel))
	sb.WriteString(fmt.Sprintf("Risk Score: %.2f\n", r.RiskScore))
	sb.WriteString("\nProfile Analysis:\n")
	sb.WriteString(fmt.Sprintf("- Age: %s\n", r.ProfileAnalysis["age"]))
	sb.WriteString(fmt.Sprintf("- Annual Income: %s\n", r.ProfileAnalysis["income"]))
	sb.WriteString(fmt.Sprintf("- Risk Tolerance: %s\n", r.ProfileAnalysis["risk_tolerance"]))
	sb.WriteString("\nRecommendations:\n")
	for _, rec := range r.Recommendations {
		sb.WriteString(fmt.Sprintf("- %s\n", rec))
	}
	return sb.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatIncome(income float64) string {
	whole := int64(income)
	s := strconv.FormatInt(whole, 10)

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}
