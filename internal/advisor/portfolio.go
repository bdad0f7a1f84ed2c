package advisor

import (
	"fmt"
	"sort"
	"strings"
)

// Allocation maps asset classes to portfolio weights that sum to 1.0.
type Allocation map[string]float64

// allocationOrder keeps rendered allocations in a stable, readable order.
var allocationOrder = []string{
	"stocks", "bonds", "cash", "real_estate",
	"commodities", "cryptocurrency", "etfs", "reits",
}

var allocationTables = map[string]Allocation{
	"conservative": {
		"stocks":         0.25,
		"bonds":          0.45,
		"cash":           0.15,
		"real_estate":    0.05,
		"commodities":    0.05,
		"cryptocurrency": 0.00,
		"etfs":           0.03,
		"reits":          0.02,
	},
	"moderate": {
		"stocks":         0.50,
		"bonds":          0.25,
		"cash":           0.10,
		"real_estate":    0.05,
		"commodities":    0.05,
		"cryptocurrency": 0.02,
		"etfs":           0.02,
		"reits":          0.01,
	},
	"aggressive": {
		"stocks":         0.65,
		"bonds":          0.15,
		"cash":           0.05,
		"real_estate":    0.05,
		"commodities":    0.05,
		"cryptocurrency": 0.03,
		"etfs":           0.01,
		"reits":          0.01,
	},
}

// PortfolioAnalysis summarizes how well a current allocation matches its
// risk-level target.
type PortfolioAnalysis struct {
	RiskLevel            string             `json:"risk_level"`
	TargetAllocation     Allocation         `json:"target_allocation"`
	CurrentAllocation    Allocation         `json:"current_allocation"`
	DiversificationScore float64            `json:"diversification_score"`
	Drift                map[string]float64 `json:"drift"`
	Suggestions          []string           `json:"suggestions"`
}

// PortfolioAgent recommends and analyzes asset allocations.
type PortfolioAgent struct{}

// NewPortfolioAgent creates a portfolio recommendation agent.
func NewPortfolioAgent() *PortfolioAgent {
	return &PortfolioAgent{}
}

// Recommend returns the target allocation for a risk level. Unknown levels
// fall back to the moderate table.
func (a *PortfolioAgent) Recommend(riskLevel string) Allocation {
	key := strings.ToLower(riskLevel)
	switch key {
	case "low":
		key = "conservative"
	case "moderate":
	case "high":
		key = "aggressive"
	}

	table, ok := allocationTables[key]
	if !ok {
		table = allocationTables["moderate"]
	}

	allocation := make(Allocation, len(table))
	for asset, weight := range table {
		allocation[asset] = weight
	}
	return allocation
}

// DiversificationScore measures allocation spread on a 0-100 scale using the
// complement of the Herfindahl-Hirschman index.
func (a *PortfolioAgent) DiversificationScore(allocation Allocation) float64 {
	var hhi float64
	for _, weight := range allocation {
		hhi += weight * weight
	}
	return (1 - hhi) * 100
}

// Analyze compares a current allocation against the target for the given risk
// level and suggests rebalancing moves for drifts beyond one percentage point.
func (a *PortfolioAgent) Analyze(riskLevel string, current Allocation) *PortfolioAnalysis {
	target := a.Recommend(riskLevel)

	analysis := &PortfolioAnalysis{
		RiskLevel:            riskLevel,
		TargetAllocation:     target,
		CurrentAllocation:    current,
		DiversificationScore: a.DiversificationScore(current),
		Drift:                make(map[string]float64),
	}

	assets := make([]string, 0, len(target)+len(current))
	seen := make(map[string]bool)
	for asset := range target {
		assets = append(assets, asset)
		seen[asset] = true
	}
	for asset := range current {
		if !seen[asset] {
			assets = append(assets, asset)
		}
	}
	sort.Strings(assets)

	for _, asset := range assets {
		drift := current[asset] - target[asset]
		analysis.Drift[asset] = drift

		if drift > 0.01 {
			analysis.Suggestions = append(analysis.Suggestions,
				fmt.Sprintf("Reduce %s by %.1f%%", asset, drift*100))
		} else if drift < -0.01 {
			analysis.Suggestions = append(analysis.Suggestions,
				fmt.Sprintf("Increase %s by %.1f%%", asset, -drift*100))
		}
	}

	return analysis
}

// Render writes the allocation as readable percentages, one asset per line.
func (alloc Allocation) Render() string {
	var sb strings.Builder
	for _, asset := range allocationOrder {
		weight, ok := alloc[asset]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s: %.0f%%\n", assetLabel(asset), weight*100))
	}

	var extras []string
	for asset := range alloc {
		if !containsAsset(allocationOrder, asset) {
			extras = append(extras, asset)
		}
	}
	sort.Strings(extras)
	for _, asset := range extras {
		sb.WriteString(fmt.Sprintf("- %s: %.0f%%\n", assetLabel(asset), alloc[asset]*100))
	}

	return sb.String()
}

func containsAsset(assets []string, asset string) bool {
	for _, a := range assets {
		if a == asset {
			return true
		}
	}
	return false
}

func assetLabel(asset string) string {
	switch asset {
	case "real_estate":
		return "Real Estate"
	case "etfs":
		return "ETFs"
	case "reits":
		return "REITs"
	case "cryptocurrency":
		return "Cryptocurrency"
	default:
		return titleCase(asset)
	}
}
