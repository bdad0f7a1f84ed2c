package store

import (
	"fmt"
	"time"
)

// InvestmentPreference is the target allocation for one asset class.
type InvestmentPreference struct {
	AssetType            string  `json:"asset_type"`
	AllocationPercentage float64 `json:"allocation_percentage"`
	RiskTolerance        string  `json:"risk_tolerance"`
	IsActive             bool    `json:"is_active"`
}

// UserProfile holds the investor's profile and asset preferences.
type UserProfile struct {
	UserID            string                 `json:"user_id"`
	Name              string                 `json:"name"`
	Age               int                    `json:"age"`
	Income            float64                `json:"income"`
	RiskTolerance     string                 `json:"risk_tolerance"`
	InvestmentGoal    string                 `json:"investment_goal"`
	InvestmentHorizon string                 `json:"investment_horizon"` // short-term, medium-term, long-term
	Preferences       []InvestmentPreference `json:"preferences"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	LastReport        string                 `json:"last_report,omitempty"`
}

// PortfolioSummary aggregates the active preferences of a profile.
type PortfolioSummary struct {
	UserID          string             `json:"user_id"`
	Name            string             `json:"name"`
	TotalAllocation float64            `json:"total_allocation"`
	AssetAllocation map[string]float64 `json:"asset_allocation"`
	LastUpdated     time.Time          `json:"last_updated"`
}

// ProfileStore persists the single user profile as a JSON document.
type ProfileStore struct {
	file *fileStore
}

// NewProfileStore creates a profile store under the given data directory.
func NewProfileStore(dataDir string) (*ProfileStore, error) {
	file, err := newFileStore(dataDir, "user_profile.json")
	if err != nil {
		return nil, err
	}
	return &ProfileStore{file: file}, nil
}

// DefaultProfile builds a profile with the standard moderate preference
// split across the eight supported asset classes.
func DefaultProfile(userID, name string, age int, income float64) *UserProfile {
	now := time.Now().UTC()
	return &UserProfile{
		UserID:            userID,
		Name:              name,
		Age:               age,
		Income:            income,
		RiskTolerance:     "moderate",
		InvestmentGoal:    "balanced_growth",
		InvestmentHorizon: "long-term",
		Preferences: []InvestmentPreference{
			{AssetType: "stocks", AllocationPercentage: 60, RiskTolerance: "moderate", IsActive: true},
			{AssetType: "bonds", AllocationPercentage: 20, RiskTolerance: "conservative", IsActive: true},
			{AssetType: "cash", AllocationPercentage: 5, RiskTolerance: "conservative", IsActive: true},
			{AssetType: "real_estate", AllocationPercentage: 5, RiskTolerance: "moderate", IsActive: true},
			{AssetType: "commodities", AllocationPercentage: 5, RiskTolerance: "moderate", IsActive: true},
			{AssetType: "cryptocurrency", AllocationPercentage: 2, RiskTolerance: "aggressive", IsActive: true},
			{AssetType: "etfs", AllocationPercentage: 2, RiskTolerance: "moderate", IsActive: true},
			{AssetType: "reits", AllocationPercentage: 1, RiskTolerance: "moderate", IsActive: true},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Save writes the profile to disk, refreshing its updated timestamp.
func (s *ProfileStore) Save(profile *UserProfile) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	profile.UpdatedAt = time.Now().UTC()
	return s.file.write(profile)
}

// Load reads the stored profile. It returns (nil, nil) when no profile has
// been saved yet.
func (s *ProfileStore) Load() (*UserProfile, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if !s.file.exists() {
		return nil, nil
	}

	var profile UserProfile
	if err := s.file.read(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdatePreferences replaces the stored profile's preferences.
func (s *ProfileStore) UpdatePreferences(preferences []InvestmentPreference) error {
	profile, err := s.Load()
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("no user profile found")
	}

	profile.Preferences = preferences
	return s.Save(profile)
}

// Summary builds the portfolio summary from the stored profile's active
// preferences.
func (s *ProfileStore) Summary() (*PortfolioSummary, error) {
	profile, err := s.Load()
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("no user profile found")
	}

	summary := &PortfolioSummary{
		UserID:          profile.UserID,
		Name:            profile.Name,
		AssetAllocation: make(map[string]float64),
		LastUpdated:     profile.UpdatedAt,
	}

	for _, pref := range profile.Preferences {
		if !pref.IsActive {
			continue
		}
		summary.TotalAllocation += pref.AllocationPercentage
		summary.AssetAllocation[pref.AssetType] = pref.AllocationPercentage
	}

	return summary, nil
}
