package weaviate

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const className = "AdvisoryReport"

// Client wraps the Weaviate Go client with advisory report storage.
type Client struct {
	client *weaviate.Client
}

// Config contains Weaviate connection settings.
type Config struct {
	URL    string
	APIKey string
}

// Report is one stored advisory report with its retrieval metadata.
type Report struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	RiskLevel string    `json:"risk_level,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResult pairs a retrieved report with its similarity score.
type SearchResult struct {
	Report *Report `json:"report"`
	Score  float32 `json:"score"`
}

// NewClient creates a new Weaviate client instance.
func NewClient(config Config) (*Client, error) {
	parsedURL, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Weaviate URL: %w", err)
	}

	cfg := weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	}

	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: config.APIKey}
	}

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Weaviate client: %w", err)
	}

	return &Client{client: client}, nil
}

// EnsureSchema creates the AdvisoryReport class when it does not exist yet.
// Vectors are supplied by the embedding client, so the class uses no
// vectorizer module.
func (c *Client) EnsureSchema(ctx context.Context) error {
	exists, err := c.client.Schema().ClassExistenceChecker().
		WithClassName(className).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:      className,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "riskLevel", DataType: []string{"text"}},
			{Name: "createdAt", DataType: []string{"date"}},
		},
	}

	if err := c.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// StoreReport saves a report with its vector embedding.
func (c *Client) StoreReport(ctx context.Context, report *Report, embedding []float32) error {
	_, err := c.client.Data().Creator().
		WithClassName(className).
		WithID(report.ID).
		WithProperties(map[string]interface{}{
			"content":   report.Content,
			"riskLevel": report.RiskLevel,
			"createdAt": report.CreatedAt.Format(time.RFC3339),
		}).
		WithVector(embedding).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}
	return nil
}

// SearchSimilar finds reports close to the query embedding, scored by
// certainty.
func (c *Client) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	nearVector := c.client.GraphQL().NearVectorArgBuilder().
		WithVector(embedding)

	result, err := c.client.GraphQL().Get().
		WithClassName(className).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "riskLevel"},
			graphql.Field{Name: "createdAt"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{
				{Name: "id"},
				{Name: "certainty"},
			}},
		).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search reports: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("report search returned errors: %s", result.Errors[0].Message)
	}

	var searchResults []*SearchResult

	getResult, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return searchResults, nil
	}
	reports, ok := getResult[className].([]interface{})
	if !ok {
		return searchResults, nil
	}

	for _, raw := range reports {
		props, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		report := &Report{}
		report.Content, _ = props["content"].(string)
		report.RiskLevel, _ = props["riskLevel"].(string)
		if createdAt, ok := props["createdAt"].(string); ok {
			report.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		}

		var score float32
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			report.ID, _ = additional["id"].(string)
			if certainty, ok := additional["certainty"].(float64); ok {
				score = float32(certainty)
			}
		}

		searchResults = append(searchResults, &SearchResult{
			Report: report,
			Score:  score,
		})
	}

	return searchResults, nil
}

// Health verifies Weaviate service connectivity and readiness.
func (c *Client) Health(ctx context.Context) error {
	ready, err := c.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate health check failed: %w", err)
	}

	if !ready {
		return fmt.Errorf("weaviate is not ready")
	}

	return nil
}
