// Package knowledge is the advisor's long-term report memory. Generated
// advisory reports are embedded and stored in Weaviate so later chat queries
// can recall similar past advice as context.
package knowledge

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/quantfolio/advisor-engine/internal/platform/llm"
	"github.com/quantfolio/advisor-engine/internal/platform/weaviate"
)

// VectorStore is the report storage surface the service depends on.
type VectorStore interface {
	StoreReport(ctx context.Context, report *weaviate.Report, embedding []float32) error
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*weaviate.SearchResult, error)
	Health(ctx context.Context) error
}

// minCertainty filters out barely-related reports during recall.
const minCertainty = 0.5

// Service embeds and stores advisory reports and recalls similar past ones.
type Service struct {
	embedClient llm.EmbeddingClient
	vectors     VectorStore
}

// NewService creates a report memory service.
func NewService(embedClient llm.EmbeddingClient, vectors VectorStore) *Service {
	return &Service{
		embedClient: embedClient,
		vectors:     vectors,
	}
}

// Remember embeds a report and stores it with its metadata.
func (s *Service) Remember(ctx context.Context, report string, metadata map[string]string) error {
	if report == "" {
		return fmt.Errorf("report cannot be empty")
	}

	embedding, err := s.embedClient.GenerateEmbeddings(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to generate report embedding: %w", err)
	}

	stored := &weaviate.Report{
		ID:        uuid.New().String(),
		Content:   report,
		RiskLevel: metadata["risk_level"],
		CreatedAt: time.Now().UTC(),
	}

	if err := s.vectors.StoreReport(ctx, stored, embedding); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	log.Printf("Stored advisory report %s", stored.ID)
	return nil
}

// Recall returns the contents of past reports similar to the query, best
// match first, skipping low-certainty results.
func (s *Service) Recall(ctx context.Context, query string, limit int) ([]string, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	embedding, err := s.embedClient.GenerateEmbeddings(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := s.vectors.SearchSimilar(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search past reports: %w", err)
	}

	var reports []string
	for _, result := range results {
		if result.Score < minCertainty {
			continue
		}
		reports = append(reports, result.Report.Content)
	}
	return reports, nil
}

// HealthCheck verifies connectivity to the vector store and the embedder.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.vectors.Health(ctx); err != nil {
		return fmt.Errorf("vector database health check failed: %w", err)
	}

	if err := s.embedClient.Health(ctx); err != nil {
		return fmt.Errorf("embedding client health check failed: %w", err)
	}

	return nil
}
