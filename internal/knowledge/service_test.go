package knowledge

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/quantfolio/advisor-engine/internal/platform/weaviate"
	"github.com/quantfolio/advisor-engine/internal/testenv"
)

func TestMain(m *testing.M) {
	testenv.Setup()
	os.Exit(m.Run())
}

// MockEmbeddingClient is a mock for the EmbeddingClient interface.
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbeddingClient) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockVectorStore is a mock for the report vector store.
type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) StoreReport(ctx context.Context, report *weaviate.Report, embedding []float32) error {
	args := m.Called(ctx, report, embedding)
	return args.Error(0)
}

func (m *MockVectorStore) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*weaviate.SearchResult, error) {
	args := m.Called(ctx, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*weaviate.SearchResult), args.Error(1)
}

func (m *MockVectorStore) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestRememberEmbedsAndStores(t *testing.T) {
	mockEmbedder := new(MockEmbeddingClient)
	mockVectors := new(MockVectorStore)

	report := "Recommended a moderate allocation with 50% stocks."
	embedding := []float32{0.1, 0.2, 0.3}

	mockEmbedder.On("GenerateEmbeddings", mock.Anything, report).Return(embedding, nil)
	mockVectors.On("StoreReport", mock.Anything, mock.MatchedBy(func(r *weaviate.Report) bool {
		return r.Content == report && r.RiskLevel == "Moderate" && r.ID != "" && !r.CreatedAt.IsZero()
	}), embedding).Return(nil)

	service := NewService(mockEmbedder, mockVectors)

	err := service.Remember(context.Background(), report, map[string]string{"risk_level": "Moderate"})

	assert.NoError(t, err)
	mockEmbedder.AssertExpectations(t)
	mockVectors.AssertExpectations(t)
}

func TestRememberRejectsEmptyReport(t *testing.T) {
	service := NewService(new(MockEmbeddingClient), new(MockVectorStore))

	err := service.Remember(context.Background(), "", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "report cannot be empty")
}

func TestRecallFiltersLowCertaintyResults(t *testing.T) {
	mockEmbedder := new(MockEmbeddingClient)
	mockVectors := new(MockVectorStore)

	query := "how should I allocate bonds?"
	embedding := []float32{0.4, 0.5}
	results := []*weaviate.SearchResult{
		{Report: &weaviate.Report{ID: "r1", Content: "Bond-heavy conservative plan."}, Score: 0.92},
		{Report: &weaviate.Report{ID: "r2", Content: "Unrelated crypto commentary."}, Score: 0.31},
		{Report: &weaviate.Report{ID: "r3", Content: "Balanced plan with 25% bonds."}, Score: 0.78},
	}

	mockEmbedder.On("GenerateEmbeddings", mock.Anything, query).Return(embedding, nil)
	mockVectors.On("SearchSimilar", mock.Anything, embedding, 3).Return(results, nil)

	service := NewService(mockEmbedder, mockVectors)

	reports, err := service.Recall(context.Background(), query, 3)

	assert.NoError(t, err)
	assert.Equal(t, []string{"Bond-heavy conservative plan.", "Balanced plan with 25% bonds."}, reports)
	mockEmbedder.AssertExpectations(t)
	mockVectors.AssertExpectations(t)
}

func TestRecallRejectsEmptyQuery(t *testing.T) {
	service := NewService(new(MockEmbeddingClient), new(MockVectorStore))

	_, err := service.Recall(context.Background(), "", 5)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "query cannot be empty")
}

func TestRecallPropagatesEmbeddingError(t *testing.T) {
	mockEmbedder := new(MockEmbeddingClient)
	mockVectors := new(MockVectorStore)

	mockEmbedder.On("GenerateEmbeddings", mock.Anything, "query").Return(nil, assert.AnError)

	service := NewService(mockEmbedder, mockVectors)

	_, err := service.Recall(context.Background(), "query", 5)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate query embedding")
}

func TestHealthCheck(t *testing.T) {
	mockEmbedder := new(MockEmbeddingClient)
	mockVectors := new(MockVectorStore)

	mockVectors.On("Health", mock.Anything).Return(nil)
	mockEmbedder.On("Health", mock.Anything).Return(nil)

	service := NewService(mockEmbedder, mockVectors)

	assert.NoError(t, service.HealthCheck(context.Background()))
	mockEmbedder.AssertExpectations(t)
	mockVectors.AssertExpectations(t)
}

func TestHealthCheckVectorStoreFailure(t *testing.T) {
	mockEmbedder := new(MockEmbeddingClient)
	mockVectors := new(MockVectorStore)

	mockVectors.On("Health", mock.Anything).Return(assert.AnError)

	service := NewService(mockEmbedder, mockVectors)

	err := service.HealthCheck(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vector database health check failed")
	mockVectors.AssertExpectations(t)
}
