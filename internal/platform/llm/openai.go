package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIClient wraps the LangChainGo OpenAI client behind our
// CompletionClient interface so the provider switch can treat it like any
// other backend.
type OpenAIClient struct {
	model llms.Model
}

var _ CompletionClient = (*OpenAIClient)(nil)

// OpenAIConfig contains OpenAI client configuration
type OpenAIConfig struct {
	APIKey          string
	CompletionModel string
}

// NewOpenAIClient creates a new client for the OpenAI chat completions API.
func NewOpenAIClient(config OpenAIConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if config.CompletionModel == "" {
		config.CompletionModel = "gpt-4-turbo-preview"
	}

	model, err := openai.New(
		openai.WithToken(config.APIKey),
		openai.WithModel(config.CompletionModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return &OpenAIClient{model: model}, nil
}

// GenerateCompletion sends a prompt to OpenAI and returns the completion text.
func (c *OpenAIClient) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	return response, nil
}

// Health checks OpenAI service availability
func (c *OpenAIClient) Health(ctx context.Context) error {
	_, err := c.GenerateCompletion(ctx, "test")
	if err != nil {
		return fmt.Errorf("openai health check failed: %w", err)
	}
	return nil
}

// Model exposes the underlying LangChainGo model for callers that work with
// llms.Model directly.
func (c *OpenAIClient) Model() llms.Model {
	return c.model
}
