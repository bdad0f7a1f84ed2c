package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient talks to the Groq chat completions API (OpenAI compatible).
type GroqClient struct {
	apiKey          string
	baseURL         string
	httpClient      *http.Client
	completionModel string
}

var _ CompletionClient = (*GroqClient)(nil)

// GroqConfig contains Groq client configuration
type GroqConfig struct {
	APIKey          string
	CompletionModel string
	BaseURL         string
	Timeout         time.Duration
}

// NewGroqClient creates a new client for interacting with the Groq API.
func NewGroqClient(config GroqConfig) (*GroqClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Groq API key is required")
	}
	if config.CompletionModel == "" {
		config.CompletionModel = "llama3-8b-8192"
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultGroqBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &GroqClient{
		apiKey:          config.APIKey,
		baseURL:         config.BaseURL,
		httpClient:      &http.Client{Timeout: config.Timeout},
		completionModel: config.CompletionModel,
	}, nil
}

// Groq API request/response structures (OpenAI compatible)
type groqCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []groqMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqCompletionResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
}

// GenerateCompletion sends a prompt to the Groq API and gets a completion.
func (c *GroqClient) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/chat/completions", c.baseURL)

	reqBody := groqCompletionRequest{
		Model: c.completionModel,
		Messages: []groqMessage{
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal groq request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create groq request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request to groq: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("groq API returned status %d: %s", resp.StatusCode, string(body))
	}

	var groqResp groqCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return "", fmt.Errorf("failed to decode groq response: %w", err)
	}

	if len(groqResp.Choices) == 0 {
		return "", fmt.Errorf("received no choices from groq")
	}

	return groqResp.Choices[0].Message.Content, nil
}

// Health checks Groq service availability
func (c *GroqClient) Health(ctx context.Context) error {
	_, err := c.GenerateCompletion(ctx, "test")
	if err != nil {
		return fmt.Errorf("groq service health check failed: %w", err)
	}
	return nil
}
