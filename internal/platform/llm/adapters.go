package llm

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// LangChainAdapter exposes any CompletionClient as a LangChainGo llms.Model
// so prompt templates and chains can run over hand-rolled provider clients.
type LangChainAdapter struct {
	client CompletionClient
}

var _ llms.Model = (*LangChainAdapter)(nil)

// NewLangChainAdapter wraps a completion client in the llms.Model interface.
func NewLangChainAdapter(client CompletionClient) *LangChainAdapter {
	return &LangChainAdapter{client: client}
}

// Call implements the deprecated Call method for backwards compatibility
func (a *LangChainAdapter) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return a.client.GenerateCompletion(ctx, prompt)
}

// GenerateContent flattens the message parts into a single prompt before
// delegating to the wrapped client.
func (a *LangChainAdapter) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var sb strings.Builder
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if textPart, ok := part.(llms.TextContent); ok {
				sb.WriteString(textPart.Text)
				sb.WriteString("\n")
			}
		}
	}

	response, err := a.client.GenerateCompletion(ctx, sb.String())
	if err != nil {
		return nil, err
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content: response,
			},
		},
	}, nil
}
