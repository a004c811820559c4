package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/interfaces"
)

// ClaudeService implements LLMService on the Anthropic API.
type ClaudeService struct {
	client *anthropic.Client
	model  string
	logger arbor.ILogger
}

// NewClaudeService creates a Claude-backed completion service.
func NewClaudeService(apiKey, model string, logger arbor.ILogger) (interfaces.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("claude api key is required")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &ClaudeService{
		client: &client,
		model:  model,
		logger: logger,
	}, nil
}

func (s *ClaudeService) ProviderName() string {
	return "claude"
}

func (s *ClaudeService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude api call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("empty response from claude api")
	}

	return response.String(), nil
}
