package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/common"
	"github.com/itsascout/scout/internal/interfaces"
)

// NewService creates the configured LLM provider.
func NewService(ctx context.Context, config *common.LLMConfig, logger arbor.ILogger) (interfaces.LLMService, error) {
	switch config.DefaultProvider {
	case "claude", "":
		return NewClaudeService(config.Claude.APIKey, config.Claude.Model, logger)
	case "gemini":
		return NewGeminiService(ctx, config.Gemini.APIKey, config.Gemini.Model, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", config.DefaultProvider)
	}
}
