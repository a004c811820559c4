package steps

import (
	"github.com/itsascout/scout/internal/models"
	"github.com/itsascout/scout/internal/robots"
)

// aiBots maps the well-known AI crawler user agents to their operators.
var aiBots = []struct {
	Agent   string
	Company string
}{
	{"GPTBot", "OpenAI"},
	{"ChatGPT-User", "OpenAI"},
	{"Google-Extended", "Google"},
	{"anthropic-ai", "Anthropic"},
	{"ClaudeBot", "Anthropic"},
	{"CCBot", "Common Crawl"},
	{"Bytespider", "ByteDance"},
	{"Amazonbot", "Amazon"},
	{"FacebookBot", "Meta"},
	{"Meta-ExternalAgent", "Meta"},
	{"cohere-ai", "Cohere"},
	{"PerplexityBot", "Perplexity"},
	{"Applebot-Extended", "Apple"},
}

// EvaluateAIBots checks can_fetch("/") for each AI crawler against the
// robots.txt text. An empty robots file blocks nothing.
func EvaluateAIBots(rawText string) *models.AIBotResult {
	data := robots.Parse(rawText)

	bots := make(map[string]models.BotBlock, len(aiBots))
	blocked := 0
	for _, bot := range aiBots {
		allowed := data.Allowed(bot.Agent, "/")
		if !allowed {
			blocked++
		}
		bots[bot.Agent] = models.BotBlock{
			Company: bot.Company,
			Blocked: !allowed,
		}
	}

	return &models.AIBotResult{
		Bots:         bots,
		BlockedCount: blocked,
		TotalCount:   len(aiBots),
	}
}
