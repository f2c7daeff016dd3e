package thesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/wonny/conviction-radar/internal/contracts"
)

// DefaultClaudeModel is used when THESIS_MODEL is empty
const DefaultClaudeModel = "claude-sonnet-4-5"

type messageCreator func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)

// ClaudeGenerator writes theses with the Anthropic Messages API
type ClaudeGenerator struct {
	model     string
	maxTokens int64
	create    messageCreator
}

// NewClaudeGenerator creates a Claude-backed generator
func NewClaudeGenerator(apiKey, model string, maxTokens int) *ClaudeGenerator {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return newClaudeGenerator(func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
		return client.Messages.New(ctx, params)
	}, model, maxTokens)
}

func newClaudeGenerator(create messageCreator, model string, maxTokens int) *ClaudeGenerator {
	if model == "" {
		model = DefaultClaudeModel
	}
	if maxTokens <= 0 {
		maxTokens = 400
	}
	return &ClaudeGenerator{
		model:     model,
		maxTokens: int64(maxTokens),
		create:    create,
	}
}

// Generate implements contracts.ThesisGenerator
func (g *ClaudeGenerator) Generate(ctx context.Context, in contracts.ThesisInput) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(in))),
		},
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
	}

	resp, err := g.create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("claude: %w", ErrEmptyResponse)
	}
	return text.String(), nil
}
