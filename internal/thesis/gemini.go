package thesis

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/wonny/conviction-radar/internal/contracts"
)

// DefaultGeminiModel is used when THESIS_MODEL is empty
const DefaultGeminiModel = "gemini-2.5-flash"

type contentGenerator func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiGenerator writes theses with the Gemini API
type GeminiGenerator struct {
	model     string
	maxTokens int32
	generate  contentGenerator
}

// NewGeminiGenerator creates a Gemini-backed generator
func NewGeminiGenerator(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return newGeminiGenerator(client.Models.GenerateContent, model, maxTokens), nil
}

func newGeminiGenerator(generate contentGenerator, model string, maxTokens int) *GeminiGenerator {
	if model == "" {
		model = DefaultGeminiModel
	}
	if maxTokens <= 0 {
		maxTokens = 400
	}
	return &GeminiGenerator{
		model:     model,
		maxTokens: int32(maxTokens),
		generate:  generate,
	}
}

// Generate implements contracts.ThesisGenerator
func (g *GeminiGenerator) Generate(ctx context.Context, in contracts.ThesisInput) (string, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens:   g.maxTokens,
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	contents := []*genai.Content{
		genai.NewContentFromText(BuildPrompt(in), genai.RoleUser),
	}

	resp, err := g.generate(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	var text strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part != nil && part.Text != "" {
					text.WriteString(part.Text)
				}
			}
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return text.String(), nil
}
