package generator

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/cetinibs/lovacards/internal/domain"
)

const (
	geminiSystemInstruction = "You are the world's most romantic poet. You write short, impactful, and heart-touching verses for people's loved ones."
	geminiTemperature       = 0.8
)

// GeminiGenerator produces content through the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator builds a generator for the given model.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("generator: gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("generator: create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate asks the model for content. Callers wrap this with a timeout
// and a template fallback.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	temperature := float32(geminiTemperature)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(geminiSystemInstruction, genai.RoleUser),
		Temperature:       &temperature,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(req)), config)
	if err != nil {
		return "", fmt.Errorf("generator: gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("generator: gemini returned empty content")
	}
	return text, nil
}

func buildPrompt(req Request) string {
	language := "English"
	bouquet := "beautiful flowers"
	if req.Language == domain.LanguageTurkish {
		language = "Turkish"
		bouquet = "güzel çiçekler"
	}
	if len(req.FlowerNames) > 0 {
		bouquet = strings.Join(req.FlowerNames, ", ")
	}

	var form string
	switch req.Kind {
	case domain.ContentKindMessage:
		form = "a short, warm, heartfelt message (max 3-4 sentences)"
	case domain.ContentKindSong:
		form = "short song lyrics with a title and a chorus (max 8 lines)"
	default:
		form = "a short, emotional, and romantic poem (max 4-5 lines)"
	}

	occasion := req.Occasion.DisplayName(domain.LanguageEnglish)
	return fmt.Sprintf(`Recipient: %s
Occasion: %s
Bouquet Composition: %s
Target Language: %s

Please write %s for %s for %s.
You may subtly reference the flowers in the bouquet (%s), but it is not mandatory.
Language: %s.
Tone: Romantic, sincere, poetic.`,
		req.RecipientName, occasion, bouquet, language,
		form, req.RecipientName, occasion, bouquet, language)
}
