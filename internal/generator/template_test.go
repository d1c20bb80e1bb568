package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/cetinibs/lovacards/internal/domain"
)

func TestTemplateGeneratorCoversAllCombinations(t *testing.T) {
	gen := NewTemplateGenerator()
	ctx := context.Background()

	languages := []domain.Language{domain.LanguageEnglish, domain.LanguageTurkish}
	kinds := []domain.ContentKind{domain.ContentKindMessage, domain.ContentKindPoem, domain.ContentKindSong}
	occasions := []domain.Occasion{
		domain.OccasionValentine, domain.OccasionNewYear, domain.OccasionAnniversary,
		domain.OccasionBirthday, domain.OccasionSorry, domain.OccasionJustBecause,
	}

	for _, lang := range languages {
		for _, kind := range kinds {
			for _, occasion := range occasions {
				out, err := gen.Generate(ctx, Request{
					RecipientName: "Ayşe",
					Occasion:      occasion,
					Kind:          kind,
					Language:      lang,
				})
				if err != nil {
					t.Fatalf("%s/%s/%s: %v", lang, kind, occasion, err)
				}
				if out == "" {
					t.Fatalf("%s/%s/%s: empty content", lang, kind, occasion)
				}
				if !strings.Contains(out, "Ayşe") {
					t.Fatalf("%s/%s/%s: recipient name missing from %q", lang, kind, occasion, out)
				}
				if strings.Contains(out, "%!") || strings.Contains(out, "%s") {
					t.Fatalf("%s/%s/%s: bad substitution in %q", lang, kind, occasion, out)
				}
			}
		}
	}
}

func TestTemplateGeneratorUnknownOccasionFallsBack(t *testing.T) {
	gen := NewTemplateGenerator()
	out, err := gen.Generate(context.Background(), Request{
		RecipientName: "Sam",
		Occasion:      domain.Occasion("graduation"),
		Kind:          domain.ContentKindPoem,
		Language:      domain.LanguageEnglish,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "Sam") {
		t.Fatalf("expected birthday fallback with recipient name, got %q", out)
	}
}

func TestTemplateGeneratorEmptyName(t *testing.T) {
	gen := NewTemplateGenerator()
	out, err := gen.Generate(context.Background(), Request{
		Kind:     domain.ContentKindMessage,
		Occasion: domain.OccasionValentine,
		Language: domain.LanguageTurkish,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "Sevgilim") {
		t.Fatalf("expected placeholder name, got %q", out)
	}
}

func TestBuildPromptMentionsBouquet(t *testing.T) {
	prompt := buildPrompt(Request{
		RecipientName: "Sarah",
		Occasion:      domain.OccasionValentine,
		Kind:          domain.ContentKindPoem,
		Language:      domain.LanguageEnglish,
		FlowerNames:   []string{"Red Rose", "Tulip"},
	})
	if !strings.Contains(prompt, "Red Rose, Tulip") {
		t.Fatalf("bouquet missing from prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "Sarah") {
		t.Fatalf("recipient missing from prompt: %q", prompt)
	}
}

func TestBuildPromptDefaultBouquetByLanguage(t *testing.T) {
	prompt := buildPrompt(Request{
		RecipientName: "Ayşe",
		Occasion:      domain.OccasionValentine,
		Kind:          domain.ContentKindPoem,
		Language:      domain.LanguageTurkish,
	})
	if !strings.Contains(prompt, "güzel çiçekler") {
		t.Fatalf("expected turkish default bouquet, got %q", prompt)
	}
}
