// Package generator produces card content from a recipient, occasion
// and bouquet.
package generator

import (
	"context"

	"github.com/cetinibs/lovacards/internal/domain"
)

// Request describes the content to generate.
type Request struct {
	RecipientName string
	Occasion      domain.Occasion
	Kind          domain.ContentKind
	Language      domain.Language
	// FlowerNames are the display names of the selected bouquet,
	// already localized. May be empty.
	FlowerNames []string
}

// Generator produces one piece of card content.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
