package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cetinibs/lovacards/internal/domain"
	"github.com/cetinibs/lovacards/internal/generator"
	"github.com/cetinibs/lovacards/internal/platform/jobs"
	"github.com/cetinibs/lovacards/internal/repositories"
)

var (
	// ErrCardNotFound indicates the card does not exist.
	ErrCardNotFound = errors.New("wizard: card not found")
	// ErrNotOwner indicates the caller does not own the card.
	ErrNotOwner = errors.New("wizard: caller does not own this card")
	// ErrCardFinished indicates a mutation was attempted on a finished card.
	ErrCardFinished = errors.New("wizard: card is already finished")
	// ErrStepNotReady indicates the current step's required fields are missing.
	ErrStepNotReady = errors.New("wizard: current step is not complete")
	// ErrContentRequired indicates finish was attempted without content.
	ErrContentRequired = errors.New("wizard: card content is required")
	// ErrContentTooLong caps manually edited content.
	ErrContentTooLong = errors.New("wizard: content exceeds the maximum length")
	// ErrGenerationInFlight blocks step changes while text generation is pending.
	ErrGenerationInFlight = errors.New("wizard: a generation attempt is still in flight")
)

// MaxContentLength bounds manually edited card content in runes.
const MaxContentLength = 2000

// DetailsInput carries the editable fields of the details step.
type DetailsInput struct {
	RecipientName string
	Occasion      domain.Occasion
	Language      domain.Language
}

// WizardService drives the card builder from start to finish.
type WizardService interface {
	Start(ctx context.Context, identity domain.Identity, lang domain.Language) (domain.Card, error)
	Get(ctx context.Context, identity domain.Identity, cardID string) (domain.Card, error)
	List(ctx context.Context, identity domain.Identity) ([]domain.Card, error)
	UpdateDetails(ctx context.Context, identity domain.Identity, cardID string, input DetailsInput) (domain.Card, error)
	ToggleFlower(ctx context.Context, identity domain.Identity, cardID string, flowerID int) (domain.Card, error)
	SelectMusic(ctx context.Context, identity domain.Identity, cardID string, trackID *int) (domain.Card, error)
	Advance(ctx context.Context, identity domain.Identity, cardID string) (domain.Card, error)
	Back(ctx context.Context, identity domain.Identity, cardID string) (domain.Card, error)
	Generate(ctx context.Context, identity domain.Identity, cardID string, kind domain.ContentKind) (domain.Card, error)
	SetContent(ctx context.Context, identity domain.Identity, cardID string, content string) (domain.Card, error)
	Finish(ctx context.Context, identity domain.Identity, cardID string) (domain.Card, error)
	Reset(ctx context.Context, identity domain.Identity, cardID string) (domain.Card, error)
}

// WizardServiceDeps wires the service dependencies.
type WizardServiceDeps struct {
	Cards        repositories.CardRepository
	Entitlements EntitlementService
	// Generator produces card content; nil falls back to templates only.
	Generator generator.Generator
	// Fallback is used when Generator fails or times out.
	Fallback generator.Generator
	// GenerateTimeout bounds one external generation attempt.
	GenerateTimeout time.Duration
	Publisher       jobs.Publisher
	Logger          *zap.Logger
	Clock           func() time.Time
}

type wizardService struct {
	cards           repositories.CardRepository
	entitlements    EntitlementService
	generator       generator.Generator
	fallback        generator.Generator
	generateTimeout time.Duration
	publisher       jobs.Publisher
	logger          *zap.Logger
	clock           func() time.Time
}

// NewWizardService validates deps and builds the service.
func NewWizardService(deps WizardServiceDeps) (WizardService, error) {
	if deps.Cards == nil {
		return nil, fmt.Errorf("services: card repository is required")
	}
	if deps.Entitlements == nil {
		return nil, fmt.Errorf("services: entitlement service is required")
	}
	fallback := deps.Fallback
	if fallback == nil {
		fallback = generator.NewTemplateGenerator()
	}
	gen := deps.Generator
	if gen == nil {
		gen = fallback
	}
	timeout := deps.GenerateTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = jobs.NopPublisher{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &wizardService{
		cards:           deps.Cards,
		entitlements:    deps.Entitlements,
		generator:       gen,
		fallback:        fallback,
		generateTimeout: timeout,
		publisher:       publisher,
		logger:          logger,
		clock:           func() time.Time { return clock().UTC() },
	}, nil
}

func (s *wizardService) Start(ctx context.Context, identity domain.Identity, lang domain.Language) (domain.Card, error) {
	if identity.Zero() {
		return domain.Card{}, fmt.Errorf("services: identity is required")
	}
	if err := s.entitlements.Authorize(ctx, identity); err != nil {
		return domain.Card{}, err
	}
	card := domain.NewCard(ulid.Make().String(), identity.Key(), lang, s.clock())
	if err := s.cards.Create(ctx, card); err != nil {
		return domain.Card{}, err
	}
	s.logger.Info("card draft started",
		zap.String("cardId", card.ID), zap.String("owner", card.OwnerKey))
	return card, nil
}

func (s *wizardService) Get(ctx context.Context, identity domain.Identity, cardID string) (domain.Card, error) {
	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return domain.Card{}, ErrCardNotFound
		}
		return domain.Card{}, err
	}
	if card.OwnerKey != identity.Key() {
		return domain.Card{}, ErrNotOwner
	}
	return card, nil
}

func (s *wizardService) List(ctx context.Context, identity domain.Identity) ([]domain.Card, error) {
	if identity.Zero() {
		return nil, fmt.Errorf("services: identity is required")
	}
	return s.cards.ListByOwner(ctx, identity.Key())
}

// mutateDraft runs fn over the caller's draft inside the repository
// transaction, stamping UpdatedAt on success.
func (s *wizardService) mutateDraft(ctx context.Context, identity domain.Identity, cardID string, fn func(*domain.Card) error) (domain.Card, error) {
	card, err := s.cards.Mutate(ctx, cardID, func(card *domain.Card) error {
		if card.OwnerKey != identity.Key() {
			return ErrNotOwner
		}
		if card.Status == domain.CardStatusFinished {
			return ErrCardFinished
		}
		if err := fn(card); err != nil {
			return err
		}
		card.UpdatedAt = s.clock()
		return nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return domain.Card{}, ErrCardNotFound
	}
	return card, err
}

func (s *wizardService) UpdateDetails(ctx context.Context, identity domain.Identity, cardID string, input DetailsInput) (domain.Card, error) {
	if err := domain.ValidateRecipientName(input.RecipientName); err != nil {
		return domain.Card{}, err
	}
	occasion := input.Occasion
	if _, ok := domain.ParseOccasion(string(occasion)); !ok {
		occasion = domain.DefaultOccasion
	}
	return s.mutateDraft(ctx, identity, cardID, func(card *domain.Card) error {
		card.RecipientName = strings.TrimSpace(input.RecipientName)
		card.Occasion = occasion
		if input.Language != "" {
			card.Language = domain.ParseLanguage(string(input.Language))
		}
		return nil
	})
}

func (s *wizardService) ToggleFlower(ctx context.Context, identity domain.Identity, cardID string, flowerID int) (domain.Card, error) {
	return s.mutateDraft(ctx, identity, cardID, func(card *domain.Card) error {
		return card.ToggleFlower(flowerID)
	})
}

func (s *wizardService) SelectMusic(ctx context.Context, identity domain.Identity, cardID string, trackID *int) (domain.Card, error) {
	return s.mutateDraft(ctx, identity, cardID, func(card *domain.Card) error {
		return card.SelectMusic(trackID)
	})
}

func (s *wizardService) Advance(ctx context.Context, identity domain.Identity, cardID string) (domain.Card, error) {
	return s.mutateDraft(ctx, identity, cardID, func(card *domain.Card) error {
		if card.Step >= domain.StepPreview {
			return nil
		}
		if card.Generation.InFlight(s.clock(), s.generateTimeout) {
			return ErrGenerationInFlight
		}
		if !card.StepReady(card.Step) {
			return ErrStepNotReady
		}
		card.Step++
		return nil
	})
}

func (s *wizardService) Back(ctx context.Context, identity domain.Identity, cardID string) (domain.Card, error) {
	return s.mutateDraft(ctx, identity, cardID, func(card *domain.Card) error {
		if card.Step > domain.StepDetails {
			card.Step--
		}
		return nil
	})
}

func (s *wizardService) SetContent(ctx context.Context, identity domain.Identity, cardID string, content string) (domain.Card, error) {
	trimmed := strings.TrimSpace(content)
	if len([]rune(trimmed)) > MaxContentLength {
		return domain.Card{}, ErrContentTooLong
	}
	return s.mutateDraft(ctx, identity, cardID, func(card *domain.Card) error {
		card.Content = trimmed
		// Manual edits supersede any in-flight generation.
		card.Generation = domain.GenerationState{Phase: domain.AsyncIdle}
		return nil
	})
}

func (s *wizardService) Generate(ctx context.Context, identity domain.Identity, cardID string, kind domain.ContentKind) (domain.Card, error) {
	if _, ok := domain.ParseContentKind(string(kind)); !ok {
		kind = domain.ContentKindPoem
	}

	// Claim the attempt first so concurrent regenerations and resets
	// can invalidate it through the token.
	token := ulid.Make().String()
	card, err := s.mutateDraft(ctx, identity, cardID, func(card *domain.Card) error {
		card.ContentKind = kind
		card.Generation = domain.GenerationState{
			Phase:     domain.AsyncPending,
			Token:     token,
			StartedAt: s.clock(),
		}
		return nil
	})
	if err != nil {
		return domain.Card{}, err
	}

	content := s.generate(ctx, card, kind)

	// Commit only when this attempt is still the current one.
	final, err := s.mutateDraft(ctx, identity, cardID, func(card *domain.Card) error {
		if !card.Generation.Matches(token) {
			return nil
		}
		card.Content = content
		card.Generation = domain.GenerationState{Phase: domain.AsyncSucceeded, Token: token}
		return nil
	})
	if err != nil {
		return domain.Card{}, err
	}
	return final, nil
}

func (s *wizardService) generate(ctx context.Context, card domain.Card, kind domain.ContentKind) string {
	req := generator.Request{
		RecipientName: card.RecipientName,
		Occasion:      card.Occasion,
		Kind:          kind,
		Language:      card.Language,
		FlowerNames:   card.BouquetNames(),
	}

	genCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()
	content, err := s.generator.Generate(genCtx, req)
	if err == nil && strings.TrimSpace(content) != "" {
		return content
	}
	if err != nil {
		s.logger.Warn("generation failed, using template fallback",
			zap.String("cardId", card.ID), zap.Error(err))
	}
	content, err = s.fallback.Generate(ctx, req)
	if err != nil {
		// The template generator never fails; guard anyway.
		s.logger.Error("fallback generation failed", zap.String("cardId", card.ID), zap.Error(err))
		return ""
	}
	return content
}

func (s *wizardService) Finish(ctx context.Context, identity domain.Identity, cardID string) (domain.Card, error) {
	existing, err := s.Get(ctx, identity, cardID)
	if err != nil {
		return domain.Card{}, err
	}
	// Repeating finish on an already finished card returns it as-is.
	if existing.Status == domain.CardStatusFinished {
		return existing, nil
	}

	token := ulid.Make().String()
	finished := false
	card, err := s.cards.Mutate(ctx, cardID, func(card *domain.Card) error {
		if card.OwnerKey != identity.Key() {
			return ErrNotOwner
		}
		if card.Status == domain.CardStatusFinished {
			return nil
		}
		if err := domain.ValidateRecipientName(card.RecipientName); err != nil {
			return err
		}
		if strings.TrimSpace(card.Content) == "" {
			return ErrContentRequired
		}
		now := s.clock()
		card.Status = domain.CardStatusFinished
		card.ShareToken = token
		card.Step = domain.StepRecipientView
		card.FinishedAt = &now
		card.UpdatedAt = now
		finished = true
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return domain.Card{}, ErrCardNotFound
		}
		return domain.Card{}, err
	}

	if finished {
		if _, err := s.entitlements.RecordCardCreated(ctx, identity); err != nil {
			s.logger.Warn("usage counter update failed",
				zap.String("cardId", card.ID), zap.Error(err))
		}
		event := jobs.Event{
			Type:       "card.finished",
			OccurredAt: s.clock(),
			Payload: map[string]any{
				"cardId":   card.ID,
				"occasion": string(card.Occasion),
				"owner":    card.OwnerKey,
			},
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish card.finished failed", zap.String("cardId", card.ID), zap.Error(err))
		}
		s.logger.Info("card finished", zap.String("cardId", card.ID))
	}
	return card, nil
}

func (s *wizardService) Reset(ctx context.Context, identity domain.Identity, cardID string) (domain.Card, error) {
	// Resetting starts the card over, so the same paywall check as Start
	// applies instead of silently wiping the draft.
	if err := s.entitlements.Authorize(ctx, identity); err != nil {
		return domain.Card{}, err
	}
	return s.mutateDraft(ctx, identity, cardID, func(card *domain.Card) error {
		fresh := domain.NewCard(card.ID, card.OwnerKey, card.Language, card.CreatedAt)
		fresh.UpdatedAt = s.clock()
		*card = fresh
		return nil
	})
}
