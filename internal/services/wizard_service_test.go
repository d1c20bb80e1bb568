package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cetinibs/lovacards/internal/domain"
	"github.com/cetinibs/lovacards/internal/generator"
	"github.com/cetinibs/lovacards/internal/repositories"
)

var fixedNow = time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type stubCardRepo struct {
	mu    sync.Mutex
	cards map[string]domain.Card
}

func newStubCardRepo() *stubCardRepo {
	return &stubCardRepo{cards: make(map[string]domain.Card)}
}

func (r *stubCardRepo) Create(ctx context.Context, card domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[card.ID] = card
	return nil
}

func (r *stubCardRepo) Get(ctx context.Context, id string) (domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[id]
	if !ok {
		return domain.Card{}, repositories.ErrNotFound
	}
	return card, nil
}

func (r *stubCardRepo) GetByShareToken(ctx context.Context, token string) (domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, card := range r.cards {
		if card.ShareToken == token {
			return card, nil
		}
	}
	return domain.Card{}, repositories.ErrNotFound
}

func (r *stubCardRepo) Mutate(ctx context.Context, id string, fn func(*domain.Card) error) (domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[id]
	if !ok {
		return domain.Card{}, repositories.ErrNotFound
	}
	if err := fn(&card); err != nil {
		return domain.Card{}, err
	}
	r.cards[id] = card
	return card, nil
}

func (r *stubCardRepo) ListByOwner(ctx context.Context, ownerKey string) ([]domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Card
	for _, card := range r.cards {
		if card.OwnerKey == ownerKey {
			out = append(out, card)
		}
	}
	return out, nil
}

type stubEntitlementRepo struct {
	mu      sync.Mutex
	records map[string]domain.Entitlement
	getErr  error
}

func newStubEntitlementRepo() *stubEntitlementRepo {
	return &stubEntitlementRepo{records: make(map[string]domain.Entitlement)}
}

func (r *stubEntitlementRepo) Get(ctx context.Context, identity domain.Identity) (domain.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return domain.Entitlement{}, r.getErr
	}
	record, ok := r.records[identity.Key()]
	if !ok {
		return domain.Entitlement{Identity: identity}, nil
	}
	return record, nil
}

func (r *stubEntitlementRepo) IncrementCardsCreated(ctx context.Context, identity domain.Identity) (domain.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record := r.records[identity.Key()]
	record.Identity = identity
	record.CardsCreated++
	r.records[identity.Key()] = record
	return record, nil
}

func (r *stubEntitlementRepo) SetPremium(ctx context.Context, userID string, active bool, until *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity := domain.UserIdentity(userID)
	record := r.records[identity.Key()]
	record.Identity = identity
	record.IsPremium = active
	record.PremiumUntil = until
	r.records[identity.Key()] = record
	return nil
}

func (r *stubEntitlementRepo) Migrate(ctx context.Context, anon, user domain.Identity) (domain.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	anonRecord := r.records[anon.Key()]
	userRecord := r.records[user.Key()]
	userRecord.Identity = user
	userRecord.CardsCreated += anonRecord.CardsCreated
	anonRecord.CardsCreated = 0
	r.records[anon.Key()] = anonRecord
	r.records[user.Key()] = userRecord
	return userRecord, nil
}

type scriptedGenerator struct {
	content string
	err     error
	calls   int
}

func (g *scriptedGenerator) Generate(ctx context.Context, req generator.Request) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.content, nil
}

func newWizard(t *testing.T, cards *stubCardRepo, entRepo *stubEntitlementRepo, gen generator.Generator) WizardService {
	t.Helper()
	ents, err := NewEntitlementService(EntitlementServiceDeps{Entitlements: entRepo, Clock: fixedClock})
	if err != nil {
		t.Fatalf("NewEntitlementService: %v", err)
	}
	svc, err := NewWizardService(WizardServiceDeps{
		Cards:        cards,
		Entitlements: ents,
		Generator:    gen,
		Clock:        fixedClock,
	})
	if err != nil {
		t.Fatalf("NewWizardService: %v", err)
	}
	return svc
}

func TestStartCreatesDraftWithDefaults(t *testing.T) {
	cards := newStubCardRepo()
	svc := newWizard(t, cards, newStubEntitlementRepo(), nil)
	identity := domain.AnonymousIdentity("sess-1")

	card, err := svc.Start(context.Background(), identity, domain.LanguageTurkish)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if card.Status != domain.CardStatusDraft || card.Step != domain.StepDetails {
		t.Fatalf("unexpected draft state %+v", card)
	}
	if card.Occasion != domain.DefaultOccasion {
		t.Fatalf("unexpected default occasion %q", card.Occasion)
	}
	if card.OwnerKey != identity.Key() {
		t.Fatalf("unexpected owner key %q", card.OwnerKey)
	}
}

func TestStartBlockedByPaywall(t *testing.T) {
	cards := newStubCardRepo()
	entRepo := newStubEntitlementRepo()
	identity := domain.AnonymousIdentity("sess-1")
	entRepo.records[identity.Key()] = domain.Entitlement{Identity: identity, CardsCreated: domain.FreeCardLimit}
	svc := newWizard(t, cards, entRepo, nil)

	if _, err := svc.Start(context.Background(), identity, domain.LanguageEnglish); !errors.Is(err, ErrPaywall) {
		t.Fatalf("expected ErrPaywall, got %v", err)
	}
}

func TestStartAllowedForPremium(t *testing.T) {
	cards := newStubCardRepo()
	entRepo := newStubEntitlementRepo()
	identity := domain.UserIdentity("user-1")
	entRepo.records[identity.Key()] = domain.Entitlement{Identity: identity, CardsCreated: 5, IsPremium: true}
	svc := newWizard(t, cards, entRepo, nil)

	if _, err := svc.Start(context.Background(), identity, domain.LanguageEnglish); err != nil {
		t.Fatalf("premium start: %v", err)
	}
}

func startDraft(t *testing.T, svc WizardService, identity domain.Identity) domain.Card {
	t.Helper()
	card, err := svc.Start(context.Background(), identity, domain.LanguageEnglish)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return card
}

func TestAdvanceRequiresRecipientName(t *testing.T) {
	svc := newWizard(t, newStubCardRepo(), newStubEntitlementRepo(), nil)
	identity := domain.AnonymousIdentity("sess-1")
	card := startDraft(t, svc, identity)

	if _, err := svc.Advance(context.Background(), identity, card.ID); !errors.Is(err, ErrStepNotReady) {
		t.Fatalf("expected ErrStepNotReady, got %v", err)
	}

	if _, err := svc.UpdateDetails(context.Background(), identity, card.ID, DetailsInput{
		RecipientName: "Sarah",
		Occasion:      domain.OccasionValentine,
	}); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	got, err := svc.Advance(context.Background(), identity, card.ID)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if got.Step != domain.StepBouquet {
		t.Fatalf("expected bouquet step, got %v", got.Step)
	}
}

func TestAdvanceBlockedWhileGenerationPending(t *testing.T) {
	cards := newStubCardRepo()
	svc := newWizard(t, cards, newStubEntitlementRepo(), nil)
	identity := domain.AnonymousIdentity("sess-1")
	card := startDraft(t, svc, identity)
	if _, err := svc.UpdateDetails(context.Background(), identity, card.ID, DetailsInput{
		RecipientName: "Sarah", Occasion: domain.OccasionValentine,
	}); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}

	cards.mu.Lock()
	pending := cards.cards[card.ID]
	pending.Generation = domain.GenerationState{Phase: domain.AsyncPending, Token: "tok", StartedAt: fixedNow}
	cards.cards[card.ID] = pending
	cards.mu.Unlock()

	if _, err := svc.Advance(context.Background(), identity, card.ID); !errors.Is(err, ErrGenerationInFlight) {
		t.Fatalf("expected ErrGenerationInFlight, got %v", err)
	}
}

func TestAdvanceIgnoresAbandonedGenerationClaim(t *testing.T) {
	cards := newStubCardRepo()
	svc := newWizard(t, cards, newStubEntitlementRepo(), nil)
	identity := domain.AnonymousIdentity("sess-1")
	card := startDraft(t, svc, identity)
	if _, err := svc.UpdateDetails(context.Background(), identity, card.ID, DetailsInput{
		RecipientName: "Sarah", Occasion: domain.OccasionValentine,
	}); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}

	// A claim left behind by a crashed attempt, older than the
	// generation timeout, must not wedge the wizard.
	cards.mu.Lock()
	stale := cards.cards[card.ID]
	stale.Generation = domain.GenerationState{
		Phase:     domain.AsyncPending,
		Token:     "tok",
		StartedAt: fixedNow.Add(-time.Minute),
	}
	cards.cards[card.ID] = stale
	cards.mu.Unlock()

	got, err := svc.Advance(context.Background(), identity, card.ID)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if got.Step != domain.StepBouquet {
		t.Fatalf("expected bouquet step, got %v", got.Step)
	}
}

func TestBackStopsAtDetails(t *testing.T) {
	svc := newWizard(t, newStubCardRepo(), newStubEntitlementRepo(), nil)
	identity := domain.AnonymousIdentity("sess-1")
	card := startDraft(t, svc, identity)

	got, err := svc.Back(context.Background(), identity, card.ID)
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if got.Step != domain.StepDetails {
		t.Fatalf("expected details step, got %v", got.Step)
	}
}

func TestToggleFlowerOwnershipEnforced(t *testing.T) {
	svc := newWizard(t, newStubCardRepo(), newStubEntitlementRepo(), nil)
	owner := domain.AnonymousIdentity("sess-1")
	card := startDraft(t, svc, owner)

	other := domain.AnonymousIdentity("sess-2")
	if _, err := svc.ToggleFlower(context.Background(), other, card.ID, 1); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestGenerateUsesConfiguredGenerator(t *testing.T) {
	gen := &scriptedGenerator{content: "a bespoke poem"}
	svc := newWizard(t, newStubCardRepo(), newStubEntitlementRepo(), gen)
	identity := domain.AnonymousIdentity("sess-1")
	card := startDraft(t, svc, identity)

	got, err := svc.Generate(context.Background(), identity, card.ID, domain.ContentKindPoem)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.Content != "a bespoke poem" {
		t.Fatalf("unexpected content %q", got.Content)
	}
	if got.Generation.Phase != domain.AsyncSucceeded {
		t.Fatalf("unexpected generation phase %q", got.Generation.Phase)
	}
}

func TestGenerateFallsBackToTemplates(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("quota exceeded")}
	svc := newWizard(t, newStubCardRepo(), newStubEntitlementRepo(), gen)
	identity := domain.AnonymousIdentity("sess-1")
	card := startDraft(t, svc, identity)
	if _, err := svc.UpdateDetails(context.Background(), identity, card.ID, DetailsInput{
		RecipientName: "Sarah", Occasion: domain.OccasionValentine,
	}); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}

	got, err := svc.Generate(context.Background(), identity, card.ID, domain.ContentKindMessage)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.Content == "" {
		t.Fatalf("fallback produced empty content")
	}
	if !strings.Contains(got.Content, "Sarah") {
		t.Fatalf("fallback content missing recipient: %q", got.Content)
	}
}

type hookedGenerator struct {
	content string
	hook    func()
}

func (g *hookedGenerator) Generate(ctx context.Context, req generator.Request) (string, error) {
	if g.hook != nil {
		g.hook()
	}
	return g.content, nil
}

func TestStaleGenerationResultDiscarded(t *testing.T) {
	cards := newStubCardRepo()
	identity := domain.AnonymousIdentity("sess-1")

	var svc WizardService
	var cardID string
	gen := &hookedGenerator{content: "late result", hook: func() {
		// The user hand-edits while the call is still in flight, which
		// invalidates the pending attempt's token.
		if _, err := svc.SetContent(context.Background(), identity, cardID, "my own words"); err != nil {
			t.Fatalf("SetContent during generation: %v", err)
		}
	}}
	svc = newWizard(t, cards, newStubEntitlementRepo(), gen)
	card := startDraft(t, svc, identity)
	cardID = card.ID
	if _, err := svc.UpdateDetails(context.Background(), identity, cardID, DetailsInput{
		RecipientName: "Sarah", Occasion: domain.OccasionValentine,
	}); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}

	got, err := svc.Generate(context.Background(), identity, cardID, domain.ContentKindPoem)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.Content != "my own words" {
		t.Fatalf("stale result overwrote the manual edit: %q", got.Content)
	}
}

func finishableDraft(t *testing.T, svc WizardService, identity domain.Identity) domain.Card {
	t.Helper()
	card := startDraft(t, svc, identity)
	ctx := context.Background()
	if _, err := svc.UpdateDetails(ctx, identity, card.ID, DetailsInput{
		RecipientName: "Sarah", Occasion: domain.OccasionValentine,
	}); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if _, err := svc.SetContent(ctx, identity, card.ID, "roses are red"); err != nil {
		t.Fatalf("SetContent: %v", err)
	}
	return card
}

func TestFinishAssignsShareTokenAndCountsUsage(t *testing.T) {
	entRepo := newStubEntitlementRepo()
	svc := newWizard(t, newStubCardRepo(), entRepo, nil)
	identity := domain.AnonymousIdentity("sess-1")
	card := finishableDraft(t, svc, identity)

	got, err := svc.Finish(context.Background(), identity, card.ID)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got.Status != domain.CardStatusFinished || got.ShareToken == "" {
		t.Fatalf("unexpected finished card %+v", got)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(fixedNow) {
		t.Fatalf("unexpected finish time %v", got.FinishedAt)
	}
	record, _ := entRepo.Get(context.Background(), identity)
	if record.CardsCreated != 1 {
		t.Fatalf("expected usage counter 1, got %d", record.CardsCreated)
	}
}

func TestFullFlowConsumesFreeCard(t *testing.T) {
	entRepo := newStubEntitlementRepo()
	gen := &scriptedGenerator{content: "yıllar seninle güzel"}
	svc := newWizard(t, newStubCardRepo(), entRepo, gen)
	identity := domain.AnonymousIdentity("sess-1")
	ctx := context.Background()

	card, err := svc.Start(ctx, identity, domain.LanguageTurkish)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.UpdateDetails(ctx, identity, card.ID, DetailsInput{
		RecipientName: "Ayşe", Occasion: domain.OccasionAnniversary,
	}); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	for _, flowerID := range []int{1, 2} {
		if _, err := svc.ToggleFlower(ctx, identity, card.ID, flowerID); err != nil {
			t.Fatalf("ToggleFlower(%d): %v", flowerID, err)
		}
	}
	if _, err := svc.Generate(ctx, identity, card.ID, domain.ContentKindPoem); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.Finish(ctx, identity, card.ID); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	record, err := entRepo.Get(ctx, identity)
	if err != nil {
		t.Fatalf("Get entitlement: %v", err)
	}
	if record.CardsCreated != 1 {
		t.Fatalf("expected one recorded card, got %d", record.CardsCreated)
	}
	if record.CanCreateCard() {
		t.Fatalf("free identity should be out of cards after one finish")
	}
	if _, err := svc.Start(ctx, identity, domain.LanguageTurkish); !errors.Is(err, ErrPaywall) {
		t.Fatalf("expected ErrPaywall on second start, got %v", err)
	}
}

func TestFinishIsIdempotent(t *testing.T) {
	entRepo := newStubEntitlementRepo()
	svc := newWizard(t, newStubCardRepo(), entRepo, nil)
	identity := domain.AnonymousIdentity("sess-1")
	card := finishableDraft(t, svc, identity)

	first, err := svc.Finish(context.Background(), identity, card.ID)
	if err != nil {
		t.Fatalf("first finish: %v", err)
	}
	second, err := svc.Finish(context.Background(), identity, card.ID)
	if err != nil {
		t.Fatalf("second finish: %v", err)
	}
	if second.ShareToken != first.ShareToken {
		t.Fatalf("share token changed on repeat finish: %q vs %q", second.ShareToken, first.ShareToken)
	}
	record, _ := entRepo.Get(context.Background(), identity)
	if record.CardsCreated != 1 {
		t.Fatalf("repeat finish must not double-count usage, got %d", record.CardsCreated)
	}
}

func TestFinishRequiresContent(t *testing.T) {
	svc := newWizard(t, newStubCardRepo(), newStubEntitlementRepo(), nil)
	identity := domain.AnonymousIdentity("sess-1")
	card := startDraft(t, svc, identity)
	if _, err := svc.UpdateDetails(context.Background(), identity, card.ID, DetailsInput{
		RecipientName: "Sarah", Occasion: domain.OccasionValentine,
	}); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}

	if _, err := svc.Finish(context.Background(), identity, card.ID); !errors.Is(err, ErrContentRequired) {
		t.Fatalf("expected ErrContentRequired, got %v", err)
	}
}

func TestMutationsRejectedAfterFinish(t *testing.T) {
	svc := newWizard(t, newStubCardRepo(), newStubEntitlementRepo(), nil)
	identity := domain.AnonymousIdentity("sess-1")
	card := finishableDraft(t, svc, identity)
	if _, err := svc.Finish(context.Background(), identity, card.ID); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if _, err := svc.ToggleFlower(context.Background(), identity, card.ID, 1); !errors.Is(err, ErrCardFinished) {
		t.Fatalf("expected ErrCardFinished, got %v", err)
	}
}

func TestResetReturnsDraftToDefaults(t *testing.T) {
	svc := newWizard(t, newStubCardRepo(), newStubEntitlementRepo(), nil)
	identity := domain.AnonymousIdentity("sess-1")
	card := startDraft(t, svc, identity)
	ctx := context.Background()
	if _, err := svc.UpdateDetails(ctx, identity, card.ID, DetailsInput{
		RecipientName: "Sarah", Occasion: domain.OccasionBirthday,
	}); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if _, err := svc.ToggleFlower(ctx, identity, card.ID, 2); err != nil {
		t.Fatalf("ToggleFlower: %v", err)
	}

	got, err := svc.Reset(ctx, identity, card.ID)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got.RecipientName != "" || len(got.Bouquet) != 0 || got.Step != domain.StepDetails {
		t.Fatalf("reset left state behind: %+v", got)
	}
	if got.Occasion != domain.DefaultOccasion {
		t.Fatalf("reset kept occasion %q", got.Occasion)
	}
}

func TestResetBlockedByPaywall(t *testing.T) {
	entRepo := newStubEntitlementRepo()
	cards := newStubCardRepo()
	svc := newWizard(t, cards, entRepo, nil)
	identity := domain.AnonymousIdentity("sess-1")
	card := startDraft(t, svc, identity)
	if _, err := svc.UpdateDetails(context.Background(), identity, card.ID, DetailsInput{
		RecipientName: "Sarah", Occasion: domain.OccasionValentine,
	}); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}

	// The free card gets used up elsewhere while this draft sits idle.
	entRepo.mu.Lock()
	entRepo.records[identity.Key()] = domain.Entitlement{Identity: identity, CardsCreated: domain.FreeCardLimit}
	entRepo.mu.Unlock()

	if _, err := svc.Reset(context.Background(), identity, card.ID); !errors.Is(err, ErrPaywall) {
		t.Fatalf("expected ErrPaywall, got %v", err)
	}
	got, err := svc.Get(context.Background(), identity, card.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RecipientName != "Sarah" {
		t.Fatalf("denied reset must not clear the draft: %+v", got)
	}
}

func TestAuthorizeFailClosed(t *testing.T) {
	entRepo := newStubEntitlementRepo()
	entRepo.getErr = errors.New("firestore down")
	svc, err := NewEntitlementService(EntitlementServiceDeps{Entitlements: entRepo, Clock: fixedClock})
	if err != nil {
		t.Fatalf("NewEntitlementService: %v", err)
	}
	if err := svc.Authorize(context.Background(), domain.AnonymousIdentity("sess-1")); !errors.Is(err, ErrEntitlementUnavailable) {
		t.Fatalf("expected ErrEntitlementUnavailable, got %v", err)
	}
}

func TestAuthorizeFailOpen(t *testing.T) {
	entRepo := newStubEntitlementRepo()
	entRepo.getErr = errors.New("firestore down")
	svc, err := NewEntitlementService(EntitlementServiceDeps{Entitlements: entRepo, FailOpen: true, Clock: fixedClock})
	if err != nil {
		t.Fatalf("NewEntitlementService: %v", err)
	}
	if err := svc.Authorize(context.Background(), domain.AnonymousIdentity("sess-1")); err != nil {
		t.Fatalf("fail-open authorize: %v", err)
	}
}
