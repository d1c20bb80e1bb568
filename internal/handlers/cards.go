package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cetinibs/lovacards/internal/domain"
	"github.com/cetinibs/lovacards/internal/platform/auth"
	"github.com/cetinibs/lovacards/internal/platform/httpx"
	"github.com/cetinibs/lovacards/internal/services"
)

// CardsHandler serves the card builder endpoints.
type CardsHandler struct {
	wizard services.WizardService
	share  services.ShareService
}

// NewCardsHandler builds the handler.
func NewCardsHandler(wizard services.WizardService, share services.ShareService) *CardsHandler {
	return &CardsHandler{wizard: wizard, share: share}
}

// Routes registers the endpoints. The caller wraps them with identity
// middleware.
func (h *CardsHandler) Routes(r chi.Router) {
	r.Post("/", h.start)
	r.Get("/", h.list)
	r.Route("/{cardID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/details", h.updateDetails)
		r.Post("/flowers/{flowerID}/toggle", h.toggleFlower)
		r.Put("/music", h.selectMusic)
		r.Post("/advance", h.advance)
		r.Post("/back", h.back)
		r.Post("/generate", h.generate)
		r.Put("/content", h.setContent)
		r.Post("/finish", h.finish)
		r.Post("/reset", h.reset)
		r.Get("/share", h.shareArtifacts)
		r.Post("/share/copied", h.markCopied)
	})
}

func (h *CardsHandler) identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "identity required", nil)
		return domain.Identity{}, false
	}
	return identity, true
}

func (h *CardsHandler) start(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var body struct {
		Language string `json:"language"`
	}
	// An empty body means English.
	_ = json.NewDecoder(r.Body).Decode(&body)

	card, err := h.wizard.Start(r.Context(), identity, domain.ParseLanguage(body.Language))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, toCardResponse(card))
}

func (h *CardsHandler) list(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	cards, err := h.wizard.List(r.Context(), identity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]cardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, toCardResponse(card))
	}
	httpx.WriteJSON(w, r, http.StatusOK, map[string]any{"cards": out})
}

func (h *CardsHandler) get(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	card, err := h.wizard.Get(r.Context(), identity, chi.URLParam(r, "cardID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, toCardResponse(card))
}

func (h *CardsHandler) updateDetails(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var body struct {
		RecipientName string `json:"recipientName"`
		Occasion      string `json:"occasion"`
		Language      string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "malformed JSON body", nil)
		return
	}
	card, err := h.wizard.UpdateDetails(r.Context(), identity, chi.URLParam(r, "cardID"), services.DetailsInput{
		RecipientName: body.RecipientName,
		Occasion:      domain.Occasion(body.Occasion),
		Language:      domain.Language(body.Language),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, toCardResponse(card))
}

func (h *CardsHandler) toggleFlower(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	flowerID, err := strconv.Atoi(chi.URLParam(r, "flowerID"))
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_flower_id", "flower id must be numeric", nil)
		return
	}
	card, err := h.wizard.ToggleFlower(r.Context(), identity, chi.URLParam(r, "cardID"), flowerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, toCardResponse(card))
}

func (h *CardsHandler) selectMusic(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var body struct {
		TrackID *int `json:"trackId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "malformed JSON body", nil)
		return
	}
	card, err := h.wizard.SelectMusic(r.Context(), identity, chi.URLParam(r, "cardID"), body.TrackID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, toCardResponse(card))
}

func (h *CardsHandler) advance(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.wizard.Advance)
}

func (h *CardsHandler) back(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.wizard.Back)
}

func (h *CardsHandler) reset(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.wizard.Reset)
}

func (h *CardsHandler) step(w http.ResponseWriter, r *http.Request, op func(context.Context, domain.Identity, string) (domain.Card, error)) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	card, err := op(r.Context(), identity, chi.URLParam(r, "cardID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, toCardResponse(card))
}

func (h *CardsHandler) generate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var body struct {
		Kind string `json:"kind"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	kind := domain.ContentKindPoem
	if body.Kind != "" {
		parsed, ok := domain.ParseContentKind(body.Kind)
		if !ok {
			httpx.WriteError(w, r, http.StatusUnprocessableEntity, "unknown_content_kind", "kind must be message, poem or song", nil)
			return
		}
		kind = parsed
	}

	card, err := h.wizard.Generate(r.Context(), identity, chi.URLParam(r, "cardID"), kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, toCardResponse(card))
}

func (h *CardsHandler) setContent(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "malformed JSON body", nil)
		return
	}
	card, err := h.wizard.SetContent(r.Context(), identity, chi.URLParam(r, "cardID"), body.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, toCardResponse(card))
}

func (h *CardsHandler) finish(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	card, err := h.wizard.Finish(r.Context(), identity, chi.URLParam(r, "cardID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	artifacts, err := h.share.Artifacts(card)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, map[string]any{
		"card": toCardResponse(card),
		"share": map[string]string{
			"deepLink":    artifacts.DeepLink,
			"whatsappUrl": artifacts.WhatsAppURL,
			"qrCodeUrl":   artifacts.QRCodeURL,
		},
	})
}

func (h *CardsHandler) shareArtifacts(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	card, err := h.wizard.Get(r.Context(), identity, chi.URLParam(r, "cardID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	artifacts, err := h.share.Artifacts(card)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, map[string]any{
		"deepLink":    artifacts.DeepLink,
		"whatsappUrl": artifacts.WhatsAppURL,
		"qrCodeUrl":   artifacts.QRCodeURL,
		"copied":      h.share.Copied(card.ShareToken),
	})
}

func (h *CardsHandler) markCopied(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	card, err := h.wizard.Get(r.Context(), identity, chi.URLParam(r, "cardID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if card.Status != domain.CardStatusFinished {
		writeServiceError(w, r, services.ErrCardNotShared)
		return
	}
	h.share.MarkCopied(card.ShareToken)
	httpx.WriteJSON(w, r, http.StatusOK, map[string]bool{"copied": true})
}
