// Package handlers exposes the HTTP API.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/cetinibs/lovacards/internal/domain"
	"github.com/cetinibs/lovacards/internal/platform/httpx"
	"github.com/cetinibs/lovacards/internal/services"
)

type cardResponse struct {
	ID            string     `json:"id"`
	RecipientName string     `json:"recipientName"`
	Occasion      string     `json:"occasion"`
	Language      string     `json:"language"`
	Bouquet       []int      `json:"bouquet"`
	ContentKind   string     `json:"contentKind"`
	Content       string     `json:"content"`
	MusicID       *int       `json:"musicId"`
	Step          string     `json:"step"`
	Status        string     `json:"status"`
	ShareToken    string     `json:"shareToken,omitempty"`
	Generation    string     `json:"generation"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
}

func toCardResponse(card domain.Card) cardResponse {
	bouquet := card.Bouquet
	if bouquet == nil {
		bouquet = []int{}
	}
	generation := string(card.Generation.Phase)
	if generation == "" {
		generation = string(domain.AsyncIdle)
	}
	return cardResponse{
		ID:            card.ID,
		RecipientName: card.RecipientName,
		Occasion:      string(card.Occasion),
		Language:      string(card.Language),
		Bouquet:       bouquet,
		ContentKind:   string(card.ContentKind),
		Content:       card.Content,
		MusicID:       card.MusicID,
		Step:          card.Step.String(),
		Status:        string(card.Status),
		ShareToken:    card.ShareToken,
		Generation:    generation,
		CreatedAt:     card.CreatedAt,
		UpdatedAt:     card.UpdatedAt,
		FinishedAt:    card.FinishedAt,
	}
}

// sharedCardResponse is the public recipient view. It omits owner and
// wizard bookkeeping.
type sharedCardResponse struct {
	RecipientName string `json:"recipientName"`
	Occasion      string `json:"occasion"`
	Language      string `json:"language"`
	Bouquet       []int  `json:"bouquet"`
	ContentKind   string `json:"contentKind"`
	Content       string `json:"content"`
	MusicID       *int   `json:"musicId"`
}

func toSharedCardResponse(card domain.Card) sharedCardResponse {
	bouquet := card.Bouquet
	if bouquet == nil {
		bouquet = []int{}
	}
	return sharedCardResponse{
		RecipientName: card.RecipientName,
		Occasion:      string(card.Occasion),
		Language:      string(card.Language),
		Bouquet:       bouquet,
		ContentKind:   string(card.ContentKind),
		Content:       card.Content,
		MusicID:       card.MusicID,
	}
}

// writeServiceError maps service sentinels onto the error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrCardNotFound), errors.Is(err, services.ErrCardNotShared),
		errors.Is(err, services.ErrGalleryItemNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "not_found", "resource not found", nil)
	case errors.Is(err, services.ErrNotOwner):
		httpx.WriteError(w, r, http.StatusForbidden, "forbidden", "you do not own this card", nil)
	case errors.Is(err, services.ErrPaywall):
		httpx.WriteError(w, r, http.StatusPaymentRequired, "paywall", "free card limit reached", nil)
	case errors.Is(err, services.ErrEntitlementUnavailable):
		httpx.WriteError(w, r, http.StatusServiceUnavailable, "entitlements_unavailable", "usage store unavailable", nil)
	case errors.Is(err, services.ErrCardFinished):
		httpx.WriteError(w, r, http.StatusConflict, "card_finished", "this card is already finished", nil)
	case errors.Is(err, services.ErrGenerationInFlight):
		httpx.WriteError(w, r, http.StatusConflict, "generation_in_flight", "wait for the current generation to finish", nil)
	case errors.Is(err, services.ErrStepNotReady):
		httpx.WriteError(w, r, http.StatusUnprocessableEntity, "step_not_ready", "complete the current step first", nil)
	case errors.Is(err, services.ErrContentRequired):
		httpx.WriteError(w, r, http.StatusUnprocessableEntity, "content_required", "card content is required", nil)
	case errors.Is(err, services.ErrContentTooLong):
		httpx.WriteError(w, r, http.StatusUnprocessableEntity, "content_too_long", "card content is too long", nil)
	case errors.Is(err, domain.ErrRecipientNameRequired),
		errors.Is(err, domain.ErrRecipientNameTooShort),
		errors.Is(err, domain.ErrRecipientNameTooLong):
		httpx.WriteError(w, r, http.StatusUnprocessableEntity, "invalid_recipient_name", err.Error(), nil)
	case errors.Is(err, domain.ErrUnknownFlower), errors.Is(err, domain.ErrUnknownMusicTrack):
		httpx.WriteError(w, r, http.StatusUnprocessableEntity, "unknown_catalog_id", err.Error(), nil)
	case errors.Is(err, domain.ErrBouquetFull):
		httpx.WriteError(w, r, http.StatusUnprocessableEntity, "bouquet_full", "the bouquet already holds nine flowers", nil)
	case errors.Is(err, services.ErrBillingDisabled):
		httpx.WriteError(w, r, http.StatusNotImplemented, "billing_disabled", "billing is not configured", nil)
	default:
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}
