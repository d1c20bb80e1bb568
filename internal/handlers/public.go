package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cetinibs/lovacards/internal/domain"
	"github.com/cetinibs/lovacards/internal/platform/httpx"
	"github.com/cetinibs/lovacards/internal/services"
)

// PublicHandler serves the unauthenticated surfaces: the catalog, the
// recipient view and the gallery.
type PublicHandler struct {
	share   services.ShareService
	gallery services.GalleryService
}

// NewPublicHandler builds the handler.
func NewPublicHandler(share services.ShareService, gallery services.GalleryService) *PublicHandler {
	return &PublicHandler{share: share, gallery: gallery}
}

// Routes registers the endpoints.
func (h *PublicHandler) Routes(r chi.Router) {
	r.Get("/catalog", h.catalog)
	r.Get("/shared/{token}", h.view)
	r.Get("/shared/{token}/qr.png", h.qr)
	r.Get("/gallery", h.galleryList)
	r.Post("/gallery/{itemID}/like", h.galleryLike)
}

func (h *PublicHandler) catalog(w http.ResponseWriter, r *http.Request) {
	lang := domain.ParseLanguage(r.URL.Query().Get("lang"))

	occasions := make([]map[string]string, 0, len(domain.Occasions))
	for _, occasion := range domain.Occasions {
		occasions = append(occasions, map[string]string{
			"id":   string(occasion),
			"name": occasion.DisplayName(lang),
		})
	}
	flowers := make([]map[string]any, 0, len(domain.Flowers))
	for _, flower := range domain.Flowers {
		flowers = append(flowers, map[string]any{
			"id":    flower.ID,
			"glyph": flower.Glyph,
			"name":  flower.DisplayName(lang),
		})
	}
	tracks := make([]map[string]any, 0, len(domain.MusicTracks))
	for _, track := range domain.MusicTracks {
		tracks = append(tracks, map[string]any{
			"id":    track.ID,
			"glyph": track.Glyph,
			"name":  track.Name,
		})
	}

	httpx.WriteJSON(w, r, http.StatusOK, map[string]any{
		"occasions":      occasions,
		"flowers":        flowers,
		"musicTracks":    tracks,
		"maxBouquetSize": domain.MaxBouquetSize,
		"freeCardLimit":  domain.FreeCardLimit,
	})
}

func (h *PublicHandler) view(w http.ResponseWriter, r *http.Request) {
	card, err := h.share.View(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, toSharedCardResponse(card))
}

func (h *PublicHandler) qr(w http.ResponseWriter, r *http.Request) {
	png, err := h.share.QRCode(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *PublicHandler) galleryList(w http.ResponseWriter, r *http.Request) {
	items, err := h.gallery.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{
			"id":            item.ID,
			"recipientName": item.RecipientName,
			"occasion":      string(item.Occasion),
			"bouquet":       item.Bouquet,
			"content":       item.Content,
			"musicId":       item.MusicID,
			"likes":         item.Likes,
		})
	}
	httpx.WriteJSON(w, r, http.StatusOK, map[string]any{"items": out})
}

func (h *PublicHandler) galleryLike(w http.ResponseWriter, r *http.Request) {
	item, err := h.gallery.Like(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, map[string]any{"id": item.ID, "likes": item.Likes})
}
