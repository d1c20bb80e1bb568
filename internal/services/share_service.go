package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/cetinibs/lovacards/internal/domain"
	"github.com/cetinibs/lovacards/internal/repositories"
)

// ErrCardNotShared indicates the share token does not resolve to a
// finished card.
var ErrCardNotShared = errors.New("share: no card for this token")

const (
	// shareContentLimit bounds the card content embedded in share text,
	// in runes.
	shareContentLimit = 100
	// copiedFlagTTL is how long the copied indicator stays set.
	copiedFlagTTL = 2 * time.Second
	qrImageSize   = 256
)

// Artifacts are the share surfaces of one finished card.
type Artifacts struct {
	DeepLink    string
	WhatsAppURL string
	QRCodeURL   string
}

// ShareService resolves finished cards for recipients and produces
// share artifacts for senders.
type ShareService interface {
	// View returns the finished card behind a share token.
	View(ctx context.Context, token string) (domain.Card, error)
	// Artifacts builds the share surfaces for a finished card.
	Artifacts(card domain.Card) (Artifacts, error)
	// QRCode renders the deep link as a PNG.
	QRCode(ctx context.Context, token string) ([]byte, error)
	// MarkCopied records that the sender copied the link just now.
	MarkCopied(token string)
	// Copied reports whether the link was copied within the last two
	// seconds.
	Copied(token string) bool
}

// ShareServiceDeps wires the service dependencies.
type ShareServiceDeps struct {
	Cards repositories.CardRepository
	// BaseURL is the public origin for deep links, without trailing slash.
	BaseURL string
	Logger  *zap.Logger
	Clock   func() time.Time
}

type shareService struct {
	cards   repositories.CardRepository
	baseURL string
	logger  *zap.Logger
	clock   func() time.Time

	mu     sync.Mutex
	copied map[string]time.Time
}

// NewShareService validates deps and builds the service.
func NewShareService(deps ShareServiceDeps) (ShareService, error) {
	if deps.Cards == nil {
		return nil, fmt.Errorf("services: card repository is required")
	}
	if deps.BaseURL == "" {
		return nil, fmt.Errorf("services: share base url is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &shareService{
		cards:   deps.Cards,
		baseURL: strings.TrimRight(deps.BaseURL, "/"),
		logger:  logger,
		clock:   clock,
		copied:  make(map[string]time.Time),
	}, nil
}

// deepLink carries the share token as a query parameter so the landing
// page can read it without path rewrites.
func (s *shareService) deepLink(token string) string {
	return fmt.Sprintf("%s/view?card=%s", s.baseURL, url.QueryEscape(token))
}

func (s *shareService) View(ctx context.Context, token string) (domain.Card, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Card{}, ErrCardNotShared
	}
	card, err := s.cards.GetByShareToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return domain.Card{}, ErrCardNotShared
		}
		return domain.Card{}, err
	}
	if card.Status != domain.CardStatusFinished {
		return domain.Card{}, ErrCardNotShared
	}
	return card, nil
}

func (s *shareService) Artifacts(card domain.Card) (Artifacts, error) {
	if card.Status != domain.CardStatusFinished || card.ShareToken == "" {
		return Artifacts{}, ErrCardNotShared
	}
	deepLink := s.deepLink(card.ShareToken)
	return Artifacts{
		DeepLink:    deepLink,
		WhatsAppURL: whatsAppURL(card, deepLink),
		QRCodeURL:   fmt.Sprintf("%s/v1/shared/%s/qr.png", s.baseURL, card.ShareToken),
	}, nil
}

func (s *shareService) QRCode(ctx context.Context, token string) ([]byte, error) {
	card, err := s.View(ctx, token)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(s.deepLink(card.ShareToken), qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("share: encode qr: %w", err)
	}
	return png, nil
}

func (s *shareService) MarkCopied(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copied[token] = s.clock()
}

func (s *shareService) Copied(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.copied[token]
	if !ok {
		return false
	}
	if s.clock().Sub(at) >= copiedFlagTTL {
		delete(s.copied, token)
		return false
	}
	return true
}

// whatsAppURL builds the wa.me link with the card content truncated so
// the preview stays readable.
func whatsAppURL(card domain.Card, deepLink string) string {
	content := truncateRunes(strings.TrimSpace(card.Content), shareContentLimit)
	var text string
	if card.Language == domain.LanguageTurkish {
		text = fmt.Sprintf("💝 %s için bir kart hazırladım!\n\n%s\n\n%s", card.RecipientName, content, deepLink)
	} else {
		text = fmt.Sprintf("💝 I made a card for %s!\n\n%s\n\n%s", card.RecipientName, content, deepLink)
	}
	return "https://wa.me/?text=" + url.QueryEscape(text)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
