// Package firestore implements the repository contracts on Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/cetinibs/lovacards/internal/domain"
	platformfs "github.com/cetinibs/lovacards/internal/platform/firestore"
	"github.com/cetinibs/lovacards/internal/repositories"
)

const cardsCollection = "cards"

type cardDoc struct {
	OwnerKey        string     `firestore:"ownerKey"`
	RecipientName   string     `firestore:"recipientName"`
	Occasion        string     `firestore:"occasion"`
	Language        string     `firestore:"language"`
	Bouquet         []int      `firestore:"bouquet"`
	ContentKind     string     `firestore:"contentKind"`
	Content         string     `firestore:"content"`
	MusicID         *int       `firestore:"musicId"`
	Step            int        `firestore:"step"`
	Status          string     `firestore:"status"`
	ShareToken      string     `firestore:"shareToken"`
	GenPhase        string     `firestore:"genPhase"`
	GenToken        string     `firestore:"genToken"`
	GenStartedAt    time.Time  `firestore:"genStartedAt"`
	CreatedAt       time.Time  `firestore:"createdAt"`
	UpdatedAt       time.Time  `firestore:"updatedAt"`
	FinishedAt      *time.Time `firestore:"finishedAt"`
}

func encodeCard(card domain.Card) (map[string]any, error) {
	if card.ID == "" {
		return nil, fmt.Errorf("card id is required")
	}
	return map[string]any{
		"ownerKey":      card.OwnerKey,
		"recipientName": card.RecipientName,
		"occasion":      string(card.Occasion),
		"language":      string(card.Language),
		"bouquet":       append([]int(nil), card.Bouquet...),
		"contentKind":   string(card.ContentKind),
		"content":       card.Content,
		"musicId":       card.MusicID,
		"step":          int(card.Step),
		"status":        string(card.Status),
		"shareToken":    card.ShareToken,
		"genPhase":      string(card.Generation.Phase),
		"genToken":      card.Generation.Token,
		"genStartedAt":  card.Generation.StartedAt,
		"createdAt":     card.CreatedAt,
		"updatedAt":     card.UpdatedAt,
		"finishedAt":    card.FinishedAt,
	}, nil
}

func decodeCard(snap *firestore.DocumentSnapshot) (domain.Card, error) {
	var doc cardDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.Card{}, fmt.Errorf("decode card %s: %w", snap.Ref.ID, err)
	}
	return domain.Card{
		ID:            snap.Ref.ID,
		OwnerKey:      doc.OwnerKey,
		RecipientName: doc.RecipientName,
		Occasion:      domain.Occasion(doc.Occasion),
		Language:      domain.Language(doc.Language),
		Bouquet:       doc.Bouquet,
		ContentKind:   domain.ContentKind(doc.ContentKind),
		Content:       doc.Content,
		MusicID:       doc.MusicID,
		Step:          domain.WizardStep(doc.Step),
		Status:        domain.CardStatus(doc.Status),
		ShareToken:    doc.ShareToken,
		Generation: domain.GenerationState{
			Phase:     domain.AsyncPhase(doc.GenPhase),
			Token:     doc.GenToken,
			StartedAt: doc.GenStartedAt,
		},
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
		FinishedAt: doc.FinishedAt,
	}, nil
}

// CardRepository stores cards in the cards collection.
type CardRepository struct {
	base *platformfs.BaseRepository[domain.Card]
}

// NewCardRepository wires the repository over the shared provider.
func NewCardRepository(provider *platformfs.Provider) (*CardRepository, error) {
	base, err := platformfs.NewBaseRepository(provider, cardsCollection, encodeCard, decodeCard)
	if err != nil {
		return nil, err
	}
	return &CardRepository{base: base}, nil
}

func (r *CardRepository) Create(ctx context.Context, card domain.Card) error {
	return mapErr(r.base.Create(ctx, card.ID, card))
}

func (r *CardRepository) Get(ctx context.Context, id string) (domain.Card, error) {
	card, err := r.base.Get(ctx, id)
	return card, mapErr(err)
}

func (r *CardRepository) GetByShareToken(ctx context.Context, token string) (domain.Card, error) {
	cards, err := r.base.QueryAll(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("shareToken", "==", token).Limit(1)
	})
	if err != nil {
		return domain.Card{}, mapErr(err)
	}
	if len(cards) == 0 {
		return domain.Card{}, repositories.ErrNotFound
	}
	return cards[0], nil
}

func (r *CardRepository) Mutate(ctx context.Context, id string, fn func(*domain.Card) error) (domain.Card, error) {
	var out domain.Card
	err := r.base.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := r.base.Doc(ctx, id)
		if err != nil {
			return err
		}
		card, err := r.base.TxGet(tx, doc)
		if err != nil {
			return err
		}
		if err := fn(&card); err != nil {
			return err
		}
		out = card
		return r.base.TxSet(tx, doc, card)
	})
	if err != nil {
		return domain.Card{}, mapErr(err)
	}
	return out, nil
}

func (r *CardRepository) ListByOwner(ctx context.Context, ownerKey string) ([]domain.Card, error) {
	cards, err := r.base.QueryAll(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("ownerKey", "==", ownerKey).OrderBy("createdAt", firestore.Desc)
	})
	return cards, mapErr(err)
}

func mapErr(err error) error {
	if errors.Is(err, platformfs.ErrNotFound) {
		return repositories.ErrNotFound
	}
	return err
}
