package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/cetinibs/lovacards/internal/domain"
	platformfs "github.com/cetinibs/lovacards/internal/platform/firestore"
)

const galleryCollection = "gallery"

type galleryDoc struct {
	RecipientName string `firestore:"recipientName"`
	Occasion      string `firestore:"occasion"`
	Bouquet       []int  `firestore:"bouquet"`
	Content       string `firestore:"content"`
	MusicID       *int   `firestore:"musicId"`
	Likes         int    `firestore:"likes"`
}

// GalleryRepository serves the showcase collection, falling back to the
// built-in seed when the collection is empty.
type GalleryRepository struct {
	base *platformfs.BaseRepository[domain.GalleryItem]
}

// NewGalleryRepository wires the repository over the shared provider.
func NewGalleryRepository(provider *platformfs.Provider) (*GalleryRepository, error) {
	base, err := platformfs.NewBaseRepository(provider, galleryCollection, encodeGalleryItem, decodeGalleryItem)
	if err != nil {
		return nil, err
	}
	return &GalleryRepository{base: base}, nil
}

func encodeGalleryItem(item domain.GalleryItem) (map[string]any, error) {
	return map[string]any{
		"recipientName": item.RecipientName,
		"occasion":      string(item.Occasion),
		"bouquet":       append([]int(nil), item.Bouquet...),
		"content":       item.Content,
		"musicId":       item.MusicID,
		"likes":         item.Likes,
	}, nil
}

func decodeGalleryItem(snap *firestore.DocumentSnapshot) (domain.GalleryItem, error) {
	var doc galleryDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.GalleryItem{}, fmt.Errorf("decode gallery item %s: %w", snap.Ref.ID, err)
	}
	return domain.GalleryItem{
		ID:            snap.Ref.ID,
		RecipientName: doc.RecipientName,
		Occasion:      domain.Occasion(doc.Occasion),
		Bouquet:       doc.Bouquet,
		Content:       doc.Content,
		MusicID:       doc.MusicID,
		Likes:         doc.Likes,
	}, nil
}

func (r *GalleryRepository) List(ctx context.Context) ([]domain.GalleryItem, error) {
	items, err := r.base.QueryAll(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("likes", firestore.Desc).Limit(50)
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return append([]domain.GalleryItem(nil), domain.GallerySeed...), nil
	}
	return items, nil
}

func (r *GalleryRepository) Like(ctx context.Context, id string) (domain.GalleryItem, error) {
	var out domain.GalleryItem
	err := r.base.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := r.base.Doc(ctx, id)
		if err != nil {
			return err
		}
		item, err := r.base.TxGet(tx, doc)
		if err != nil {
			return err
		}
		item.Likes++
		out = item
		return r.base.TxSet(tx, doc, item)
	})
	if err != nil {
		return domain.GalleryItem{}, mapErr(err)
	}
	return out, nil
}
