package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cetinibs/lovacards/internal/domain"
	"github.com/cetinibs/lovacards/internal/repositories"
)

// ErrGalleryItemNotFound indicates the showcase item does not exist.
var ErrGalleryItemNotFound = errors.New("gallery: item not found")

// GalleryService serves the community showcase.
type GalleryService interface {
	List(ctx context.Context) ([]domain.GalleryItem, error)
	Like(ctx context.Context, id string) (domain.GalleryItem, error)
}

// GalleryServiceDeps wires the service dependencies.
type GalleryServiceDeps struct {
	Gallery repositories.GalleryRepository
}

type galleryService struct {
	gallery repositories.GalleryRepository
}

// NewGalleryService validates deps and builds the service.
func NewGalleryService(deps GalleryServiceDeps) (GalleryService, error) {
	if deps.Gallery == nil {
		return nil, fmt.Errorf("services: gallery repository is required")
	}
	return &galleryService{gallery: deps.Gallery}, nil
}

func (s *galleryService) List(ctx context.Context) ([]domain.GalleryItem, error) {
	return s.gallery.List(ctx)
}

func (s *galleryService) Like(ctx context.Context, id string) (domain.GalleryItem, error) {
	item, err := s.gallery.Like(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return domain.GalleryItem{}, ErrGalleryItemNotFound
		}
		return domain.GalleryItem{}, err
	}
	return item, nil
}
