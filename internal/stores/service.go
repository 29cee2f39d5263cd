package stores

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
)

type storeRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Store, error)
	ListByGroupSlug(ctx context.Context, slug string) ([]models.Store, error)
}

// Service exposes read operations for the HTTP surface.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	ListGroup(ctx context.Context, id uuid.UUID) ([]StoreDTO, error)
}

type service struct {
	repo storeRepository
}

// NewService builds a store service.
func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

// ListGroup returns the pujasera group the store belongs to. Stores outside a
// group are returned alone.
func (s *service) ListGroup(ctx context.Context, id uuid.UUID) ([]StoreDTO, error) {
	store, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if store.PujaseraGroupSlug == nil || *store.PujaseraGroupSlug == "" {
		return []StoreDTO{*FromModel(store)}, nil
	}
	members, err := s.repo.ListByGroupSlug(ctx, *store.PujaseraGroupSlug)
	if err != nil {
		return nil, err
	}
	out := make([]StoreDTO, 0, len(members))
	for i := range members {
		out = append(out, *FromModel(&members[i]))
	}
	return out, nil
}
