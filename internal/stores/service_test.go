package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
)

type stubStoreRepo struct {
	store   *models.Store
	members []models.Store
	err     error
	slug    string
}

func (s *stubStoreRepo) Get(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.store, nil
}

func (s *stubStoreRepo) ListByGroupSlug(ctx context.Context, slug string) ([]models.Store, error) {
	s.slug = slug
	return s.members, nil
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestServiceGetByID(t *testing.T) {
	store := &models.Store{ID: uuid.New(), Name: "Bakso Pak Min", Kind: enums.StoreKindTenant, PradanaTokenBalance: 12.5}
	svc, err := NewService(&stubStoreRepo{store: store})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.GetByID(context.Background(), store.ID)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if dto.ID != store.ID || dto.PradanaTokenBalance != 12.5 || dto.Kind != enums.StoreKindTenant {
		t.Fatalf("unexpected dto %+v", dto)
	}
}

func TestServiceGetByIDNotFound(t *testing.T) {
	svc, _ := NewService(&stubStoreRepo{err: pkgerrors.New(pkgerrors.CodeNotFound, "store not found")})
	if _, err := svc.GetByID(context.Background(), uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceListGroup(t *testing.T) {
	slug := "pujasera-melawai"
	hub := models.Store{ID: uuid.New(), Name: "Melawai", Kind: enums.StoreKindHub, PujaseraGroupSlug: &slug}
	tenant := models.Store{ID: uuid.New(), Name: "Soto", Kind: enums.StoreKindTenant, PujaseraGroupSlug: &slug}
	repo := &stubStoreRepo{store: &tenant, members: []models.Store{hub, tenant}}
	svc, _ := NewService(repo)

	group, err := svc.ListGroup(context.Background(), tenant.ID)
	if err != nil {
		t.Fatalf("list group: %v", err)
	}
	if repo.slug != slug || len(group) != 2 || group[0].ID != hub.ID {
		t.Fatalf("unexpected group %+v (slug %q)", group, repo.slug)
	}
}

func TestServiceListGroupStandalone(t *testing.T) {
	store := &models.Store{ID: uuid.New(), Name: "Warung", Kind: enums.StoreKindStandalone}
	repo := &stubStoreRepo{store: store}
	svc, _ := NewService(repo)

	group, err := svc.ListGroup(context.Background(), store.ID)
	if err != nil {
		t.Fatalf("list group: %v", err)
	}
	if len(group) != 1 || repo.slug != "" {
		t.Fatalf("expected standalone store only, got %+v", group)
	}
}
