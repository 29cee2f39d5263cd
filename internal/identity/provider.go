// Package identity owns login credentials. Registration creates an identity
// before any store data exists and deletes it again when the rest fails.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db"
	"github.com/pujasera/pos-backend/pkg/db/models"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"gorm.io/gorm"
)

const emailConstraint = "email"

// Provider creates and removes identities. Both calls commit on their own and
// are not part of any caller transaction.
type Provider interface {
	Create(ctx context.Context, id uuid.UUID, email, passwordHash string) (uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Store is the auth_identities backed Provider.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create stores an identity under id (a fresh id when nil). An email already
// held by the same id is returned as is, so a retried registration reuses the
// identity of its earlier attempt; an email held by another id is CONFLICT.
func (s *Store) Create(ctx context.Context, id uuid.UUID, email, passwordHash string) (uuid.UUID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || passwordHash == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password hash required")
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	record := &models.AuthIdentity{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
	}
	err := s.db.WithContext(ctx).Create(record).Error
	if err == nil {
		return record.ID, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create identity")
	}

	existing, lookupErr := s.Lookup(ctx, email)
	if lookupErr == nil && existing.ID == id {
		return existing.ID, nil
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered").
		WithDetails(map[string]any{"field": emailConstraint})
}

// Delete removes an identity. Deleting an absent identity is not an error.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AuthIdentity{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete identity")
	}
	return nil
}

// Lookup returns the identity registered for email.
func (s *Store) Lookup(ctx context.Context, email string) (*models.AuthIdentity, error) {
	var record models.AuthIdentity
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "identity not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load identity")
	}
	return &record, nil
}
