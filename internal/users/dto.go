package users

import (
	"strings"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
)

// CreateUserDTO holds the data required to attach a user to a store.
type CreateUserDTO struct {
	IdentityID uuid.UUID
	StoreID    uuid.UUID
	Name       string
	Email      string
	WhatsApp   *string
	Role       enums.UserRole
}

// ToModel converts the DTO into a persistable user, defaulting the role to admin.
func (d CreateUserDTO) ToModel() *models.User {
	role := d.Role
	if role == "" {
		role = enums.UserRoleAdmin
	}
	return &models.User{
		ID:         uuid.New(),
		IdentityID: d.IdentityID,
		StoreID:    d.StoreID,
		Name:       strings.TrimSpace(d.Name),
		Email:      strings.ToLower(strings.TrimSpace(d.Email)),
		WhatsApp:   d.WhatsApp,
		Role:       role,
	}
}
