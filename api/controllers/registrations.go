package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pujasera/pos-backend/api/responses"
	"github.com/pujasera/pos-backend/api/validators"
	"github.com/pujasera/pos-backend/internal/jobs"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/security"
)

// PasswordHasher hashes plain credentials before they are queued.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type registrationRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=128"`
	OwnerName string  `json:"ownerName" validate:"required,max=120"`
	StoreName string  `json:"storeName" validate:"required,max=120"`
	WhatsApp  *string `json:"whatsapp,omitempty"`
	GroupSlug string  `json:"pujaseraGroupSlug,omitempty"`
}

func (b *registrationRequest) Sanitize() {
	b.Email = validators.NormalizeEmail(b.Email)
	b.OwnerName = validators.SanitizeString(b.OwnerName, 120)
	b.StoreName = validators.SanitizeString(b.StoreName, 120)
	b.GroupSlug = strings.TrimSpace(b.GroupSlug)
	if b.WhatsApp != nil {
		trimmed := strings.TrimSpace(*b.WhatsApp)
		b.WhatsApp = &trimmed
	}
}

// Register queues a tenant or pujasera registration. The password is hashed
// here so the queue only ever carries the hash.
func Register(enqueuer JobEnqueuer, hasher PasswordHasher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if enqueuer == nil || hasher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registration unavailable"))
			return
		}

		kind := strings.ToLower(chi.URLParam(r, "kind"))
		if kind != "tenant" && kind != "pujasera" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown registration kind"))
			return
		}

		var body registrationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		hash, err := hasher.Hash(body.Password)
		if err != nil {
			if errors.Is(err, security.ErrWeakPassword) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password"))
			return
		}

		payload := jobs.RegistrationPayload{
			Email:        body.Email,
			PasswordHash: hash,
			OwnerName:    body.OwnerName,
			StoreName:    body.StoreName,
			WhatsApp:     body.WhatsApp,
			GroupSlug:    body.GroupSlug,
		}

		var job jobs.Job = jobs.TenantRegistration{Payload: payload}
		if kind == "pujasera" {
			job = jobs.PujaseraRegistration{Payload: payload}
		}

		id, err := enqueuer.Enqueue(r.Context(), job)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, acceptedResponse{JobID: id})
	}
}
