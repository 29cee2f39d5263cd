package registration

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pujasera/pos-backend/internal/fees"
	"github.com/pujasera/pos-backend/internal/identity"
	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/internal/stores"
	"github.com/pujasera/pos-backend/internal/tokens"
	"github.com/pujasera/pos-backend/internal/users"
	"github.com/pujasera/pos-backend/pkg/db"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	bonusReference = "bonus:registration"
	hubSlugIndex   = "pujasera_group_slug"
)

// identityNamespace scopes identity ids derived from registration job ids.
var identityNamespace = uuid.MustParse("b3e6f0a4-8c2d-5e71-a9f4-1d0c7b5e2a98")

// IdentityID returns the identity id a registration job creates. Every
// delivery of the same job asks the provider for the same id.
func IdentityID(jobID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(identityNamespace, jobID[:])
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type jobEnqueuer interface {
	EnqueueTx(ctx context.Context, tx *gorm.DB, job jobs.Job) (uuid.UUID, error)
}

// ServiceParams wires the registration dependencies.
type ServiceParams struct {
	TxRunner txRunner
	Identity identity.Provider
	Stores   *stores.Repository
	Users    *users.Repository
	Ledger   *tokens.Ledger
	Settings fees.ScheduleSource
	Enqueuer jobEnqueuer
	Logger   *logger.Logger
}

// Service onboards tenants and pujasera hubs. It implements jobs.RegistrationHandler.
type Service struct {
	tx       txRunner
	identity identity.Provider
	stores   *stores.Repository
	users    *users.Repository
	ledger   *tokens.Ledger
	settings fees.ScheduleSource
	enqueuer jobEnqueuer
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.TxRunner == nil:
		return nil, fmt.Errorf("tx runner required")
	case params.Identity == nil:
		return nil, fmt.Errorf("identity provider required")
	case params.Stores == nil:
		return nil, fmt.Errorf("stores repository required")
	case params.Users == nil:
		return nil, fmt.Errorf("users repository required")
	case params.Ledger == nil:
		return nil, fmt.Errorf("token ledger required")
	case params.Settings == nil:
		return nil, fmt.Errorf("settings source required")
	case params.Enqueuer == nil:
		return nil, fmt.Errorf("job enqueuer required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		tx:       params.TxRunner,
		identity: params.Identity,
		stores:   params.Stores,
		users:    params.Users,
		ledger:   params.Ledger,
		settings: params.Settings,
		enqueuer: params.Enqueuer,
		logg:     params.Logger,
	}, nil
}

type plan struct {
	kind          enums.StoreKind
	slug          *string
	bonus         float64
	notifications []jobs.NotificationPayload
}

// RegisterTenant creates a tenant store, joined to its pujasera group when a
// slug is given, and announces it to the owner and the admin group.
func (s *Service) RegisterTenant(ctx context.Context, meta jobs.Meta, payload jobs.RegistrationPayload) error {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load platform settings")
	}

	p := plan{kind: enums.StoreKindStandalone, bonus: settings.TenantBonusTokens}
	if slug := strings.TrimSpace(payload.GroupSlug); slug != "" {
		p.kind = enums.StoreKindTenant
		p.slug = &slug
	}
	if payload.WhatsApp != nil && strings.TrimSpace(*payload.WhatsApp) != "" {
		welcome := fmt.Sprintf("Halo %s, selamat bergabung! Toko %s sudah aktif dengan bonus %.0f token.",
			payload.OwnerName, payload.StoreName, settings.TenantBonusTokens)
		p.notifications = append(p.notifications, jobs.NotificationPayload{
			To:      strings.TrimSpace(*payload.WhatsApp),
			Message: welcome,
		})
	}
	p.notifications = append(p.notifications, jobs.NotificationPayload{
		To:      jobs.AdminGroupRecipient,
		Message: fmt.Sprintf("Tenant baru: %s (%s, %s)", payload.StoreName, payload.OwnerName, payload.Email),
		IsGroup: true,
	})

	ctx = s.logg.WithFields(ctx, map[string]any{"job_id": meta.ID.String(), "registration": "tenant"})
	return s.register(ctx, meta, payload, p)
}

// RegisterPujasera creates a hub store owning a new group slug.
func (s *Service) RegisterPujasera(ctx context.Context, meta jobs.Meta, payload jobs.RegistrationPayload) error {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load platform settings")
	}

	slug := strings.TrimSpace(payload.GroupSlug)
	if slug == "" {
		slug = Slugify(payload.StoreName)
	}
	if slug == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "pujasera group slug required")
	}

	p := plan{
		kind:  enums.StoreKindHub,
		slug:  &slug,
		bonus: settings.PujaseraBonusTokens,
		notifications: []jobs.NotificationPayload{{
			To:      jobs.AdminGroupRecipient,
			Message: fmt.Sprintf("Pujasera baru: %s [%s] oleh %s (%s)", payload.StoreName, slug, payload.OwnerName, payload.Email),
			IsGroup: true,
		}},
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"job_id": meta.ID.String(), "registration": "pujasera"})
	return s.register(ctx, meta, payload, p)
}

// register is keyed on the job id: a delivery whose store already exists
// reports success without touching anything, and a delivery that follows a
// half-finished attempt reuses that attempt's identity.
func (s *Service) register(ctx context.Context, meta jobs.Meta, payload jobs.RegistrationPayload, p plan) error {
	existing, err := s.stores.GetBySourceJob(ctx, meta.ID)
	switch {
	case err == nil:
		s.logg.Info(s.logg.WithStoreID(ctx, existing.ID.String()), "registration already completed")
		return nil
	case !pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
		return err
	}

	identityID, err := s.identity.Create(ctx, IdentityID(meta.ID), payload.Email, payload.PasswordHash)
	if err != nil {
		return err
	}
	jobID := meta.ID

	var storeID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.checkGroup(ctx, tx, p); err != nil {
			return err
		}

		store := &models.Store{
			ID:                uuid.New(),
			Name:              strings.TrimSpace(payload.StoreName),
			Kind:              p.kind,
			PujaseraGroupSlug: p.slug,
			AdminUIDs:         pq.StringArray{identityID.String()},
			WhatsApp:          payload.WhatsApp,
			SourceJobID:       &jobID,
		}
		if err := s.stores.WithTx(tx).Create(ctx, store); err != nil {
			if p.kind == enums.StoreKindHub && db.IsUniqueViolation(err, hubSlugIndex) {
				return pkgerrors.New(pkgerrors.CodeConflict, "pujasera group slug already taken").
					WithDetails(map[string]any{"pujasera_group_slug": *p.slug})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
		}
		storeID = store.ID

		if _, err := s.users.WithTx(tx).Create(ctx, users.CreateUserDTO{
			IdentityID: identityID,
			StoreID:    store.ID,
			Name:       payload.OwnerName,
			Email:      payload.Email,
			WhatsApp:   payload.WhatsApp,
			Role:       enums.UserRoleAdmin,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin user")
		}

		if p.bonus > 0 {
			if err := s.ledger.Credit(ctx, tx, store.ID, p.bonus, bonusReference); err != nil {
				return err
			}
		}

		for _, n := range p.notifications {
			if _, err := s.enqueuer.EnqueueTx(ctx, tx, jobs.NotificationSend{Payload: n}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.compensate(ctx, identityID)
		return err
	}

	s.logg.Info(s.logg.WithStoreID(ctx, storeID.String()), "registration completed")
	return nil
}

// checkGroup rejects a tenant slug without a hub and a hub slug already taken.
func (s *Service) checkGroup(ctx context.Context, tx *gorm.DB, p plan) error {
	if p.slug == nil {
		return nil
	}
	members, err := s.stores.WithTx(tx).ListByGroupSlug(ctx, *p.slug)
	if err != nil {
		return err
	}
	hasHub := len(members) > 0 && members[0].Kind == enums.StoreKindHub

	switch p.kind {
	case enums.StoreKindTenant:
		if !hasHub {
			return pkgerrors.New(pkgerrors.CodeNotFound, "pujasera group not found").
				WithDetails(map[string]any{"pujasera_group_slug": *p.slug})
		}
	case enums.StoreKindHub:
		if hasHub {
			return pkgerrors.New(pkgerrors.CodeConflict, "pujasera group slug already taken").
				WithDetails(map[string]any{"pujasera_group_slug": *p.slug})
		}
	}
	return nil
}

// compensate removes the identity created for a registration whose store
// write failed. A failure here is logged only; the caller reports the
// original error.
func (s *Service) compensate(ctx context.Context, identityID uuid.UUID) {
	if err := s.identity.Delete(ctx, identityID); err != nil {
		s.logg.Error(
			s.logg.WithField(ctx, "identity_id", identityID.String()),
			"registration compensation failed",
			pkgerrors.Wrap(pkgerrors.CodeCompensation, err, "delete orphaned identity"),
		)
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "identity_id", identityID.String()), "registration rolled back, identity deleted")
}

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
