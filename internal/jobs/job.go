package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
)

// ErrUnknownType is returned by Decode for entries whose type has no variant.
var ErrUnknownType = errors.New("unknown job type")

// Meta carries the queue entry identity alongside a decoded job.
type Meta struct {
	ID   uuid.UUID
	Type enums.JobType
}

// Job is the closed set of queue work. Only this package can add variants,
// and every variant must be accepted by Handlers.
type Job interface {
	Type() enums.JobType
	payload() any
	successStatus() enums.JobStatus
	accept(ctx context.Context, meta Meta, h Handlers) error
}

// Handlers visits each job variant. Adding a variant adds a method here, so
// every handler set stops compiling until it handles the new kind.
type Handlers interface {
	OrderCreate(ctx context.Context, meta Meta, job OrderCreate) error
	NotificationSend(ctx context.Context, meta Meta, job NotificationSend) error
	TenantRegistration(ctx context.Context, meta Meta, job TenantRegistration) error
	PujaseraRegistration(ctx context.Context, meta Meta, job PujaseraRegistration) error
}

type OrderCreate struct{ Payload OrderCreatePayload }

type NotificationSend struct{ Payload NotificationPayload }

type TenantRegistration struct{ Payload RegistrationPayload }

type PujaseraRegistration struct{ Payload RegistrationPayload }

func (OrderCreate) Type() enums.JobType          { return enums.JobTypeOrderCreate }
func (NotificationSend) Type() enums.JobType     { return enums.JobTypeNotificationSend }
func (TenantRegistration) Type() enums.JobType   { return enums.JobTypeTenantRegistration }
func (PujaseraRegistration) Type() enums.JobType { return enums.JobTypePujaseraRegistration }

func (j OrderCreate) payload() any          { return j.Payload }
func (j NotificationSend) payload() any     { return j.Payload }
func (j TenantRegistration) payload() any   { return j.Payload }
func (j PujaseraRegistration) payload() any { return j.Payload }

func (OrderCreate) successStatus() enums.JobStatus          { return enums.JobStatusCompleted }
func (NotificationSend) successStatus() enums.JobStatus     { return enums.JobStatusSent }
func (TenantRegistration) successStatus() enums.JobStatus   { return enums.JobStatusCompleted }
func (PujaseraRegistration) successStatus() enums.JobStatus { return enums.JobStatusCompleted }

func (j OrderCreate) accept(ctx context.Context, meta Meta, h Handlers) error {
	return h.OrderCreate(ctx, meta, j)
}

func (j NotificationSend) accept(ctx context.Context, meta Meta, h Handlers) error {
	return h.NotificationSend(ctx, meta, j)
}

func (j TenantRegistration) accept(ctx context.Context, meta Meta, h Handlers) error {
	return h.TenantRegistration(ctx, meta, j)
}

func (j PujaseraRegistration) accept(ctx context.Context, meta Meta, h Handlers) error {
	return h.PujaseraRegistration(ctx, meta, j)
}

// Decode turns a stored entry into its job variant. Unknown types return
// ErrUnknownType; malformed payloads return VALIDATION_ERROR.
func Decode(entry models.JobQueueEntry) (Job, error) {
	jobType, err := enums.ParseJobType(entry.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, entry.Type)
	}

	switch jobType {
	case enums.JobTypeOrderCreate:
		var p OrderCreatePayload
		if err := unmarshal(entry.Payload, &p); err != nil {
			return nil, err
		}
		return OrderCreate{Payload: p}, nil
	case enums.JobTypeNotificationSend:
		var p NotificationPayload
		if err := unmarshal(entry.Payload, &p); err != nil {
			return nil, err
		}
		return NotificationSend{Payload: p}, nil
	case enums.JobTypeTenantRegistration:
		var p RegistrationPayload
		if err := unmarshal(entry.Payload, &p); err != nil {
			return nil, err
		}
		return TenantRegistration{Payload: p}, nil
	case enums.JobTypePujaseraRegistration:
		var p RegistrationPayload
		if err := unmarshal(entry.Payload, &p); err != nil {
			return nil, err
		}
		return PujaseraRegistration{Payload: p}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, entry.Type)
}

func unmarshal(raw json.RawMessage, dest any) error {
	if len(raw) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "payload missing")
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payload")
	}
	return nil
}

// OrderHandler runs order-create jobs.
type OrderHandler interface {
	HandleOrderCreate(ctx context.Context, meta Meta, payload OrderCreatePayload) error
}

// NotificationHandler runs notification-send jobs.
type NotificationHandler interface {
	HandleNotification(ctx context.Context, meta Meta, payload NotificationPayload) error
}

// RegistrationHandler runs both registration kinds.
type RegistrationHandler interface {
	RegisterTenant(ctx context.Context, meta Meta, payload RegistrationPayload) error
	RegisterPujasera(ctx context.Context, meta Meta, payload RegistrationPayload) error
}

// Router is the production Handlers set, delegating each variant to its domain handler.
type Router struct {
	Orders        OrderHandler
	Notifications NotificationHandler
	Registrations RegistrationHandler
}

// NewRouter validates that every domain handler is present.
func NewRouter(orders OrderHandler, notifications NotificationHandler, registrations RegistrationHandler) (*Router, error) {
	if orders == nil {
		return nil, fmt.Errorf("order handler required")
	}
	if notifications == nil {
		return nil, fmt.Errorf("notification handler required")
	}
	if registrations == nil {
		return nil, fmt.Errorf("registration handler required")
	}
	return &Router{Orders: orders, Notifications: notifications, Registrations: registrations}, nil
}

func (r *Router) OrderCreate(ctx context.Context, meta Meta, job OrderCreate) error {
	return r.Orders.HandleOrderCreate(ctx, meta, job.Payload)
}

func (r *Router) NotificationSend(ctx context.Context, meta Meta, job NotificationSend) error {
	return r.Notifications.HandleNotification(ctx, meta, job.Payload)
}

func (r *Router) TenantRegistration(ctx context.Context, meta Meta, job TenantRegistration) error {
	return r.Registrations.RegisterTenant(ctx, meta, job.Payload)
}

func (r *Router) PujaseraRegistration(ctx context.Context, meta Meta, job PujaseraRegistration) error {
	return r.Registrations.RegisterPujasera(ctx, meta, job.Payload)
}
