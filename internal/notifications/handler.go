package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/pkg/config"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/whatsapp"
)

// Sender delivers one message through the gateway.
type Sender interface {
	Send(ctx context.Context, msg whatsapp.Message) error
}

// Handler executes notification-send jobs.
type Handler struct {
	sender     Sender
	adminGroup string
	logg       *logger.Logger
}

// NewHandler wires the handler. A missing device id fails here rather than on
// the first delivery.
func NewHandler(cfg config.MessagingConfig, sender Sender, logg *logger.Logger) (*Handler, error) {
	if strings.TrimSpace(cfg.DeviceID) == "" {
		return nil, fmt.Errorf("messaging device id required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Handler{
		sender:     sender,
		adminGroup: strings.TrimSpace(cfg.AdminGroup),
		logg:       logg,
	}, nil
}

// HandleNotification resolves the recipient and sends the message.
func (h *Handler) HandleNotification(ctx context.Context, meta jobs.Meta, payload jobs.NotificationPayload) error {
	msg, err := h.resolve(payload)
	if err != nil {
		return err
	}

	ctx = h.logg.WithFields(ctx, map[string]any{
		"recipient_group": msg.IsGroup,
	})
	if err := h.sender.Send(ctx, msg); err != nil {
		return err
	}
	h.logg.Info(ctx, "notification sent")
	return nil
}

func (h *Handler) resolve(payload jobs.NotificationPayload) (whatsapp.Message, error) {
	to := strings.TrimSpace(payload.To)
	if to == jobs.AdminGroupRecipient {
		if h.adminGroup == "" {
			return whatsapp.Message{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid recipient: admin group not configured")
		}
		return whatsapp.Message{To: h.adminGroup, Text: payload.Message, IsGroup: true}, nil
	}
	if to == "" {
		return whatsapp.Message{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid recipient")
	}
	return whatsapp.Message{To: to, Text: payload.Message, IsGroup: payload.IsGroup}, nil
}
