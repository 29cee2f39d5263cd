package jobs

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
)

// AdminGroupRecipient is the logical recipient resolved against the configured
// admin group instead of being used as a literal address.
const AdminGroupRecipient = "admin_group"

// Customer identifies who the order is for. An empty id or "guest" is a guest.
type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CartItem is one line of a checkout cart. StoreID tags the tenant that sells it.
type CartItem struct {
	ProductID   string  `json:"productId" validate:"required"`
	ProductName string  `json:"productName" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gte=1"`
	Price       float64 `json:"price" validate:"gte=0"`
	StoreID     string  `json:"storeId,omitempty"`
	StoreName   string  `json:"storeName,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// OrderCreatePayload is the body of an order-create job.
//
// Idempotency: the hub order id is OrderID when set, otherwise it is derived
// from the job id, so redelivering the same job always targets the same hub
// record and, through it, the same sub-orders.
//
// PaymentMethod is one of cash, qris, card, transfer or later. A catalog order
// paid "later" (or with no method) ends unpaid and keeps its table occupied
// until the transaction is paid.
type OrderCreatePayload struct {
	OrderID          *uuid.UUID `json:"orderId,omitempty"`
	PujaseraID       uuid.UUID  `json:"pujaseraId" validate:"required"`
	Customer         *Customer  `json:"customer" validate:"required"`
	Cart             []CartItem `json:"cart" validate:"required,min=1,dive"`
	Subtotal         float64    `json:"subtotal" validate:"gte=0"`
	TaxAmount        float64    `json:"taxAmount" validate:"gte=0"`
	ServiceFeeAmount float64    `json:"serviceFeeAmount" validate:"gte=0"`
	DiscountAmount   float64    `json:"discountAmount" validate:"gte=0"`
	TotalAmount      float64    `json:"totalAmount" validate:"gte=0"`
	PaymentMethod    string     `json:"paymentMethod" validate:"omitempty,oneof=cash qris card transfer later"`
	StaffID          string     `json:"staffId"`
	PointsEarned     int64      `json:"pointsEarned" validate:"gte=0"`
	PointsToRedeem   int64      `json:"pointsToRedeem" validate:"gte=0"`
	TableID          *uuid.UUID `json:"tableId,omitempty"`
	IsFromCatalog    bool       `json:"isFromCatalog,omitempty"`
}

// NotificationPayload is the body of a notification-send job.
type NotificationPayload struct {
	To      string `json:"to" validate:"required"`
	Message string `json:"message" validate:"required"`
	IsGroup bool   `json:"isGroup,omitempty"`
}

// RegistrationPayload is shared by tenant and pujasera registrations. The
// password arrives already hashed; plain credentials never reach the queue.
type RegistrationPayload struct {
	Email        string  `json:"email" validate:"required,email"`
	PasswordHash string  `json:"passwordHash" validate:"required"`
	OwnerName    string  `json:"ownerName" validate:"required"`
	StoreName    string  `json:"storeName" validate:"required"`
	WhatsApp     *string `json:"whatsapp,omitempty"`
	GroupSlug    string  `json:"pujaseraGroupSlug,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks struct tags and converts failures into VALIDATION_ERROR.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payload")
	}
	fields := make([]string, 0, len(errs))
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		ns := fe.Namespace()
		if idx := strings.Index(ns, "."); idx >= 0 {
			ns = ns[idx+1:]
		}
		fields = append(fields, ns)
		details[ns] = fe.Tag()
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid payload: "+strings.Join(fields, ", ")).WithDetails(details)
}
