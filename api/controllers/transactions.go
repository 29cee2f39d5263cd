package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/api/responses"
	"github.com/pujasera/pos-backend/api/validators"
	"github.com/pujasera/pos-backend/internal/transactions"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/pagination"
	"github.com/pujasera/pos-backend/pkg/types"
)

// TransactionService is the subset of transactions.Service the API needs.
type TransactionService interface {
	CreateHubTransaction(ctx context.Context, in transactions.CreateInput) (*transactions.TransactionDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*transactions.TransactionDTO, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*transactions.TransactionDTO, error)
	Settle(ctx context.Context, id uuid.UUID) (*transactions.Result, error)
	Pay(ctx context.Context, id uuid.UUID, method string) (*transactions.TransactionDTO, error)
	UpdateKitchenStatus(ctx context.Context, id, tenantID uuid.UUID, status enums.KitchenStatus) (*transactions.TransactionDTO, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*transactions.ListResult, error)
}

type createTransactionRequest struct {
	ID               *uuid.UUID        `json:"id,omitempty"`
	StoreID          uuid.UUID         `json:"storeId"`
	CustomerID       *string           `json:"customerId,omitempty"`
	CustomerName     string            `json:"customerName"`
	Items            []types.OrderItem `json:"items" validate:"required,min=1"`
	TaxAmount        float64           `json:"taxAmount" validate:"gte=0"`
	ServiceFeeAmount float64           `json:"serviceFeeAmount" validate:"gte=0"`
	DiscountAmount   float64           `json:"discountAmount" validate:"gte=0"`
	PaymentMethod    string            `json:"paymentMethod"`
	StaffID          string            `json:"staffId"`
	PointsEarned     int64             `json:"pointsEarned" validate:"gte=0"`
	PointsRedeemed   int64             `json:"pointsRedeemed" validate:"gte=0"`
	TableID          *uuid.UUID        `json:"tableId,omitempty"`
	IsFromCatalog    bool              `json:"isFromCatalog,omitempty"`
}

func (req createTransactionRequest) input() transactions.CreateInput {
	return transactions.CreateInput{
		ID:               req.ID,
		StoreID:          req.StoreID,
		CustomerID:       req.CustomerID,
		CustomerName:     req.CustomerName,
		Items:            req.Items,
		TaxAmount:        req.TaxAmount,
		ServiceFeeAmount: req.ServiceFeeAmount,
		DiscountAmount:   req.DiscountAmount,
		PaymentMethod:    req.PaymentMethod,
		StaffID:          req.StaffID,
		PointsEarned:     req.PointsEarned,
		PointsRedeemed:   req.PointsRedeemed,
		TableID:          req.TableID,
		IsFromCatalog:    req.IsFromCatalog,
	}
}

// CreateTransaction writes a hub order directly. Settlement follows
// asynchronously from the transaction_created event.
func CreateTransaction(svc TransactionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		var body createTransactionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.StoreID == uuid.Nil {
			scoped, ok := scopedStoreID(r)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "storeId required"))
				return
			}
			body.StoreID = scoped
		}
		if err := requireStoreMatch(r, body.StoreID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateHubTransaction(r.Context(), body.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// GetTransaction returns a transaction with its sub-orders when it is a hub.
func GetTransaction(svc TransactionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type cancelTransactionRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// CancelTransaction reverses a hub order and its sub-orders.
func CancelTransaction(svc TransactionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cancelTransactionRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		dto, err := svc.Cancel(r.Context(), id, validators.SanitizeString(body.Reason, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type payTransactionRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash qris card transfer"`
}

func (b *payTransactionRequest) Sanitize() {
	b.PaymentMethod = strings.ToLower(strings.TrimSpace(b.PaymentMethod))
}

// PayTransaction settles a pay-later hub order at the cashier.
func PayTransaction(svc TransactionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body payTransactionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Pay(r.Context(), id, body.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type kitchenStatusRequest struct {
	TenantID uuid.UUID `json:"tenantId" validate:"required"`
	Status   string    `json:"status" validate:"required,oneof=pending ready served"`
}

func (b *kitchenStatusRequest) Sanitize() {
	b.Status = strings.ToLower(strings.TrimSpace(b.Status))
}

// UpdateKitchenStatus records a tenant's preparation progress on a hub order.
func UpdateKitchenStatus(svc TransactionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body kitchenStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateKitchenStatus(r.Context(), id, body.TenantID, enums.KitchenStatus(body.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type settleResponse struct {
	TransactionID uuid.UUID                     `json:"transactionId"`
	Status        string                        `json:"status"`
	FeeTokens     float64                       `json:"feeTokens"`
	SubOrders     []transactions.TransactionDTO `json:"subOrders"`
	DroppedItems  []types.OrderItem             `json:"droppedItems,omitempty"`
	FirstDelivery bool                          `json:"firstDelivery"`
}

// SettleTransaction runs distribution for a hub order synchronously. It is
// safe to repeat: later calls converge on the same sub-orders.
func SettleTransaction(svc TransactionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Settle(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result == nil {
			result = &transactions.Result{}
		}

		resp := settleResponse{
			TransactionID: id,
			Status:        string(result.Status),
			FeeTokens:     result.FeeTokens,
			SubOrders:     make([]transactions.TransactionDTO, 0, len(result.SubOrders)),
			DroppedItems:  result.Dropped,
			FirstDelivery: result.FirstDelivery,
		}
		for i := range result.SubOrders {
			resp.SubOrders = append(resp.SubOrders, transactions.FromModel(&result.SubOrders[i]))
		}
		responses.WriteSuccess(w, resp)
	}
}

// ListStoreTransactions pages through a store's history with ?limit= and ?cursor=.
func ListStoreTransactions(svc TransactionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}
		storeID, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByStore(r.Context(), storeID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
