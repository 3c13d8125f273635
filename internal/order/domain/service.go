package domain

import (
	"context"
	"errors"
	"time"

	"github.com/appoetlabs/appoet/pkg/db/pagination"
)

var (
	ErrNotFound            = errors.New("order not found")
	ErrInvalidID           = errors.New("invalid order id")
	ErrInvalidTier         = errors.New("invalid or inactive pricing tier")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrAlreadyProcessed    = errors.New("order has already been processed")
	ErrPaymentIncomplete   = errors.New("payment was not completed")
	ErrAmountMismatch      = errors.New("payment amount mismatch")
	ErrNotPaid             = errors.New("order has not been paid")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrNoCreditsRemaining  = errors.New("no poems remaining in this order")
	ErrLookupParamRequired = errors.New("order number or email is required")
)

type CreateRequest struct {
	TierID string `json:"tier_id"`
	Email  string `json:"email"`
}

type CreateResponse struct {
	OrderID         string `json:"order_id"`
	OrderNumber     string `json:"order_number"`
	ProviderOrderID string `json:"provider_order_id"`
	ApprovalURL     string `json:"approval_url,omitempty"`
}

type CaptureRequest struct {
	OrderID         string `json:"order_id"`
	ProviderOrderID string `json:"provider_order_id"`
}

type CaptureResponse struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

// RequestSummary is the projection of a poem request exposed on public
// order lookups.
type RequestSummary struct {
	ID          string     `json:"id,omitempty"`
	PoemType    string     `json:"poem_type"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

type DetailResponse struct {
	OrderID        string           `json:"order_id"`
	OrderNumber    string           `json:"order_number"`
	Email          string           `json:"email"`
	PoemsRemaining int              `json:"poems_remaining"`
	TierName       string           `json:"tier_name"`
	DeliveryHours  int              `json:"delivery_hours"`
	Requests       []RequestSummary `json:"existing_requests"`
}

type CheckRequest struct {
	OrderNumber string `json:"order_number"`
	Email       string `json:"email"`
}

type CheckedOrder struct {
	OrderID        string           `json:"order_id"`
	OrderNumber    string           `json:"order_number"`
	Status         string           `json:"status"`
	TierName       string           `json:"tier_name"`
	PoemsRemaining int              `json:"poems_remaining"`
	DeliveryHours  int              `json:"delivery_hours"`
	CreatedAt      time.Time        `json:"created_at"`
	Requests       []RequestSummary `json:"requests"`
}

type AdminListRequest struct {
	Status    string `form:"status"`
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

type AdminOrder struct {
	Order
	Requests []RequestSummary `json:"requests"`
}

type AdminListResponse struct {
	Orders   []AdminOrder        `json:"orders"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResponse, error)
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResponse, error)
	Get(ctx context.Context, id string) (*DetailResponse, error)
	Check(ctx context.Context, req CheckRequest) ([]CheckedOrder, error)
	AdminList(ctx context.Context, req AdminListRequest) (AdminListResponse, error)
}
