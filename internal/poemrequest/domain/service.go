package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("poem request not found")
	ErrInvalidID           = errors.New("invalid poem request id")
	ErrOrderNotFound       = errors.New("order not found")
	ErrPaymentNotConfirmed = errors.New("order has not been paid")
	ErrNoCreditsRemaining  = errors.New("no poems remaining in this order")
	ErrInvalidPoemType     = errors.New("invalid poem type")
	ErrThemeRequired       = errors.New("theme is required unless surprise me is chosen")
	ErrContentRequired     = errors.New("poem content is required")
	ErrInvalidStatus       = errors.New("invalid poem request status")
)

// DefaultSurpriseTheme fills the theme column when the customer opts out of
// choosing one.
const DefaultSurpriseTheme = "Surprise me!"

type SubmitRequest struct {
	OrderID     string `json:"order_id"`
	PoemType    string `json:"poem_type"`
	Theme       string `json:"theme"`
	Tone        string `json:"tone"`
	Constraints string `json:"constraints"`
	SurpriseMe  bool   `json:"surprise_me"`
}

type SubmitResponse struct {
	RequestID         string    `json:"request_id"`
	PoemsRemaining    int       `json:"poems_remaining"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

type DeliverRequest struct {
	PoemContent string `json:"poem_content"`
	PoemTitle   string `json:"poem_title"`
}

type Response struct {
	ID                string        `json:"id"`
	OrderID           string        `json:"order_id"`
	OrderNumber       string        `json:"order_number,omitempty"`
	CustomerEmail     string        `json:"customer_email,omitempty"`
	TierName          string        `json:"tier_name,omitempty"`
	PoemType          PoemType      `json:"poem_type"`
	Theme             string        `json:"theme"`
	Tone              string        `json:"tone,omitempty"`
	Constraints       string        `json:"constraints,omitempty"`
	SurpriseMe        bool          `json:"surprise_me"`
	Status            RequestStatus `json:"status"`
	PoemTitle         string        `json:"poem_title,omitempty"`
	PoemContent       string        `json:"poem_content,omitempty"`
	EstimatedDelivery time.Time     `json:"estimated_delivery"`
	DeliveredAt       *time.Time    `json:"delivered_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResponse, error)
	MarkInProgress(ctx context.Context, id string) (*Response, error)
	UpdateStatus(ctx context.Context, id string, status RequestStatus) (*Response, error)
	Deliver(ctx context.Context, id string, req DeliverRequest) (*Response, error)
	AdminList(ctx context.Context, status string) ([]Response, error)
}
