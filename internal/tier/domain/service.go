package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound             = errors.New("tier not found")
	ErrInvalidID            = errors.New("invalid tier id")
	ErrInvalidName          = errors.New("tier name is required")
	ErrInvalidPrice         = errors.New("tier price must be positive")
	ErrInvalidPoemCount     = errors.New("tier poem count must be positive")
	ErrInvalidBonusPoems    = errors.New("tier bonus poems must not be negative")
	ErrInvalidDeliveryHours = errors.New("tier delivery hours must be positive")
	ErrCodeTaken            = errors.New("tier code already exists")
)

type CreateRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	PoemCount     int    `json:"poem_count"`
	BonusPoems    int    `json:"bonus_poems"`
	PriceCents    int64  `json:"price_cents"`
	Currency      string `json:"currency"`
	DeliveryHours int    `json:"delivery_hours"`
	Active        *bool  `json:"active"`
}

type UpdateRequest struct {
	Description   *string `json:"description"`
	PriceCents    *int64  `json:"price_cents"`
	DeliveryHours *int    `json:"delivery_hours"`
	Active        *bool   `json:"active"`
}

type Response struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	PoemCount     int       `json:"poem_count"`
	BonusPoems    int       `json:"bonus_poems"`
	PriceCents    int64     `json:"price_cents"`
	Currency      string    `json:"currency"`
	DeliveryHours int       `json:"delivery_hours"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Service interface {
	ListActive(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
}
