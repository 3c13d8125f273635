package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("admin key not found")
	ErrInvalidID     = errors.New("invalid admin key id")
	ErrInvalidName   = errors.New("admin key name is required")
	ErrInvalidScopes = errors.New("at least one known scope is required")
	ErrInvalidTTL    = errors.New("invalid key lifetime")
	ErrUnauthorized  = errors.New("invalid, expired or revoked admin key")
)

// DefaultTTL applies to keys issued without an explicit lifetime.
const DefaultTTL = 90 * 24 * time.Hour

type IssueRequest struct {
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
	TTL    string   `json:"ttl,omitempty"`
}

// IssueResponse carries the plaintext key. It is the only place it ever
// appears.
type IssueResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	Scopes    []string  `json:"scopes"`
	ExpiresAt time.Time `json:"expires_at"`
}

type KeyResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Scopes     []string   `json:"scopes"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Active     bool       `json:"active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Service interface {
	Issue(ctx context.Context, req IssueRequest) (*IssueResponse, error)

	// Verify resolves a presented raw key to its active, unexpired record
	// and stamps last_used_at. Any failure collapses to ErrUnauthorized.
	Verify(ctx context.Context, rawKey string) (*AdminKey, error)

	List(ctx context.Context) ([]KeyResponse, error)
	Revoke(ctx context.Context, id string) error
}
