package domain

import (
	"context"
	"errors"
)

var (
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	ErrRemoteOrderNotFound = errors.New("remote payment order not found")
)

// CaptureStatusCompleted is the only remote status that finalizes an order.
const CaptureStatusCompleted = "COMPLETED"

// RemoteOrder identifies a transaction opened at the provider. The customer
// approves it out-of-band before the capture round trip.
type RemoteOrder struct {
	ID          string
	ApprovalURL string
}

// CaptureResult is the settled outcome reported by the provider.
type CaptureResult struct {
	Status      string
	AmountCents int64
	Currency    string
	ProviderRef string
	RawPayload  []byte
}

// Adapter wraps a payment provider's order API. The core treats it as a
// black box returning a completion status and a settled amount.
type Adapter interface {
	CreateRemoteOrder(ctx context.Context, referenceID, description string, amountCents int64, currency string) (*RemoteOrder, error)
	Capture(ctx context.Context, remoteOrderID string) (*CaptureResult, error)
}
