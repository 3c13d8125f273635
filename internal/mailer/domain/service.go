package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Email is a fully rendered message handed to a Sender.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers one rendered email. Implementations wrap a transactional
// email provider.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

type Service interface {
	// EnqueueOrderConfirmation and EnqueuePoemDelivery write an outbox row
	// using tx, so the enqueue commits or rolls back with the caller's
	// state change.
	EnqueueOrderConfirmation(ctx context.Context, tx *gorm.DB, recipient string, msg OrderConfirmation) error
	EnqueuePoemDelivery(ctx context.Context, tx *gorm.DB, recipient string, msg PoemDelivery) error

	// DispatchDue sends up to limit due pending emails and returns how many
	// were attempted.
	DispatchDue(ctx context.Context, limit int) (int, error)

	// PruneSent deletes sent rows older than the cutoff.
	PruneSent(ctx context.Context, cutoff time.Time) (int64, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, email *OutboxEmail) error
	Update(ctx context.Context, db *gorm.DB, email *OutboxEmail) error
	FindDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]*OutboxEmail, error)
	DeleteSentBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
}
