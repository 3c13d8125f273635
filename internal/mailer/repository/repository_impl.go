package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	mailerdomain "github.com/appoetlabs/appoet/internal/mailer/domain"
)

type repo struct{}

func Provide() mailerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, email *mailerdomain.OutboxEmail) error {
	return db.WithContext(ctx).Create(email).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, email *mailerdomain.OutboxEmail) error {
	return db.WithContext(ctx).Save(email).Error
}

// FindDue reads due PENDING rows without locking them. The dispatcher runs
// as a single instance; scaling it out would need FOR UPDATE SKIP LOCKED here.
func (r *repo) FindDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]*mailerdomain.OutboxEmail, error) {
	var items []*mailerdomain.OutboxEmail
	err := db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", mailerdomain.OutboxStatusPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteSentBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("status = ? AND sent_at < ?", mailerdomain.OutboxStatusSent, cutoff).
		Delete(&mailerdomain.OutboxEmail{})
	return result.RowsAffected, result.Error
}
