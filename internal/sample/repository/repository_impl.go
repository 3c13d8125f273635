package repository

import (
	"context"

	"gorm.io/gorm"

	sampledomain "github.com/appoetlabs/appoet/internal/sample/domain"
)

type repo struct{}

func Provide() sampledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, poem *sampledomain.SamplePoem) error {
	return db.WithContext(ctx).Create(poem).Error
}

func (r *repo) ListVisible(ctx context.Context, db *gorm.DB) ([]*sampledomain.SamplePoem, error) {
	var items []*sampledomain.SamplePoem
	err := db.WithContext(ctx).
		Where("visible = ?", true).
		Order("display_order ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
