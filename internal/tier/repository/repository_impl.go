package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	tierdomain "github.com/appoetlabs/appoet/internal/tier/domain"
)

type repo struct{}

func Provide() tierdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tier *tierdomain.Tier) error {
	return db.WithContext(ctx).Create(tier).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tier *tierdomain.Tier) error {
	return db.WithContext(ctx).Save(tier).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*tierdomain.Tier, error) {
	var t tierdomain.Tier
	err := db.WithContext(ctx).Where("id = ?", id).Take(&t).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*tierdomain.Tier, error) {
	var t tierdomain.Tier
	err := db.WithContext(ctx).Where("code = ?", code).Take(&t).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]*tierdomain.Tier, error) {
	var items []*tierdomain.Tier
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("price_cents ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
