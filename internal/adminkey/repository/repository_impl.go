package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	adminkeydomain "github.com/appoetlabs/appoet/internal/adminkey/domain"
)

type repo struct{}

func Provide() adminkeydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, key *adminkeydomain.AdminKey) error {
	return db.WithContext(ctx).Create(key).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, key *adminkeydomain.AdminKey) error {
	return db.WithContext(ctx).Save(key).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*adminkeydomain.AdminKey, error) {
	var k adminkeydomain.AdminKey
	err := db.WithContext(ctx).Where("id = ?", id).Take(&k).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *repo) FindByHash(ctx context.Context, db *gorm.DB, keyHash string) (*adminkeydomain.AdminKey, error) {
	var k adminkeydomain.AdminKey
	err := db.WithContext(ctx).Where("key_hash = ?", keyHash).Take(&k).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*adminkeydomain.AdminKey, error) {
	var items []*adminkeydomain.AdminKey
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
