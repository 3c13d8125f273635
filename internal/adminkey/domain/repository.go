package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, key *AdminKey) error
	Update(ctx context.Context, db *gorm.DB, key *AdminKey) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*AdminKey, error)
	FindByHash(ctx context.Context, db *gorm.DB, keyHash string) (*AdminKey, error)
	List(ctx context.Context, db *gorm.DB) ([]*AdminKey, error)
}
