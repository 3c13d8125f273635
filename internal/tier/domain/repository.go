package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tier *Tier) error
	Update(ctx context.Context, db *gorm.DB, tier *Tier) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tier, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Tier, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]*Tier, error)
}
