package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, request *PoemRequest) error
	Update(ctx context.Context, db *gorm.DB, request *PoemRequest) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PoemRequest, error)
	ListByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]*PoemRequest, error)
	List(ctx context.Context, db *gorm.DB, status RequestStatus) ([]*PoemRequest, error)
}
