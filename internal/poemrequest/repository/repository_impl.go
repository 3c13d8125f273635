package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	requestdomain "github.com/appoetlabs/appoet/internal/poemrequest/domain"
)

type repo struct{}

func Provide() requestdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, request *requestdomain.PoemRequest) error {
	return db.WithContext(ctx).Create(request).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, request *requestdomain.PoemRequest) error {
	return db.WithContext(ctx).Save(request).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*requestdomain.PoemRequest, error) {
	var req requestdomain.PoemRequest
	err := db.WithContext(ctx).Where("id = ?", id).Take(&req).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repo) ListByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]*requestdomain.PoemRequest, error) {
	var items []*requestdomain.PoemRequest
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, status requestdomain.RequestStatus) ([]*requestdomain.PoemRequest, error) {
	query := db.WithContext(ctx).Model(&requestdomain.PoemRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var items []*requestdomain.PoemRequest
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
