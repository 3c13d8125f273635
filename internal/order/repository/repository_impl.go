package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	orderdomain "github.com/appoetlabs/appoet/internal/order/domain"
	"github.com/appoetlabs/appoet/pkg/db/option"
	"github.com/appoetlabs/appoet/pkg/db/pagination"
)

type repo struct{}

func Provide() orderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Omit("Tier").Create(order).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Omit("Tier").Save(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	var o orderdomain.Order
	err := db.WithContext(ctx).Preload("Tier").Where("id = ?", id).Take(&o).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) CountFinalizedByEmail(ctx context.Context, db *gorm.DB, email string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Where("LOWER(email) = LOWER(?)", email).
		Where("status IN ?", orderdomain.FinalizedStatuses).
		Count(&count).Error
	return count, err
}

func (r *repo) DecrementCredits(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET poems_remaining = poems_remaining - 1,
		     status = CASE WHEN status = ? THEN ? ELSE status END,
		     updated_at = ?
		 WHERE id = ?
		   AND poems_remaining > 0
		   AND status IN (?, ?, ?)`,
		orderdomain.OrderStatusPaid,
		orderdomain.OrderStatusQueued,
		now,
		id,
		orderdomain.OrderStatusPaid,
		orderdomain.OrderStatusQueued,
		orderdomain.OrderStatusInProgress,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) Search(ctx context.Context, db *gorm.DB, orderNumber, email string, limit int) ([]*orderdomain.Order, error) {
	query := db.WithContext(ctx).Preload("Tier")
	if strings.TrimSpace(orderNumber) != "" {
		query = query.Where("LOWER(order_number) LIKE LOWER(?)", "%"+strings.TrimSpace(orderNumber)+"%")
	} else {
		query = query.Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email))
	}

	var items []*orderdomain.Order
	err := query.Order("created_at DESC").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, status orderdomain.OrderStatus, page pagination.Pagination) ([]*orderdomain.Order, error) {
	query := db.WithContext(ctx).Preload("Tier").Model(&orderdomain.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	query = option.ApplyPagination(page).Apply(query)
	query = query.Order("created_at DESC, id DESC")

	var items []*orderdomain.Order
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
