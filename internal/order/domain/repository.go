package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/appoetlabs/appoet/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)

	// CountFinalizedByEmail counts prior orders for an email (case
	// insensitive) that reached a paid-or-later status. Used for the
	// first-time bonus decision.
	CountFinalizedByEmail(ctx context.Context, db *gorm.DB, email string) (int64, error)

	// DecrementCredits atomically consumes one credit and promotes
	// PAID -> QUEUED, refusing when no credits remain or the order is not
	// accepting requests. Returns false when zero rows were affected.
	// The caller supplies now so updated_at follows its clock.
	DecrementCredits(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (bool, error)

	// Search finds up to limit orders matching an order-number fragment
	// (case insensitive) or an exact email (case insensitive), newest first.
	Search(ctx context.Context, db *gorm.DB, orderNumber, email string, limit int) ([]*Order, error)

	List(ctx context.Context, db *gorm.DB, status OrderStatus, page pagination.Pagination) ([]*Order, error)
}
