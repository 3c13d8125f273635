package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	tierdomain "github.com/appoetlabs/appoet/internal/tier/domain"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusQueued     OrderStatus = "QUEUED"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
)

// FinalizedStatuses are the states that count as a completed purchase when
// deciding whether an email belongs to a first-time customer.
var FinalizedStatuses = []OrderStatus{
	OrderStatusPaid,
	OrderStatusQueued,
	OrderStatusInProgress,
	OrderStatusDelivered,
}

// AcceptsRequests reports whether new poem requests may be submitted
// against an order in this status.
func (s OrderStatus) AcceptsRequests() bool {
	switch s {
	case OrderStatusPaid, OrderStatusQueued, OrderStatusInProgress:
		return true
	default:
		return false
	}
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusQueued,
		OrderStatusInProgress, OrderStatusDelivered:
		return true
	default:
		return false
	}
}

// Order is one checkout transaction and its pool of poem credits.
// DeliveryHours is copied from the tier at purchase time so later tier edits
// do not change an existing commitment.
type Order struct {
	ID              snowflake.ID     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrderNumber     string           `json:"order_number" gorm:"type:varchar(20);not null;uniqueIndex"`
	TierID          snowflake.ID     `json:"tier_id" gorm:"not null;index"`
	Tier            *tierdomain.Tier `json:"tier,omitempty" gorm:"foreignKey:TierID"`
	Email           string           `json:"email" gorm:"type:varchar(255);not null;index"`
	Status          OrderStatus      `json:"status" gorm:"type:varchar(20);not null;index"`
	PoemsRemaining  int              `json:"poems_remaining" gorm:"not null"`
	AmountPaidCents int64            `json:"amount_paid_cents" gorm:"not null;default:0"`
	DeliveryHours   int              `json:"delivery_hours" gorm:"not null"`
	FirstTime       bool             `json:"first_time" gorm:"not null;default:false"`
	CreatedAt       time.Time        `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time        `json:"updated_at" gorm:"not null"`
}

func (Order) TableName() string { return "orders" }
