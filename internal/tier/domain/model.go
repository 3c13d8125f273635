package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tier is admin-managed reference data describing a purchasable plan.
// Prices are stored in integer cents.
type Tier struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Code          string       `json:"code" gorm:"type:varchar(100);not null;uniqueIndex"`
	Name          string       `json:"name" gorm:"type:varchar(100);not null"`
	Description   string       `json:"description" gorm:"type:text"`
	PoemCount     int          `json:"poem_count" gorm:"not null"`
	BonusPoems    int          `json:"bonus_poems" gorm:"not null;default:0"`
	PriceCents    int64        `json:"price_cents" gorm:"not null"`
	Currency      string       `json:"currency" gorm:"type:varchar(3);not null;default:'USD'"`
	DeliveryHours int          `json:"delivery_hours" gorm:"not null"`
	// No default tag: gorm would omit a false value on insert and the
	// column default would flip it back to active.
	Active        bool         `json:"active" gorm:"not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null"`
}

func (Tier) TableName() string { return "tiers" }
