package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Payment is an append-only audit record. Exactly one row exists per
// successfully captured order, and rows are never mutated after insert.
type Payment struct {
	ID                snowflake.ID   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrderID           snowflake.ID   `json:"order_id" gorm:"not null;uniqueIndex"`
	Provider          string         `json:"provider" gorm:"type:varchar(30);not null"`
	ProviderPaymentID string         `json:"provider_payment_id" gorm:"type:varchar(255);not null"`
	AmountCents       int64          `json:"amount_cents" gorm:"not null"`
	Currency          string         `json:"currency" gorm:"type:varchar(3);not null"`
	Status            string         `json:"status" gorm:"type:varchar(30);not null"`
	ProviderPayload   datatypes.JSON `json:"provider_payload" gorm:"type:jsonb"`
	Verified          bool           `json:"verified" gorm:"not null;default:false"`
	CreatedAt         time.Time      `json:"created_at" gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

const ProviderPayPal = "paypal"
