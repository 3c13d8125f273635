package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrUnknownKind = errors.New("unknown outbox email kind")
	ErrSendFailed  = errors.New("email send failed")
)

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
	OutboxStatusFailed  OutboxStatus = "FAILED"
)

const (
	KindOrderConfirmation = "order_confirmation"
	KindPoemDelivery      = "poem_delivery"
)

// OutboxEmail is written in the same transaction as the state change that
// requires it, then delivered asynchronously by the scheduler. Delivery
// failures back off and never affect the originating transition.
type OutboxEmail struct {
	ID            snowflake.ID   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Kind          string         `json:"kind" gorm:"type:varchar(50);not null;index"`
	Recipient     string         `json:"recipient" gorm:"type:varchar(255);not null"`
	Subject       string         `json:"subject" gorm:"type:varchar(255);not null"`
	Payload       datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	Status        OutboxStatus   `json:"status" gorm:"type:varchar(20);not null;index"`
	Attempts      int            `json:"attempts" gorm:"not null;default:0"`
	NextAttemptAt time.Time      `json:"next_attempt_at" gorm:"not null;index"`
	LastError     string         `json:"last_error" gorm:"type:text"`
	SentAt        *time.Time     `json:"sent_at"`
	CreatedAt     time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"not null"`
}

func (OutboxEmail) TableName() string { return "email_outbox" }

// OrderConfirmation carries the fields rendered into the confirmation mail.
type OrderConfirmation struct {
	OrderNumber    string `json:"order_number"`
	TierName       string `json:"tier_name"`
	PriceFormatted string `json:"price_formatted"`
	PoemsRemaining int    `json:"poems_remaining"`
	DeliveryHours  int    `json:"delivery_hours"`
	RequestURL     string `json:"request_url"`
}

// PoemDelivery carries the fields rendered into the delivery mail.
type PoemDelivery struct {
	OrderNumber string `json:"order_number"`
	PoemTitle   string `json:"poem_title"`
	PoemType    string `json:"poem_type"`
	PoemContent string `json:"poem_content"`
}
