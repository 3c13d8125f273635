package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PoemType string

const (
	PoemTypeHaiku     PoemType = "HAIKU"
	PoemTypeFreeVerse PoemType = "FREE_VERSE"
	PoemTypeSonnet    PoemType = "SONNET"
	PoemTypeLimerick  PoemType = "LIMERICK"
	PoemTypeAcrostic  PoemType = "ACROSTIC"
)

func (t PoemType) Valid() bool {
	switch t {
	case PoemTypeHaiku, PoemTypeFreeVerse, PoemTypeSonnet,
		PoemTypeLimerick, PoemTypeAcrostic:
		return true
	default:
		return false
	}
}

type RequestStatus string

// RequestStatusCompleted exists in the persisted enum but no write path
// assigns it; it is kept so historical rows remain representable.
const (
	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
	RequestStatusDelivered  RequestStatus = "DELIVERED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusInProgress,
		RequestStatusCompleted, RequestStatusDelivered:
		return true
	default:
		return false
	}
}

// PoemRequest is one customer-submitted request for a single poem,
// fulfilled independently of its siblings.
type PoemRequest struct {
	ID                snowflake.ID  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrderID           snowflake.ID  `json:"order_id" gorm:"not null;index"`
	PoemType          PoemType      `json:"poem_type" gorm:"type:varchar(30);not null"`
	Theme             string        `json:"theme" gorm:"type:text;not null"`
	Tone              string        `json:"tone" gorm:"type:varchar(100)"`
	Constraints       string        `json:"constraints" gorm:"type:text"`
	SurpriseMe        bool          `json:"surprise_me" gorm:"not null;default:false"`
	Status            RequestStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	PoemTitle         string        `json:"poem_title" gorm:"type:varchar(200)"`
	PoemContent       string        `json:"poem_content" gorm:"type:text"`
	EstimatedDelivery time.Time     `json:"estimated_delivery" gorm:"not null"`
	DeliveredAt       *time.Time    `json:"delivered_at"`
	CreatedAt         time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time     `json:"updated_at" gorm:"not null"`
}

func (PoemRequest) TableName() string { return "poem_requests" }
