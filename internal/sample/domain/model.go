package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// SamplePoem is display-only content for the landing page.
type SamplePoem struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title        string       `json:"title" gorm:"type:varchar(200);not null"`
	Content      string       `json:"content" gorm:"type:text;not null"`
	PoemType     string       `json:"poem_type" gorm:"type:varchar(30);not null"`
	Visible      bool         `json:"visible" gorm:"not null"`
	DisplayOrder int          `json:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null"`
}

func (SamplePoem) TableName() string { return "sample_poems" }

type Response struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	PoemType     string `json:"poem_type"`
	DisplayOrder int    `json:"display_order"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, poem *SamplePoem) error
	ListVisible(ctx context.Context, db *gorm.DB) ([]*SamplePoem, error)
}

type Service interface {
	ListVisible(ctx context.Context) ([]Response, error)
}
