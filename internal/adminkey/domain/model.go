package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
)

// Scopes an admin key may carry. Authorization policy maps these onto
// route objects and actions.
const (
	ScopeRequestsRead  = "requests:read"
	ScopeRequestsWrite = "requests:write"
	ScopeOrdersRead    = "orders:read"
	ScopeTiersWrite    = "tiers:write"
	ScopeKeysAdmin     = "keys:admin"
)

var KnownScopes = []string{
	ScopeRequestsRead,
	ScopeRequestsWrite,
	ScopeOrdersRead,
	ScopeTiersWrite,
	ScopeKeysAdmin,
}

// AdminKey stores only the SHA-256 of the issued secret. The plaintext is
// returned once at issue time and never persisted.
type AdminKey struct {
	ID         snowflake.ID   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name       string         `json:"name" gorm:"type:varchar(100);not null"`
	KeyHash    string         `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	Scopes     pq.StringArray `json:"scopes" gorm:"type:text[]"`
	ExpiresAt  time.Time      `json:"expires_at" gorm:"not null"`
	Active     bool           `json:"active" gorm:"not null"`
	LastUsedAt *time.Time     `json:"last_used_at"`
	CreatedAt  time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time      `json:"updated_at" gorm:"not null"`
}

func (AdminKey) TableName() string { return "admin_keys" }

func (k *AdminKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// HashKey is the canonical digest of a raw admin key.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
