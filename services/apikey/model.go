package apikey

import (
	"time"

	"github.com/lib/pq"
)

type KeyType string

const (
	KeyTypeServer      KeyType = "server"
	KeyTypePublishable KeyType = "publishable"
)

type KeyStatus string

const (
	KeyStatusActive  KeyStatus = "active"
	KeyStatusRevoked KeyStatus = "revoked"
)

// APIKey is a per-tenant server credential. Only the argon2 hash of the
// secret is stored; the plaintext is shown once at creation.
type APIKey struct {
	ID         string         `gorm:"column:id;primaryKey" json:"api_key_id"`
	TenantID   string         `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	KeyID      string         `gorm:"column:key_id;uniqueIndex;not null" json:"key_id"` // e.g. acsk_live_xxx
	KeyType    KeyType        `gorm:"column:key_type;not null" json:"key_type"`
	Label      string         `gorm:"column:label" json:"label"`
	SecretHash string         `gorm:"column:secret_hash;not null" json:"-"`
	Scopes     pq.StringArray `gorm:"column:scopes;type:text[]" json:"scopes"`
	Status     KeyStatus      `gorm:"column:status;default:'active';not null" json:"status"`
	CreatedBy  string         `gorm:"column:created_by" json:"created_by"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	RevokedAt  *time.Time     `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	ExpiresAt  *time.Time     `gorm:"column:expires_at" json:"expires_at,omitempty"`
}
