package user

import (
	"time"

	"autocare-controlplane/services/authz"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) String() string {
	switch s {
	case StatusActive, StatusInactive:
		return string(s)
	default:
		return ""
	}
}

// User is a staff account scoped to a single shop. Platform administrators
// are stored with an empty tenant id.
type User struct {
	ID           string     `gorm:"column:id;primaryKey" json:"user_id"`
	TenantID     string     `gorm:"column:tenant_id;uniqueIndex:idx_users_tenant_email" json:"tenant_id"`
	Email        string     `gorm:"column:email;uniqueIndex:idx_users_tenant_email" json:"email"`
	Name         string     `gorm:"column:name" json:"name"`
	Role         authz.Role `gorm:"column:role" json:"role"`
	Status       Status     `gorm:"column:status" json:"status"`
	PasswordHash string     `gorm:"column:password_hash" json:"-"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}
