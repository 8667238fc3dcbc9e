package tenant

import (
	"time"
)

// Status is the subscription/account state of a shop. Exactly one status at
// a time; transitions are administrator-driven only.
type Status string

const (
	PendingActivation Status = "pending_activation"
	Trial             Status = "trial"
	Active            Status = "active"
	Suspended         Status = "suspended"
	Canceled          Status = "canceled"
)

func (s Status) String() string {
	switch s {
	case PendingActivation, Trial, Active, Suspended, Canceled:
		return string(s)
	default:
		return ""
	}
}

// Operational reports whether tenant-scoped operations may run. Trial and
// active are the only statuses that permit normal operation.
func (s Status) Operational() bool {
	return s == Trial || s == Active
}

type Tenant struct {
	ID            string     `gorm:"column:id;primaryKey" json:"tenant_id"`
	Code          string     `gorm:"column:code;uniqueIndex" json:"code"`
	Name          string     `gorm:"column:name" json:"name"`
	Slug          string     `gorm:"column:slug;uniqueIndex" json:"slug"`
	CountryCode   string     `gorm:"column:country_code" json:"country_code"`
	Timezone      string     `gorm:"column:timezone" json:"timezone"`
	Status        Status     `gorm:"column:status" json:"status"`
	TrialStartsAt *time.Time `gorm:"column:trial_starts_at" json:"trial_starts_at,omitempty"`
	TrialEndsAt   *time.Time `gorm:"column:trial_ends_at" json:"trial_ends_at,omitempty"`
	SuspendedAt   *time.Time `gorm:"column:suspended_at" json:"suspended_at,omitempty"`
	SuspendReason string     `gorm:"column:suspend_reason" json:"suspend_reason,omitempty"`
	CanceledAt    *time.Time `gorm:"column:canceled_at" json:"canceled_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`
}
