package schedule

import (
	"time"
)

// Appointment reserves a bay window for a work order.
type Appointment struct {
	ID              string    `gorm:"column:id;primaryKey" json:"appointment_id"`
	TenantID        string    `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	OrderID         string    `gorm:"column:order_id;not null;index" json:"order_id"`
	ScheduledAt     time.Time `gorm:"column:scheduled_at;not null;index" json:"scheduled_at"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	Notes           string    `gorm:"column:notes" json:"notes,omitempty"`
	CreatedBy       string    `gorm:"column:created_by" json:"created_by"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}
