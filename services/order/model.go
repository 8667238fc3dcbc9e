package order

import (
	"time"
)

// Status is the work-order lifecycle state.
type Status string

const (
	StatusScheduled       Status = "scheduled"
	StatusInInspection    Status = "in_inspection"
	StatusInProgress      Status = "in_progress"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusCompleted       Status = "completed"
	StatusCanceled        Status = "canceled"
)

func (s Status) String() string {
	switch s {
	case StatusScheduled, StatusInInspection, StatusInProgress, StatusAwaitingPayment, StatusCompleted, StatusCanceled:
		return string(s)
	default:
		return ""
	}
}

// Order is a vehicle service job moving through the shop.
type Order struct {
	ID          string     `gorm:"column:id;primaryKey" json:"order_id"`
	TenantID    string     `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Code        string     `gorm:"column:code;uniqueIndex" json:"code"`
	CustomerID  string     `gorm:"column:customer_id;not null" json:"customer_id"`
	VehicleID   string     `gorm:"column:vehicle_id;not null" json:"vehicle_id"`
	AssigneeID  string     `gorm:"column:assignee_id" json:"assignee_id"`
	Status      Status     `gorm:"column:status;not null" json:"status"`
	Notes       string     `gorm:"column:notes" json:"notes"`
	TotalCents  int64      `gorm:"column:total_cents" json:"total_cents"`
	ScheduledAt *time.Time `gorm:"column:scheduled_at" json:"scheduled_at,omitempty"`
	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Items []*LineItem `gorm:"-" json:"items,omitempty"`
}

// LineItem snapshots a catalog service at order time, so later price edits
// never change an existing order.
type LineItem struct {
	ID         string    `gorm:"column:id;primaryKey" json:"line_item_id"`
	TenantID   string    `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	OrderID    string    `gorm:"column:order_id;not null;index" json:"order_id"`
	ServiceID  string    `gorm:"column:service_id;not null" json:"service_id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	PriceCents int64     `gorm:"column:price_cents;not null" json:"price_cents"`
	Quantity   int       `gorm:"column:quantity;default:1" json:"quantity"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}
