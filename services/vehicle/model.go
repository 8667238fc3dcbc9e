package vehicle

import (
	"time"
)

// Vehicle belongs to a customer; the plate is unique within a tenant.
type Vehicle struct {
	ID         string    `gorm:"column:id;primaryKey" json:"vehicle_id"`
	TenantID   string    `gorm:"column:tenant_id;not null;uniqueIndex:idx_vehicles_tenant_plate" json:"tenant_id"`
	CustomerID string    `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Plate      string    `gorm:"column:plate;not null;uniqueIndex:idx_vehicles_tenant_plate" json:"plate"`
	Make       string    `gorm:"column:make" json:"make"`
	Model      string    `gorm:"column:model" json:"model"`
	Year       int       `gorm:"column:year" json:"year"`
	Color      string    `gorm:"column:color" json:"color"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}
