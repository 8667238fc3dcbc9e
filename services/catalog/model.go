package catalog

import (
	"time"
)

// ServiceItem is one bookable service a shop offers.
type ServiceItem struct {
	ID              string    `gorm:"column:id;primaryKey" json:"service_id"`
	TenantID        string    `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	Description     string    `gorm:"column:description" json:"description"`
	PriceCents      int64     `gorm:"column:price_cents;not null" json:"price_cents"`
	DurationMinutes int       `gorm:"column:duration_minutes" json:"duration_minutes"`
	Active          bool      `gorm:"column:active;default:true" json:"active"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// DefaultItems is the starter catalog provisioned for every new shop.
func DefaultItems() []ServiceItem {
	return []ServiceItem{
		{Name: "Exterior Wash", PriceCents: 2500, DurationMinutes: 30},
		{Name: "Interior Detail", PriceCents: 9500, DurationMinutes: 120},
		{Name: "Full Detail", PriceCents: 17500, DurationMinutes: 240},
		{Name: "Oil Change", PriceCents: 6500, DurationMinutes: 45},
		{Name: "Multi-Point Inspection", PriceCents: 0, DurationMinutes: 30},
	}
}
