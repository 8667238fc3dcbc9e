package inspection

import (
	"time"

	"gorm.io/datatypes"
)

// Inspection records the multi-point check performed while an order is in
// in_inspection. The checklist is free-form JSON owned by the client.
type Inspection struct {
	ID          string         `gorm:"column:id;primaryKey" json:"inspection_id"`
	TenantID    string         `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	OrderID     string         `gorm:"column:order_id;not null;index" json:"order_id"`
	InspectorID string         `gorm:"column:inspector_id" json:"inspector_id"`
	Checklist   datatypes.JSON `gorm:"column:checklist" json:"checklist"`
	Notes       string         `gorm:"column:notes" json:"notes"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
}
