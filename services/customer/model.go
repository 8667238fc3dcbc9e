package customer

import (
	"time"
)

type Customer struct {
	ID        string    `gorm:"column:id;primaryKey" json:"customer_id"`
	TenantID  string    `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Phone     string    `gorm:"column:phone" json:"phone"`
	Email     string    `gorm:"column:email" json:"email"`
	Notes     string    `gorm:"column:notes" json:"notes"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}
