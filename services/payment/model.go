package payment

import (
	"time"
)

type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer:
		return true
	default:
		return false
	}
}

// Payment records money received against an order awaiting payment.
type Payment struct {
	ID          string    `gorm:"column:id;primaryKey" json:"payment_id"`
	TenantID    string    `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	OrderID     string    `gorm:"column:order_id;not null;index" json:"order_id"`
	InvoiceCode string    `gorm:"column:invoice_code;uniqueIndex" json:"invoice_code"`
	AmountCents int64     `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Method      Method    `gorm:"column:method;not null" json:"method"`
	Reference   string    `gorm:"column:reference" json:"reference"`
	CreatedBy   string    `gorm:"column:created_by" json:"created_by"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}
