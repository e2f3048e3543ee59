package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/modomarket/modomarket-backend/pkg/enums"
)

// Payment is the audit record of a gateway confirmation tied to an order.
type Payment struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	PaymentKey     string              `gorm:"column:payment_key;not null;uniqueIndex:idx_payments_payment_key"`
	GatewayOrderID string              `gorm:"column:gateway_order_id;not null"`
	Amount         int                 `gorm:"column:amount;not null"`
	Status         enums.PaymentStatus `gorm:"column:status;type:text;not null"`
	TransactionID  *string             `gorm:"column:transaction_id"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (Payment) TableName() string { return "payments" }
