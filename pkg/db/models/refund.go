package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/modomarket/modomarket-backend/pkg/enums"
)

// Refund is one buyer-initiated refund or exchange case against a single
// order item. At most one case per item may sit in an active status; the
// partial unique index in the migration backs the transactional check.
type Refund struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	OrderItemID    uuid.UUID          `gorm:"column:order_item_id;type:uuid;not null;index"`
	UserID         uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	RefundType     enums.RefundType   `gorm:"column:refund_type;type:text;not null"`
	Reason         string             `gorm:"column:reason;not null"`
	ReasonDetail   *string            `gorm:"column:reason_detail"`
	RefundAmount   *int               `gorm:"column:refund_amount"`
	Status         enums.RefundStatus `gorm:"column:status;type:text;not null;default:'requested'"`
	PreviousStatus *string            `gorm:"column:previous_status"`
	SellerResponse *string            `gorm:"column:seller_response"`
	OrderItem      *OrderItem         `gorm:"foreignKey:OrderItemID"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Refund) TableName() string { return "refunds" }
