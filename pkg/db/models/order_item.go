package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/modomarket/modomarket-backend/pkg/enums"
)

// OrderItem captures the snapshot of one purchased variant. UnitPrice is the
// effective price at purchase time and never tracks later catalog changes.
type OrderItem struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	PostID    uuid.UUID             `gorm:"column:post_id;type:uuid;not null"`
	SellerID  uuid.UUID             `gorm:"column:seller_id;type:uuid;not null;index"`
	Color     *string               `gorm:"column:color"`
	Size      *string               `gorm:"column:size"`
	Quantity  int                   `gorm:"column:quantity;not null"`
	UnitPrice int                   `gorm:"column:unit_price;not null"`
	Status    enums.OrderItemStatus `gorm:"column:status;type:text;not null;default:'confirmed'"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (OrderItem) TableName() string { return "order_items" }

// LineTotal is the frozen extended price for the row.
func (i OrderItem) LineTotal() int {
	return i.UnitPrice * i.Quantity
}
