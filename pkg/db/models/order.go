package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/modomarket/modomarket-backend/pkg/enums"
)

// Order is the immutable purchase aggregate. Money fields are frozen at
// creation time; FinalPrice = TotalPrice - DiscountAmount + DeliveryFee.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	OrderNumber     string            `gorm:"column:order_number;not null;uniqueIndex:idx_orders_order_number"`
	TotalPrice      int               `gorm:"column:total_price;not null"`
	DiscountAmount  int               `gorm:"column:discount_amount;not null;default:0"`
	DeliveryFee     int               `gorm:"column:delivery_fee;not null;default:0"`
	FinalPrice      int               `gorm:"column:final_price;not null"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'confirmed'"`
	ReceiverName    string            `gorm:"column:receiver_name;not null"`
	ReceiverPhone   string            `gorm:"column:receiver_phone;not null"`
	Address         string            `gorm:"column:address;not null"`
	AddressDetail   *string           `gorm:"column:address_detail"`
	ZipCode         string            `gorm:"column:zip_code;not null"`
	DeliveryMessage *string           `gorm:"column:delivery_message"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
