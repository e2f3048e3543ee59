package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/modomarket/modomarket-backend/pkg/enums"
)

// Product is a purchasable variant under a product post. Prices are integer
// KRW. DiscountPrice, when set, overrides Price as the effective unit price.
type Product struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	PostID        uuid.UUID        `gorm:"column:post_id;type:uuid;not null;index"`
	Price         int              `gorm:"column:price;not null"`
	DiscountPrice *int             `gorm:"column:discount_price"`
	Stock         int              `gorm:"column:stock;not null;default:0"`
	SaleStatus    enums.SaleStatus `gorm:"column:sale_status;type:text;not null;default:'on_sale'"`
	Color         *string          `gorm:"column:color"`
	Size          *string          `gorm:"column:size"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

// EffectiveUnitPrice returns the price a buyer actually pays for one unit.
func (p Product) EffectiveUnitPrice() int {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}
