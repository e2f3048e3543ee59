package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductPost is the seller-facing listing that groups purchasable variants.
type ProductPost struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SellerID  uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index"`
	Title     string    `gorm:"column:title;not null"`
	Products  []Product `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductPost) TableName() string { return "product_posts" }
