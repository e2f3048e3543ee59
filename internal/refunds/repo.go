package refunds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modomarket/modomarket-backend/pkg/db/models"
	"github.com/modomarket/modomarket-backend/pkg/enums"
)

// Repository persists refund cases. Transition updates are conditional on the
// expected current status so concurrent actors cannot double-apply a step.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRefund(ctx context.Context, refund *models.Refund) (*models.Refund, error)
	FindRefundByID(ctx context.Context, id uuid.UUID) (*models.Refund, error)
	FindActiveByOrderItem(ctx context.Context, orderItemID uuid.UUID) (*models.Refund, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.RefundStatus, sellerResponse *string) (bool, error)
	ListByBuyer(ctx context.Context, userID uuid.UUID) ([]models.Refund, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Refund, error)
	FindOrderItemByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	UpdateOrderItemStatus(ctx context.Context, id uuid.UUID, status enums.OrderItemStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a refunds repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRefund(ctx context.Context, refund *models.Refund) (*models.Refund, error) {
	if err := r.db.WithContext(ctx).Create(refund).Error; err != nil {
		return nil, err
	}
	return refund, nil
}

func (r *repository) FindRefundByID(ctx context.Context, id uuid.UUID) (*models.Refund, error) {
	var refund models.Refund
	err := r.db.WithContext(ctx).
		Preload("OrderItem").
		Where("id = ?", id).
		First(&refund).Error
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *repository) FindActiveByOrderItem(ctx context.Context, orderItemID uuid.UUID) (*models.Refund, error) {
	var refund models.Refund
	err := r.db.WithContext(ctx).
		Where("order_item_id = ? AND status IN ?", orderItemID, []enums.RefundStatus{
			enums.RefundStatusRequested,
			enums.RefundStatusApproved,
		}).
		First(&refund).Error
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.RefundStatus, sellerResponse *string) (bool, error) {
	updates := map[string]any{
		"status": to,
	}
	if sellerResponse != nil {
		updates["seller_response"] = *sellerResponse
	}
	res := r.db.WithContext(ctx).
		Model(&models.Refund{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListByBuyer(ctx context.Context, userID uuid.UUID) ([]models.Refund, error) {
	var refunds []models.Refund
	err := r.db.WithContext(ctx).
		Preload("OrderItem").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&refunds).Error
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Refund, error) {
	var refunds []models.Refund
	err := r.db.WithContext(ctx).
		Preload("OrderItem").
		Joins("JOIN order_items ON order_items.id = refunds.order_item_id").
		Where("order_items.seller_id = ?", sellerID).
		Order("refunds.created_at DESC").
		Find(&refunds).Error
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

func (r *repository) FindOrderItemByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateOrderItemStatus(ctx context.Context, id uuid.UUID, status enums.OrderItemStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", id).
		Update("status", status).Error
}
