package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modomarket/modomarket-backend/pkg/db/models"
)

// Repository persists buyer cart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateLine(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	UpdateLineQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	FindLineByID(ctx context.Context, id uuid.UUID) (*models.CartLine, error)
	FindLineByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartLine, error)
	FindLinesByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	FindLinesByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.CartLine, error)
	DeleteLine(ctx context.Context, id uuid.UUID) error
	DeleteLines(ctx context.Context, ids []uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateLine(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func (r *repository) UpdateLineQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *repository) FindLineByID(ctx context.Context, id uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) FindLineByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) FindLinesByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindLinesByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.CartLine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.CartLine{}).Error
}

func (r *repository) DeleteLines(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.CartLine{}).Error
}
