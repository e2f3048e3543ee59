package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modomarket/modomarket-backend/pkg/enums"
	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
)

// Ledger moves stock for order assembly and refund/cancel compensation.
// Both operations are tx-scoped so callers compose them into the same
// transaction as the rows they guard.
type Ledger interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type ledger struct{}

// NewLedger exposes the default stock ledger implementation.
func NewLedger() Ledger {
	return ledger{}
}

// Reserve decrements stock with a conditional guard. Concurrent buyers race
// on the same UPDATE; the row version that loses sees RowsAffected == 0 and
// the order aborts instead of overselling.
func (ledger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock reserve")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ? AND sale_status = ?
	`, qty, productID, qty, enums.SaleStatusOnSale)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")
	}

	res = tx.WithContext(ctx).Exec(`
		UPDATE products
		SET sale_status = ?
		WHERE id = ? AND stock = 0 AND sale_status = ?
	`, enums.SaleStatusSoldOut, productID, enums.SaleStatusOnSale)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "mark sold out")
	}
	return nil
}

// Release returns stock after a cancellation or a completed refund. Sold-out
// listings flip back to on sale; hidden listings stay hidden.
func (ledger) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock release")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	res = tx.WithContext(ctx).Exec(`
		UPDATE products
		SET sale_status = ?
		WHERE id = ? AND sale_status = ?
	`, enums.SaleStatusOnSale, productID, enums.SaleStatusSoldOut)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restore sale status")
	}
	return nil
}
