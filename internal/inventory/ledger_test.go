package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/modomarket/modomarket-backend/pkg/db/models"
	"github.com/modomarket/modomarket-backend/pkg/enums"
	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate products: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:         uuid.New(),
		PostID:     uuid.New(),
		Price:      10000,
		Stock:      stock,
		SaleStatus: enums.SaleStatusOnSale,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func TestReserveDecrementsStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	productID := seedProduct(t, db, 5)
	ledger := NewLedger()

	if err := ledger.Reserve(ctx, db, productID, 3); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if product.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", product.Stock)
	}
	if product.SaleStatus != enums.SaleStatusOnSale {
		t.Fatalf("expected on_sale, got %s", product.SaleStatus)
	}
}

func TestReserveRejectsInsufficientStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	productID := seedProduct(t, db, 2)
	ledger := NewLedger()

	err := ledger.Reserve(ctx, db, productID, 3)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}

	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if product.Stock != 2 {
		t.Fatalf("stock must be untouched, got %d", product.Stock)
	}
}

func TestReserveExactStockMarksSoldOut(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	productID := seedProduct(t, db, 4)
	ledger := NewLedger()

	if err := ledger.Reserve(ctx, db, productID, 4); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if product.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", product.Stock)
	}
	if product.SaleStatus != enums.SaleStatusSoldOut {
		t.Fatalf("expected sold_out, got %s", product.SaleStatus)
	}
}

func TestSequentialReservesStopAtZero(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	productID := seedProduct(t, db, 1)
	ledger := NewLedger()

	if err := ledger.Reserve(ctx, db, productID, 1); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	err := ledger.Reserve(ctx, db, productID, 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected second reserve to fail, got %v", err)
	}

	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if product.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", product.Stock)
	}
}

func TestReleaseRestoresStockAndStatus(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	productID := seedProduct(t, db, 2)
	ledger := NewLedger()

	if err := ledger.Reserve(ctx, db, productID, 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := ledger.Release(ctx, db, productID, 2); err != nil {
		t.Fatalf("release: %v", err)
	}

	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if product.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", product.Stock)
	}
	if product.SaleStatus != enums.SaleStatusOnSale {
		t.Fatalf("expected on_sale, got %s", product.SaleStatus)
	}
}

func TestReserveValidatesQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	err := NewLedger().Reserve(context.Background(), db, uuid.New(), 0)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
