package payments

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/modomarket/modomarket-backend/internal/cart"
	"github.com/modomarket/modomarket-backend/internal/catalog"
	"github.com/modomarket/modomarket-backend/internal/inventory"
	"github.com/modomarket/modomarket-backend/internal/orders"
	"github.com/modomarket/modomarket-backend/internal/pricing"
	"github.com/modomarket/modomarket-backend/pkg/config"
	"github.com/modomarket/modomarket-backend/pkg/db/models"
	"github.com/modomarket/modomarket-backend/pkg/enums"
	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
	"github.com/modomarket/modomarket-backend/pkg/logger"
	"github.com/modomarket/modomarket-backend/pkg/tosspay"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type stubGateway struct {
	confirmAmount int
	confirmErr    error
	cancelled     []string
	cancelErr     error
}

func (g *stubGateway) ConfirmPayment(ctx context.Context, params tosspay.ConfirmParams) (*tosspay.Confirmation, error) {
	if g.confirmErr != nil {
		return nil, g.confirmErr
	}
	amount := g.confirmAmount
	if amount == 0 {
		amount = params.Amount
	}
	return &tosspay.Confirmation{
		PaymentKey:     params.PaymentKey,
		GatewayOrderID: params.GatewayOrderID,
		TotalAmount:    amount,
		Status:         "DONE",
		TransactionID:  "txn-1",
	}, nil
}

func (g *stubGateway) CancelPayment(ctx context.Context, paymentKey, reason string) error {
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.cancelled = append(g.cancelled, paymentKey)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:payments_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.ProductPost{},
		&models.Product{},
		&models.CartLine{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB, gateway tosspay.Gateway) Service {
	t.Helper()

	pricer := pricing.NewResolver(config.PricingConfig{FreeShippingThreshold: 50000, DeliveryFlatFee: 3000})
	orderSvc, err := orders.NewService(
		orders.NewRepository(db),
		cart.NewRepository(db),
		catalog.NewRepository(db),
		inventory.NewLedger(),
		pricer,
		testTxRunner{db: db},
		nil,
	)
	if err != nil {
		t.Fatalf("new orders service: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "payments-test", Level: zerolog.Disabled, Output: io.Discard})
	svc, err := NewService(
		NewRepository(db),
		orders.NewRepository(db),
		orderSvc,
		gateway,
		testTxRunner{db: db},
		nil,
		logg,
	)
	if err != nil {
		t.Fatalf("new payments service: %v", err)
	}
	return svc
}

func seedListing(t *testing.T, db *gorm.DB, price int, stock int) models.Product {
	t.Helper()
	post := models.ProductPost{ID: uuid.New(), SellerID: uuid.New(), Title: "listing"}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	product := models.Product{
		ID:         uuid.New(),
		PostID:     post.ID,
		Price:      price,
		Stock:      stock,
		SaleStatus: enums.SaleStatusOnSale,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedCartLine(t *testing.T, db *gorm.DB, userID, productID uuid.UUID, qty int) uuid.UUID {
	t.Helper()
	line := models.CartLine{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: qty}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("seed cart line: %v", err)
	}
	return line.ID
}

func testOrderInput(userID uuid.UUID, lineIDs ...uuid.UUID) orders.CreateOrderInput {
	return orders.CreateOrderInput{
		UserID:      userID,
		CartLineIDs: lineIDs,
		Shipping: orders.ShippingInfo{
			ReceiverName:  "Kim Jiyoung",
			ReceiverPhone: "010-1234-5678",
			Address:       "12 Teheran-ro, Gangnam-gu, Seoul",
			ZipCode:       "06234",
		},
	}
}

func TestConfirmPaymentPersistsOrderAndPayment(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	gateway := &stubGateway{}
	svc := newTestService(t, db, gateway)
	ctx := context.Background()
	userID := uuid.New()
	product := seedListing(t, db, 10000, 5)
	lineID := seedCartLine(t, db, userID, product.ID, 2)

	// 2 x 10000 + 3000 delivery.
	result, err := svc.ConfirmPayment(ctx, ConfirmInput{
		PaymentKey:     "pay_ok",
		GatewayOrderID: "gw_1",
		Amount:         23000,
		Order:          testOrderInput(userID, lineID),
	})
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	if result.Order.FinalPrice != 23000 {
		t.Fatalf("expected final 23000, got %d", result.Order.FinalPrice)
	}
	if result.Payment.Status != enums.PaymentStatusDone {
		t.Fatalf("expected payment done, got %s", result.Payment.Status)
	}
	if result.Payment.Amount != 23000 {
		t.Fatalf("expected payment amount 23000, got %d", result.Payment.Amount)
	}

	stored, err := svc.GetPaymentByOrder(ctx, userID, result.Order.ID)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if stored.PaymentKey != "pay_ok" {
		t.Fatalf("unexpected payment key %s", stored.PaymentKey)
	}
	if len(gateway.cancelled) != 0 {
		t.Fatalf("no compensation expected, got %v", gateway.cancelled)
	}
}

func TestConfirmPaymentAmountMismatchRollsBackAndVoids(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	// Gateway captured 19000 but the computed total will be 23000.
	gateway := &stubGateway{confirmAmount: 19000}
	svc := newTestService(t, db, gateway)
	ctx := context.Background()
	userID := uuid.New()
	product := seedListing(t, db, 10000, 5)
	lineID := seedCartLine(t, db, userID, product.ID, 2)

	_, err := svc.ConfirmPayment(ctx, ConfirmInput{
		PaymentKey:     "pay_mismatch",
		GatewayOrderID: "gw_2",
		Amount:         19000,
		Order:          testOrderInput(userID, lineID),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeAmountMismatch) {
		t.Fatalf("expected amount mismatch, got %v", err)
	}

	// Nothing persisted: no order, no payment, stock untouched, cart intact.
	var orderCount, paymentCount, cartCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if err := db.Model(&models.Payment{}).Count(&paymentCount).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if err := db.Model(&models.CartLine{}).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart lines: %v", err)
	}
	if orderCount != 0 || paymentCount != 0 || cartCount != 1 {
		t.Fatalf("expected full rollback, got orders=%d payments=%d cart=%d", orderCount, paymentCount, cartCount)
	}

	var stored models.Product
	if err := db.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", stored.Stock)
	}

	// The captured payment was voided.
	if len(gateway.cancelled) != 1 || gateway.cancelled[0] != "pay_mismatch" {
		t.Fatalf("expected compensation cancel, got %v", gateway.cancelled)
	}
}

func TestConfirmPaymentGatewayFailureAssemblesNothing(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	gateway := &stubGateway{confirmErr: pkgerrors.New(pkgerrors.CodeGateway, "gateway unavailable")}
	svc := newTestService(t, db, gateway)
	ctx := context.Background()
	userID := uuid.New()
	product := seedListing(t, db, 10000, 5)
	lineID := seedCartLine(t, db, userID, product.ID, 1)

	_, err := svc.ConfirmPayment(ctx, ConfirmInput{
		PaymentKey:     "pay_down",
		GatewayOrderID: "gw_3",
		Amount:         13000,
		Order:          testOrderInput(userID, lineID),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("expected no orders, got %d", orderCount)
	}
}

func TestConfirmPaymentInsufficientStockVoidsCapture(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	gateway := &stubGateway{}
	svc := newTestService(t, db, gateway)
	ctx := context.Background()
	userID := uuid.New()
	product := seedListing(t, db, 10000, 1)
	lineID := seedCartLine(t, db, userID, product.ID, 3)

	_, err := svc.ConfirmPayment(ctx, ConfirmInput{
		PaymentKey:     "pay_oversell",
		GatewayOrderID: "gw_4",
		Amount:         33000,
		Order:          testOrderInput(userID, lineID),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(gateway.cancelled) != 1 {
		t.Fatalf("expected compensation cancel, got %v", gateway.cancelled)
	}
}

func TestGetPaymentByOrderChecksOwnership(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	gateway := &stubGateway{}
	svc := newTestService(t, db, gateway)
	ctx := context.Background()
	userID := uuid.New()
	product := seedListing(t, db, 30000, 5)
	lineID := seedCartLine(t, db, userID, product.ID, 2)

	result, err := svc.ConfirmPayment(ctx, ConfirmInput{
		PaymentKey:     "pay_owner",
		GatewayOrderID: "gw_5",
		Amount:         60000,
		Order:          testOrderInput(userID, lineID),
	})
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	if _, err := svc.GetPaymentByOrder(ctx, uuid.New(), result.Order.ID); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
