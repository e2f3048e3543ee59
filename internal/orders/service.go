package orders

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modomarket/modomarket-backend/internal/cart"
	"github.com/modomarket/modomarket-backend/internal/catalog"
	"github.com/modomarket/modomarket-backend/internal/inventory"
	"github.com/modomarket/modomarket-backend/internal/pricing"
	"github.com/modomarket/modomarket-backend/pkg/db"
	"github.com/modomarket/modomarket-backend/pkg/db/models"
	"github.com/modomarket/modomarket-backend/pkg/enums"
	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
	"github.com/modomarket/modomarket-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order assembly and lifecycle operations. Assemble is
// tx-scoped so the payment reconciler can run it inside its own transaction.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Assemble(ctx context.Context, tx *gorm.DB, input CreateOrderInput) (*models.Order, error)
	GetOrderDetail(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) error
}

type service struct {
	repo     Repository
	cartRepo cart.Repository
	catalog  catalog.Repository
	ledger   inventory.Ledger
	pricer   *pricing.Resolver
	tx       txRunner
	metrics  *metrics.WorkflowMetrics
}

// NewService builds an orders service with the required dependencies.
func NewService(
	repo Repository,
	cartRepo cart.Repository,
	catalogRepo catalog.Repository,
	ledger inventory.Ledger,
	pricer *pricing.Resolver,
	tx txRunner,
	workflowMetrics *metrics.WorkflowMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("pricing resolver required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		cartRepo: cartRepo,
		catalog:  catalogRepo,
		ledger:   ledger,
		pricer:   pricer,
		tx:       tx,
		metrics:  workflowMetrics,
	}, nil
}

// CreateOrder assembles an order in one transaction. A collision on the
// generated order number rolls the attempt back and retries once with a
// fresh suffix.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	var order *models.Order
	run := func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			assembled, err := s.Assemble(ctx, tx, input)
			if err != nil {
				return err
			}
			order = assembled
			return nil
		})
	}

	err := run()
	if IsOrderNumberConflict(err) {
		err = run()
	}
	if err != nil {
		return nil, err
	}
	s.metrics.IncOrderCreated()
	return order, nil
}

// Assemble freezes prices, reserves stock, persists the aggregate, and evicts
// the consumed cart lines, all against the caller's transaction. Any error
// leaves nothing behind once the caller rolls back.
func (s *service) Assemble(ctx context.Context, tx *gorm.DB, input CreateOrderInput) (*models.Order, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for order assembly")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.CartLineIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one cart line required")
	}
	if err := validateShipping(input.Shipping); err != nil {
		return nil, err
	}

	repo := s.repo.WithTx(tx)
	cartRepo := s.cartRepo.WithTx(tx)
	catalogRepo := s.catalog.WithTx(tx)

	lines, err := cartRepo.FindLinesByIDs(ctx, input.UserID, input.CartLineIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart lines")
	}
	// The lookup is user-scoped, so a missing row and a foreign row are
	// indistinguishable; both are rejected as not owned.
	if len(lines) != len(uniqueIDs(input.CartLineIDs)) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart line missing or not owned by user")
	}

	productIDs := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		productIDs = append(productIDs, line.ProductID)
	}
	products, err := catalogRepo.FindProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	productsByID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	postIDs := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		postIDs = append(postIDs, p.PostID)
	}
	posts, err := catalogRepo.FindPostsByIDs(ctx, postIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product posts")
	}
	postsByID := make(map[uuid.UUID]models.ProductPost, len(posts))
	for _, p := range posts {
		postsByID[p.ID] = p
	}

	quoteLines := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		product, ok := productsByID[line.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if _, ok := postsByID[product.PostID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product post not found")
		}

		if err := s.ledger.Reserve(ctx, tx, product.ID, line.Quantity); err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
				s.metrics.IncStockRejection()
			}
			return nil, err
		}
		quoteLines = append(quoteLines, pricing.Line{Product: product, Qty: line.Quantity})
	}

	quote := s.pricer.QuoteOrder(quoteLines)

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          input.UserID,
		OrderNumber:     newOrderNumber(input.UserID, time.Now()),
		TotalPrice:      quote.TotalPrice,
		DiscountAmount:  quote.DiscountAmount,
		DeliveryFee:     quote.DeliveryFee,
		FinalPrice:      quote.FinalPrice,
		Status:          enums.OrderStatusConfirmed,
		ReceiverName:    input.Shipping.ReceiverName,
		ReceiverPhone:   input.Shipping.ReceiverPhone,
		Address:         input.Shipping.Address,
		AddressDetail:   input.Shipping.AddressDetail,
		ZipCode:         input.Shipping.ZipCode,
		DeliveryMessage: input.Shipping.DeliveryMessage,
	}

	if _, err := repo.CreateOrder(ctx, order); err != nil {
		if db.IsUniqueViolation(err, "idx_orders_order_number") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, orderNumberConflictMsg)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product := productsByID[line.ProductID]
		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			PostID:    product.PostID,
			SellerID:  postsByID[product.PostID].SellerID,
			Color:     product.Color,
			Size:      product.Size,
			Quantity:  line.Quantity,
			UnitPrice: product.EffectiveUnitPrice(),
			Status:    enums.OrderItemStatusConfirmed,
		})
	}
	if err := repo.CreateOrderItems(ctx, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
	}
	order.Items = items

	lineIDs := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		lineIDs = append(lineIDs, line.ID)
	}
	if err := cartRepo.DeleteLines(ctx, lineIDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "evict cart lines")
	}

	return order, nil
}

func (s *service) GetOrderDetail(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	orders, err := s.repo.FindOrdersByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// CancelOrder flips a confirmed order to cancelled and returns the reserved
// stock of every still-confirmed item.
func (s *service) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
		if order.Status != enums.OrderStatusConfirmed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be cancelled in current state")
		}

		for _, item := range order.Items {
			if item.Status != enums.OrderItemStatusConfirmed {
				continue
			}
			if err := s.ledger.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := repo.UpdateItemStatusesByOrder(ctx, order.ID, enums.OrderItemStatusConfirmed, enums.OrderItemStatusCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order items")
		}
		if err := repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.IncOrderCancelled()
	return nil
}

const orderNumberConflictMsg = "order number collision"

// IsOrderNumberConflict reports whether the assembly failed only because the
// generated order number was taken. Callers retry once on it.
func IsOrderNumberConflict(err error) bool {
	if err == nil {
		return false
	}
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeConflict && strings.Contains(typed.Message(), orderNumberConflictMsg)
}

// newOrderNumber builds a human-readable order number: a second-resolution
// timestamp plus a four-digit suffix mixing the user id with fresh entropy.
func newOrderNumber(userID uuid.UUID, now time.Time) string {
	entropy := uuid.New()
	mix := binary.BigEndian.Uint16(userID[:2]) ^ binary.BigEndian.Uint16(entropy[:2])
	return fmt.Sprintf("%s-%04d", now.Format("20060102150405"), mix%10000)
}

func validateShipping(shipping ShippingInfo) error {
	if strings.TrimSpace(shipping.ReceiverName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "receiver name required")
	}
	if strings.TrimSpace(shipping.ReceiverPhone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "receiver phone required")
	}
	if strings.TrimSpace(shipping.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address required")
	}
	if strings.TrimSpace(shipping.ZipCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "zip code required")
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
