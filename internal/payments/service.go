package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/modomarket/modomarket-backend/internal/orders"
	"github.com/modomarket/modomarket-backend/pkg/db/models"
	"github.com/modomarket/modomarket-backend/pkg/enums"
	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
	"github.com/modomarket/modomarket-backend/pkg/logger"
	"github.com/modomarket/modomarket-backend/pkg/metrics"
	"github.com/modomarket/modomarket-backend/pkg/tosspay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Assembler is the tx-scoped order assembly surface the reconciler composes.
type Assembler interface {
	Assemble(ctx context.Context, tx *gorm.DB, input orders.CreateOrderInput) (*models.Order, error)
}

// ConfirmInput pairs the gateway confirmation handle with the order payload
// to assemble once the capture succeeds.
type ConfirmInput struct {
	PaymentKey     string
	GatewayOrderID string
	Amount         int
	Order          orders.CreateOrderInput
}

// ConfirmResult carries the persisted aggregate and its payment record.
type ConfirmResult struct {
	Order   *models.Order
	Payment *models.Payment
}

// Service reconciles gateway captures with order persistence.
type Service interface {
	ConfirmPayment(ctx context.Context, input ConfirmInput) (*ConfirmResult, error)
	GetPaymentByOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Payment, error)
}

type service struct {
	repo      Repository
	orderRepo orders.Repository
	assembler Assembler
	gateway   tosspay.Gateway
	tx        txRunner
	metrics   *metrics.WorkflowMetrics
	logg      *logger.Logger
}

// NewService builds a payment reconciliation service.
func NewService(
	repo Repository,
	orderRepo orders.Repository,
	assembler Assembler,
	gateway tosspay.Gateway,
	tx txRunner,
	workflowMetrics *metrics.WorkflowMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if assembler == nil {
		return nil, fmt.Errorf("order assembler required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		orderRepo: orderRepo,
		assembler: assembler,
		gateway:   gateway,
		tx:        tx,
		metrics:   workflowMetrics,
		logg:      logg,
	}, nil
}

// ConfirmPayment captures the payment at the gateway first, then assembles
// the order in one transaction. The gateway-confirmed amount is compared to
// the computed final price inside that transaction; a mismatch rolls the
// order back and the captured payment is voided as compensation.
func (s *service) ConfirmPayment(ctx context.Context, input ConfirmInput) (*ConfirmResult, error) {
	if strings.TrimSpace(input.PaymentKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment key required")
	}
	if strings.TrimSpace(input.GatewayOrderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id required")
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	confirmation, err := s.gateway.ConfirmPayment(ctx, tosspay.ConfirmParams{
		PaymentKey:     input.PaymentKey,
		GatewayOrderID: input.GatewayOrderID,
		Amount:         input.Amount,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.persistOrder(ctx, input, confirmation)
	if orders.IsOrderNumberConflict(err) {
		result, err = s.persistOrder(ctx, input, confirmation)
	}
	if err != nil {
		// The gateway already captured the money; void it so the buyer is
		// not charged for an order that does not exist.
		if cancelErr := s.gateway.CancelPayment(ctx, input.PaymentKey, "order persistence failed"); cancelErr != nil {
			ctx := s.logg.WithFields(ctx, map[string]any{"gateway_order_id": input.GatewayOrderID})
			s.logg.Error(ctx, "payment captured but not voided, manual follow-up required", cancelErr)
			return nil, multierr.Append(err, cancelErr)
		}
		return nil, err
	}

	s.metrics.IncPaymentConfirmed()
	return result, nil
}

func (s *service) persistOrder(ctx context.Context, input ConfirmInput, confirmation *tosspay.Confirmation) (*ConfirmResult, error) {
	var result ConfirmResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.assembler.Assemble(ctx, tx, input.Order)
		if err != nil {
			return err
		}

		if confirmation.TotalAmount != order.FinalPrice {
			s.metrics.IncAmountMismatch()
			return pkgerrors.New(pkgerrors.CodeAmountMismatch, "confirmed amount does not match order total").
				WithDetails(map[string]any{
					"confirmed_amount": confirmation.TotalAmount,
					"final_price":      order.FinalPrice,
				})
		}

		var transactionID *string
		if confirmation.TransactionID != "" {
			txnID := confirmation.TransactionID
			transactionID = &txnID
		}
		payment := &models.Payment{
			ID:             uuid.New(),
			OrderID:        order.ID,
			PaymentKey:     input.PaymentKey,
			GatewayOrderID: input.GatewayOrderID,
			Amount:         confirmation.TotalAmount,
			Status:         enums.PaymentStatusDone,
			TransactionID:  transactionID,
		}
		if _, err := s.repo.WithTx(tx).CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment")
		}

		result.Order = order
		result.Payment = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) GetPaymentByOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Payment, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}

	payment, err := s.repo.FindPaymentByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return payment, nil
}
