package refunds

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modomarket/modomarket-backend/internal/inventory"
	"github.com/modomarket/modomarket-backend/internal/orders"
	"github.com/modomarket/modomarket-backend/pkg/db"
	"github.com/modomarket/modomarket-backend/pkg/db/models"
	"github.com/modomarket/modomarket-backend/pkg/enums"
	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
	"github.com/modomarket/modomarket-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the refund/exchange state machine.
//
//	REQUESTED -> APPROVED | REJECTED | CANCELLED
//	APPROVED  -> COMPLETED
//
// Buyers open and cancel cases; sellers approve, reject, and complete them.
type Service interface {
	CreateRefund(ctx context.Context, input CreateRefundInput) (*models.Refund, error)
	CancelRefund(ctx context.Context, userID, refundID uuid.UUID) error
	ApproveRefund(ctx context.Context, input SellerActionInput) error
	RejectRefund(ctx context.Context, input SellerActionInput) error
	CompleteRefund(ctx context.Context, input SellerActionInput) error
	ListRefunds(ctx context.Context, userID uuid.UUID, role ListRole) ([]models.Refund, error)
}

type service struct {
	repo      Repository
	orderRepo orders.Repository
	ledger    inventory.Ledger
	tx        txRunner
	metrics   *metrics.WorkflowMetrics
}

// NewService builds a refunds service with the required dependencies.
func NewService(
	repo Repository,
	orderRepo orders.Repository,
	ledger inventory.Ledger,
	tx txRunner,
	workflowMetrics *metrics.WorkflowMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("refunds repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      repo,
		orderRepo: orderRepo,
		ledger:    ledger,
		tx:        tx,
		metrics:   workflowMetrics,
	}, nil
}

// CreateRefund opens a case against one order item. At most one case per item
// may be active; the check runs inside the transaction and the partial unique
// index backs it against races.
func (s *service) CreateRefund(ctx context.Context, input CreateRefundInput) (*models.Refund, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order item id required")
	}
	if !input.RefundType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund type must be refund or exchange")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}

	var result *models.Refund
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindOrderItemByID(ctx, input.OrderItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}

		order, err := s.orderRepo.WithTx(tx).FindOrderByID(ctx, item.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.UserID != input.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order item does not belong to user")
		}
		if item.Status != enums.OrderItemStatusConfirmed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order item is not refundable in current state")
		}

		if _, err := repo.FindActiveByOrderItem(ctx, item.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "an active case already exists for this item")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active cases")
		}

		var amount *int
		if input.RefundType == enums.RefundTypeRefund {
			total := item.LineTotal()
			amount = &total
		}

		// Item status frozen at request time so a revert has something to
		// restore.
		itemStatus := string(item.Status)

		refund := &models.Refund{
			ID:             uuid.New(),
			OrderItemID:    item.ID,
			UserID:         input.UserID,
			RefundType:     input.RefundType,
			Reason:         input.Reason,
			ReasonDetail:   input.ReasonDetail,
			RefundAmount:   amount,
			Status:         enums.RefundStatusRequested,
			PreviousStatus: &itemStatus,
		}
		created, err := repo.CreateRefund(ctx, refund)
		if err != nil {
			if db.IsUniqueViolation(err, "idx_refunds_active_per_item") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "an active case already exists for this item")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund")
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncRefundTransition(string(enums.RefundStatusRequested))
	return result, nil
}

// CancelRefund lets the requesting buyer withdraw a case that is still
// awaiting a seller decision.
func (s *service) CancelRefund(ctx context.Context, userID, refundID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if refundID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "refund id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		refund, err := repo.FindRefundByID(ctx, refundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "refund not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund")
		}
		if refund.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "refund does not belong to user")
		}

		return s.transition(ctx, repo, refund.ID, enums.RefundStatusRequested, enums.RefundStatusCancelled, nil)
	})
	if err != nil {
		return err
	}
	s.metrics.IncRefundTransition(string(enums.RefundStatusCancelled))
	return nil
}

// ApproveRefund is the seller accepting a requested case.
func (s *service) ApproveRefund(ctx context.Context, input SellerActionInput) error {
	if err := s.sellerTransition(ctx, input, enums.RefundStatusRequested, enums.RefundStatusApproved, nil); err != nil {
		return err
	}
	s.metrics.IncRefundTransition(string(enums.RefundStatusApproved))
	return nil
}

// RejectRefund is the seller declining a requested case.
func (s *service) RejectRefund(ctx context.Context, input SellerActionInput) error {
	if err := s.sellerTransition(ctx, input, enums.RefundStatusRequested, enums.RefundStatusRejected, nil); err != nil {
		return err
	}
	s.metrics.IncRefundTransition(string(enums.RefundStatusRejected))
	return nil
}

// CompleteRefund finishes an approved case: the order item flips to refunded
// and, for refunds (not exchanges), the stock returns to the shelf.
func (s *service) CompleteRefund(ctx context.Context, input SellerActionInput) error {
	err := s.sellerTransition(ctx, input, enums.RefundStatusApproved, enums.RefundStatusCompleted,
		func(ctx context.Context, tx *gorm.DB, repo Repository, refund *models.Refund) error {
			if refund.OrderItem == nil {
				return pkgerrors.New(pkgerrors.CodeDependency, "refund order item missing")
			}
			if err := repo.UpdateOrderItemStatus(ctx, refund.OrderItemID, enums.OrderItemStatusRefunded); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark item refunded")
			}
			if refund.RefundType == enums.RefundTypeRefund {
				if err := s.ledger.Release(ctx, tx, refund.OrderItem.ProductID, refund.OrderItem.Quantity); err != nil {
					return err
				}
			}
			return nil
		})
	if err != nil {
		return err
	}
	s.metrics.IncRefundTransition(string(enums.RefundStatusCompleted))
	return nil
}

func (s *service) ListRefunds(ctx context.Context, userID uuid.UUID, role ListRole) ([]models.Refund, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	switch role {
	case ListRoleBuyer:
		refunds, err := s.repo.ListByBuyer(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer refunds")
		}
		return refunds, nil
	case ListRoleSeller:
		refunds, err := s.repo.ListBySeller(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller refunds")
		}
		return refunds, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be buyer or seller")
	}
}

type completionHook func(ctx context.Context, tx *gorm.DB, repo Repository, refund *models.Refund) error

func (s *service) sellerTransition(ctx context.Context, input SellerActionInput, from, to enums.RefundStatus, hook completionHook) error {
	if input.SellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.RefundID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "refund id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		refund, err := repo.FindRefundByID(ctx, input.RefundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "refund not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund")
		}
		if refund.OrderItem == nil || refund.OrderItem.SellerID != input.SellerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "refund does not belong to seller")
		}

		if err := s.transition(ctx, repo, refund.ID, from, to, input.SellerResponse); err != nil {
			return err
		}
		if hook != nil {
			return hook(ctx, tx, repo, refund)
		}
		return nil
	})
}

func (s *service) transition(ctx context.Context, repo Repository, id uuid.UUID, from, to enums.RefundStatus, sellerResponse *string) error {
	applied, err := repo.TransitionStatus(ctx, id, from, to, sellerResponse)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update refund status")
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("refund cannot move to %s from its current state", to))
	}
	return nil
}
