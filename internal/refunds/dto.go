package refunds

import (
	"github.com/google/uuid"

	"github.com/modomarket/modomarket-backend/pkg/enums"
)

// CreateRefundInput is the buyer's request to open a refund or exchange case.
type CreateRefundInput struct {
	UserID       uuid.UUID
	OrderItemID  uuid.UUID
	RefundType   enums.RefundType
	Reason       string
	ReasonDetail *string
}

// SellerActionInput carries a seller decision on an open case.
type SellerActionInput struct {
	SellerID       uuid.UUID
	RefundID       uuid.UUID
	SellerResponse *string
}

// ListRole selects whose refunds a listing returns.
type ListRole string

const (
	ListRoleBuyer  ListRole = "buyer"
	ListRoleSeller ListRole = "seller"
)
