package refunds

import (
	"github.com/google/uuid"

	refundsvc "github.com/modomarket/modomarket-backend/internal/refunds"
	"github.com/modomarket/modomarket-backend/pkg/enums"
)

type CreateRefundRequest struct {
	OrderItemID  uuid.UUID `json:"order_item_id" validate:"required"`
	RefundType   string    `json:"refund_type" validate:"required,oneof=refund exchange"`
	Reason       string    `json:"reason" validate:"required"`
	ReasonDetail *string   `json:"reason_detail,omitempty"`
}

type SellerActionRequest struct {
	SellerResponse *string `json:"seller_response,omitempty"`
}

func (req CreateRefundRequest) ToInput(userID uuid.UUID) refundsvc.CreateRefundInput {
	return refundsvc.CreateRefundInput{
		UserID:       userID,
		OrderItemID:  req.OrderItemID,
		RefundType:   enums.RefundType(req.RefundType),
		Reason:       req.Reason,
		ReasonDetail: req.ReasonDetail,
	}
}
