package refunds

import (
	"time"

	"github.com/google/uuid"

	"github.com/modomarket/modomarket-backend/pkg/db/models"
)

type RefundItemResponse struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice int       `json:"unit_price"`
	Status    string    `json:"status"`
}

type RefundResponse struct {
	ID             uuid.UUID           `json:"id"`
	OrderItemID    uuid.UUID           `json:"order_item_id"`
	RefundType     string              `json:"refund_type"`
	Reason         string              `json:"reason"`
	ReasonDetail   *string             `json:"reason_detail,omitempty"`
	RefundAmount   *int                `json:"refund_amount,omitempty"`
	Status         string              `json:"status"`
	SellerResponse *string             `json:"seller_response,omitempty"`
	OrderItem      *RefundItemResponse `json:"order_item,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func newRefund(refund *models.Refund) RefundResponse {
	resp := RefundResponse{
		ID:             refund.ID,
		OrderItemID:    refund.OrderItemID,
		RefundType:     string(refund.RefundType),
		Reason:         refund.Reason,
		ReasonDetail:   refund.ReasonDetail,
		RefundAmount:   refund.RefundAmount,
		Status:         string(refund.Status),
		SellerResponse: refund.SellerResponse,
		CreatedAt:      refund.CreatedAt,
		UpdatedAt:      refund.UpdatedAt,
	}
	if refund.OrderItem != nil {
		resp.OrderItem = &RefundItemResponse{
			ID:        refund.OrderItem.ID,
			OrderID:   refund.OrderItem.OrderID,
			ProductID: refund.OrderItem.ProductID,
			SellerID:  refund.OrderItem.SellerID,
			Quantity:  refund.OrderItem.Quantity,
			UnitPrice: refund.OrderItem.UnitPrice,
			Status:    string(refund.OrderItem.Status),
		}
	}
	return resp
}

func newRefundList(list []models.Refund) []RefundResponse {
	out := make([]RefundResponse, 0, len(list))
	for i := range list {
		out = append(out, newRefund(&list[i]))
	}
	return out
}
