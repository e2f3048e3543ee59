package payments

import (
	"github.com/google/uuid"

	ordercontrollers "github.com/modomarket/modomarket-backend/api/controllers/orders"
	paymentsvc "github.com/modomarket/modomarket-backend/internal/payments"
)

type ConfirmRequest struct {
	PaymentKey     string                              `json:"payment_key" validate:"required"`
	GatewayOrderID string                              `json:"order_id" validate:"required"`
	Amount         int                                 `json:"amount" validate:"required,gt=0"`
	Order          ordercontrollers.CreateOrderRequest `json:"order" validate:"required"`
}

func (req ConfirmRequest) ToInput(userID uuid.UUID) paymentsvc.ConfirmInput {
	return paymentsvc.ConfirmInput{
		PaymentKey:     req.PaymentKey,
		GatewayOrderID: req.GatewayOrderID,
		Amount:         req.Amount,
		Order:          req.Order.ToInput(userID),
	}
}
