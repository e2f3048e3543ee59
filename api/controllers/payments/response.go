package payments

import (
	"time"

	"github.com/google/uuid"

	ordercontrollers "github.com/modomarket/modomarket-backend/api/controllers/orders"
	paymentsvc "github.com/modomarket/modomarket-backend/internal/payments"
	"github.com/modomarket/modomarket-backend/pkg/db/models"
)

type PaymentResponse struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"order_id"`
	PaymentKey     string    `json:"payment_key"`
	GatewayOrderID string    `json:"gateway_order_id"`
	Amount         int       `json:"amount"`
	Status         string    `json:"status"`
	TransactionID  *string   `json:"transaction_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ConfirmResponse struct {
	Order   ordercontrollers.OrderResponse `json:"order"`
	Payment PaymentResponse                `json:"payment"`
}

func newPayment(payment *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             payment.ID,
		OrderID:        payment.OrderID,
		PaymentKey:     payment.PaymentKey,
		GatewayOrderID: payment.GatewayOrderID,
		Amount:         payment.Amount,
		Status:         string(payment.Status),
		TransactionID:  payment.TransactionID,
		CreatedAt:      payment.CreatedAt,
	}
}

func newConfirmResult(result *paymentsvc.ConfirmResult) ConfirmResponse {
	return ConfirmResponse{
		Order:   ordercontrollers.NewOrder(result.Order),
		Payment: newPayment(result.Payment),
	}
}
