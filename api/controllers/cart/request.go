package cart

import (
	"github.com/google/uuid"

	cartsvc "github.com/modomarket/modomarket-backend/internal/cart"
)

type AddLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

func toAddLineInput(userID uuid.UUID, payload AddLineRequest) cartsvc.AddLineInput {
	return cartsvc.AddLineInput{
		UserID:    userID,
		ProductID: payload.ProductID,
		Quantity:  payload.Quantity,
	}
}
