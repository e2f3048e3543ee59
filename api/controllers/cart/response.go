package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/modomarket/modomarket-backend/pkg/db/models"
)

type CartLineProduct struct {
	ID             uuid.UUID `json:"id"`
	Price          int       `json:"price"`
	DiscountPrice  *int      `json:"discount_price,omitempty"`
	EffectivePrice int       `json:"effective_price"`
	Stock          int       `json:"stock"`
	SaleStatus     string    `json:"sale_status"`
	Color          *string   `json:"color,omitempty"`
	Size           *string   `json:"size,omitempty"`
}

type CartLineResponse struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   *CartLineProduct `json:"product,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func newCartLine(line *models.CartLine) CartLineResponse {
	resp := CartLineResponse{
		ID:        line.ID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		CreatedAt: line.CreatedAt,
		UpdatedAt: line.UpdatedAt,
	}
	if line.Product != nil {
		resp.Product = &CartLineProduct{
			ID:             line.Product.ID,
			Price:          line.Product.Price,
			DiscountPrice:  line.Product.DiscountPrice,
			EffectivePrice: line.Product.EffectiveUnitPrice(),
			Stock:          line.Product.Stock,
			SaleStatus:     string(line.Product.SaleStatus),
			Color:          line.Product.Color,
			Size:           line.Product.Size,
		}
	}
	return resp
}

func newCartLineList(lines []models.CartLine) []CartLineResponse {
	out := make([]CartLineResponse, 0, len(lines))
	for i := range lines {
		out = append(out, newCartLine(&lines[i]))
	}
	return out
}
