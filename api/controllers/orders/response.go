package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/modomarket/modomarket-backend/pkg/db/models"
)

type OrderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	PostID    uuid.UUID `json:"post_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	Color     *string   `json:"color,omitempty"`
	Size      *string   `json:"size,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice int       `json:"unit_price"`
	LineTotal int       `json:"line_total"`
	Status    string    `json:"status"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	TotalPrice      int                 `json:"total_price"`
	DiscountAmount  int                 `json:"discount_amount"`
	DeliveryFee     int                 `json:"delivery_fee"`
	FinalPrice      int                 `json:"final_price"`
	Status          string              `json:"status"`
	ReceiverName    string              `json:"receiver_name"`
	ReceiverPhone   string              `json:"receiver_phone"`
	Address         string              `json:"address"`
	AddressDetail   *string             `json:"address_detail,omitempty"`
	ZipCode         string              `json:"zip_code"`
	DeliveryMessage *string             `json:"delivery_message,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

func NewOrder(order *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			PostID:    item.PostID,
			SellerID:  item.SellerID,
			Color:     item.Color,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
			Status:    string(item.Status),
		})
	}

	return OrderResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		TotalPrice:      order.TotalPrice,
		DiscountAmount:  order.DiscountAmount,
		DeliveryFee:     order.DeliveryFee,
		FinalPrice:      order.FinalPrice,
		Status:          string(order.Status),
		ReceiverName:    order.ReceiverName,
		ReceiverPhone:   order.ReceiverPhone,
		Address:         order.Address,
		AddressDetail:   order.AddressDetail,
		ZipCode:         order.ZipCode,
		DeliveryMessage: order.DeliveryMessage,
		Items:           items,
		CreatedAt:       order.CreatedAt,
	}
}

func newOrderList(list []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for i := range list {
		out = append(out, NewOrder(&list[i]))
	}
	return out
}
