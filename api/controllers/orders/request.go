package orders

import (
	"github.com/google/uuid"

	ordersvc "github.com/modomarket/modomarket-backend/internal/orders"
)

type ShippingRequest struct {
	ReceiverName    string  `json:"receiver_name" validate:"required"`
	ReceiverPhone   string  `json:"receiver_phone" validate:"required"`
	Address         string  `json:"address" validate:"required"`
	AddressDetail   *string `json:"address_detail,omitempty"`
	ZipCode         string  `json:"zip_code" validate:"required"`
	DeliveryMessage *string `json:"delivery_message,omitempty"`
}

type CreateOrderRequest struct {
	CartLineIDs []uuid.UUID     `json:"cart_line_ids" validate:"required,min=1,dive,required"`
	Shipping    ShippingRequest `json:"shipping" validate:"required"`
}

func (req CreateOrderRequest) ToInput(userID uuid.UUID) ordersvc.CreateOrderInput {
	return ordersvc.CreateOrderInput{
		UserID:      userID,
		CartLineIDs: req.CartLineIDs,
		Shipping: ordersvc.ShippingInfo{
			ReceiverName:    req.Shipping.ReceiverName,
			ReceiverPhone:   req.Shipping.ReceiverPhone,
			Address:         req.Shipping.Address,
			AddressDetail:   req.Shipping.AddressDetail,
			ZipCode:         req.Shipping.ZipCode,
			DeliveryMessage: req.Shipping.DeliveryMessage,
		},
	}
}
