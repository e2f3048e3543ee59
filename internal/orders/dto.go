package orders

import "github.com/google/uuid"

// ShippingInfo is the destination snapshot frozen onto the order.
type ShippingInfo struct {
	ReceiverName    string
	ReceiverPhone   string
	Address         string
	AddressDetail   *string
	ZipCode         string
	DeliveryMessage *string
}

// CreateOrderInput carries everything needed to assemble an order from cart
// lines.
type CreateOrderInput struct {
	UserID      uuid.UUID
	CartLineIDs []uuid.UUID
	Shipping    ShippingInfo
}
