package pricing

import (
	"github.com/modomarket/modomarket-backend/pkg/config"
	"github.com/modomarket/modomarket-backend/pkg/db/models"
)

// Quote is the money breakdown for an order before persistence. The invariant
// FinalPrice = TotalPrice - DiscountAmount + DeliveryFee always holds.
// Variant discounts are already baked into the effective unit price, so
// DiscountAmount stays zero until order-level promotions exist.
type Quote struct {
	TotalPrice     int
	DiscountAmount int
	DeliveryFee    int
	FinalPrice     int
}

// Resolver computes effective prices and delivery fees from configured
// storefront rules.
type Resolver struct {
	cfg config.PricingConfig
}

// NewResolver builds a resolver bound to the storefront pricing rules.
func NewResolver(cfg config.PricingConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// EffectiveUnitPrice returns the price a buyer pays for one unit. A set
// discount price overrides the list price entirely.
func (r *Resolver) EffectiveUnitPrice(product models.Product) int {
	return product.EffectiveUnitPrice()
}

// DeliveryFee applies the flat fee below the free-shipping threshold. The
// threshold compares against the goods total at effective prices.
func (r *Resolver) DeliveryFee(goodsTotal int) int {
	if goodsTotal >= r.cfg.FreeShippingThreshold {
		return 0
	}
	return r.cfg.DeliveryFlatFee
}

// Line is one priced order line feeding into a quote.
type Line struct {
	Product models.Product
	Qty     int
}

// QuoteOrder prices a set of lines at effective unit prices.
func (r *Resolver) QuoteOrder(lines []Line) Quote {
	quote := Quote{}
	for _, line := range lines {
		quote.TotalPrice += r.EffectiveUnitPrice(line.Product) * line.Qty
	}
	quote.DeliveryFee = r.DeliveryFee(quote.TotalPrice)
	quote.FinalPrice = quote.TotalPrice - quote.DiscountAmount + quote.DeliveryFee
	return quote
}
