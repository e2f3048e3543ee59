package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modomarket/modomarket-backend/pkg/config"
	"github.com/modomarket/modomarket-backend/pkg/db/models"
)

func testResolver() *Resolver {
	return NewResolver(config.PricingConfig{
		FreeShippingThreshold: 50000,
		DeliveryFlatFee:       3000,
	})
}

func intPtr(v int) *int { return &v }

func TestEffectiveUnitPrice(t *testing.T) {
	t.Parallel()

	r := testResolver()

	assert.Equal(t, 20000, r.EffectiveUnitPrice(models.Product{Price: 20000}))
	assert.Equal(t, 15000, r.EffectiveUnitPrice(models.Product{Price: 20000, DiscountPrice: intPtr(15000)}))
}

func TestDeliveryFee(t *testing.T) {
	t.Parallel()

	r := testResolver()

	tests := []struct {
		name       string
		goodsTotal int
		want       int
	}{
		{"below threshold", 49999, 3000},
		{"at threshold", 50000, 0},
		{"above threshold", 80000, 0},
		{"empty order", 0, 3000},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, r.DeliveryFee(tc.goodsTotal))
		})
	}
}

func TestQuoteOrderDiscountedTwoUnits(t *testing.T) {
	t.Parallel()

	r := testResolver()

	quote := r.QuoteOrder([]Line{
		{Product: models.Product{Price: 10000, DiscountPrice: intPtr(8000)}, Qty: 2},
	})

	require.Equal(t, 16000, quote.TotalPrice)
	require.Equal(t, 3000, quote.DeliveryFee)
	require.Equal(t, 19000, quote.FinalPrice)
}

func TestQuoteOrderUsesEffectiveTotalForThreshold(t *testing.T) {
	t.Parallel()

	r := testResolver()

	// List total 60000 clears the threshold, effective total 45000 does not.
	quote := r.QuoteOrder([]Line{
		{Product: models.Product{Price: 20000, DiscountPrice: intPtr(15000)}, Qty: 3},
	})

	require.Equal(t, 45000, quote.TotalPrice)
	require.Equal(t, 3000, quote.DeliveryFee)
	require.Equal(t, 48000, quote.FinalPrice)
}

func TestQuoteOrderMixedLines(t *testing.T) {
	t.Parallel()

	r := testResolver()

	quote := r.QuoteOrder([]Line{
		{Product: models.Product{Price: 30000}, Qty: 1},
		{Product: models.Product{Price: 25000, DiscountPrice: intPtr(22000)}, Qty: 1},
	})

	require.Equal(t, 52000, quote.TotalPrice)
	require.Equal(t, 0, quote.DeliveryFee)
	require.Equal(t, 52000, quote.FinalPrice)
}

func TestQuoteInvariantHolds(t *testing.T) {
	t.Parallel()

	r := testResolver()
	quote := r.QuoteOrder([]Line{
		{Product: models.Product{Price: 12000}, Qty: 3},
	})
	assert.Equal(t, quote.FinalPrice, quote.TotalPrice-quote.DiscountAmount+quote.DeliveryFee)
}
