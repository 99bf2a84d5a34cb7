package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePricing(t *testing.T) {
	pricing, err := CalculatePricing(PricingInput{
		PricePerNight: 100,
		Nights:        3,
		Rooms:         1,
		Taxes:         10,
		Fees:          5,
		Currency:      "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, 315.0, pricing.TotalPrice)
	assert.Equal(t, 315.0, pricing.FinalPrice)
	assert.Equal(t, "USD", pricing.Currency)
}

func TestCalculatePricingMultipleRoomsAndDiscount(t *testing.T) {
	pricing, err := CalculatePricing(PricingInput{
		PricePerNight: 89.99,
		Nights:        2,
		Rooms:         2,
		Taxes:         TaxFor(0.12, 89.99, 2, 2),
		Fees:          7.5,
		Discount:      20,
	})

	require.NoError(t, err)
	assert.Equal(t, 43.2, pricing.Taxes)
	assert.Equal(t, 410.66, pricing.TotalPrice)
	assert.Equal(t, 390.66, pricing.FinalPrice)
}

func TestCalculatePricingRejects(t *testing.T) {
	tests := []struct {
		name string
		in   PricingInput
	}{
		{"zero nights", PricingInput{PricePerNight: 100, Nights: 0, Rooms: 1}},
		{"zero rooms", PricingInput{PricePerNight: 100, Nights: 1, Rooms: 0}},
		{"negative fee", PricingInput{PricePerNight: 100, Nights: 1, Rooms: 1, Fees: -1}},
		{"discount above total", PricingInput{PricePerNight: 100, Nights: 1, Rooms: 1, Discount: 101}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculatePricing(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestTaxForWithoutRate(t *testing.T) {
	assert.Zero(t, TaxFor(0, 100, 3, 1))
}
