package bookings

import (
	"fmt"
	"math"
)

// PricingInput carries everything a booking's price is derived from.
type PricingInput struct {
	PricePerNight float64
	Nights        int
	Rooms         int
	Taxes         float64
	Fees          float64
	Discount      float64
	Currency      string
}

// CalculatePricing derives totals. totalPrice = pricePerNight x nights x rooms
// + taxes + fees, finalPrice = totalPrice - discount.
func CalculatePricing(in PricingInput) (Pricing, error) {
	if in.Nights < 1 {
		return Pricing{}, fmt.Errorf("nights must be at least 1, got %d", in.Nights)
	}
	if in.Rooms < 1 {
		return Pricing{}, fmt.Errorf("rooms must be at least 1, got %d", in.Rooms)
	}
	if in.PricePerNight < 0 || in.Taxes < 0 || in.Fees < 0 || in.Discount < 0 {
		return Pricing{}, fmt.Errorf("price components must not be negative")
	}

	total := roundMoney(in.PricePerNight*float64(in.Nights)*float64(in.Rooms) + in.Taxes + in.Fees)
	if in.Discount > total {
		return Pricing{}, fmt.Errorf("discount %.2f exceeds total price %.2f", in.Discount, total)
	}

	return Pricing{
		PricePerNight: roundMoney(in.PricePerNight),
		Taxes:         roundMoney(in.Taxes),
		Fees:          roundMoney(in.Fees),
		Discount:      roundMoney(in.Discount),
		TotalPrice:    total,
		FinalPrice:    roundMoney(total - in.Discount),
		Currency:      in.Currency,
	}, nil
}

// TaxFor applies rate to the room subtotal of a stay.
func TaxFor(rate, pricePerNight float64, nights, rooms int) float64 {
	if rate <= 0 {
		return 0
	}
	return roundMoney(pricePerNight * float64(nights) * float64(rooms) * rate)
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
