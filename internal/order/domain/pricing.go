package domain

import "math"

// Checkout pricing rules.
const (
	// FreeShippingThreshold is the discounted subtotal at which shipping
	// becomes free.
	FreeShippingThreshold = 50.00
	// ShippingFee applies below the threshold.
	ShippingFee = 5.99
	// TaxRate applies to the discounted subtotal.
	TaxRate = 0.08
	// DeliveryLeadTimeHours is added to the creation time for the delivery
	// estimate.
	DeliveryLeadTimeHours = 72
)

// Totals is the monetary breakdown of an order.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// CalculateTotals derives the order breakdown from its lines. Subtotal sums
// discounted line totals; Discount reports how much the line discounts saved
// against undiscounted prices. Shipping recomputes against the discounted
// subtotal, so crossing the threshold mid-cart changes the fee.
func CalculateTotals(items []OrderItem) Totals {
	var subtotal, gross float64
	for _, item := range items {
		subtotal += item.LineTotal()
		gross += item.Price * float64(item.Quantity)
	}

	shipping := ShippingFee
	if subtotal >= FreeShippingThreshold {
		shipping = 0
	}
	tax := round2(subtotal * TaxRate)
	subtotal = round2(subtotal)
	discount := round2(gross - subtotal)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    round2(subtotal + shipping + tax),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
