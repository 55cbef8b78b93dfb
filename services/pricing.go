package services

import (
	"github.com/shopspring/decimal"

	"edpharma/models"
)

// Pricing computes order totals in exact decimal cents.
type Pricing struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	Tax          float64 `json:"tax"`
	ShippingCost float64 `json:"shippingCost"`
	Total        float64 `json:"total"`
}

func NewPricing(taxRate, freeShippingThreshold, flatShippingFee float64) Pricing {
	return Pricing{
		TaxRate:               decimal.NewFromFloat(taxRate),
		FreeShippingThreshold: decimal.NewFromFloat(freeShippingThreshold),
		FlatShippingFee:       decimal.NewFromFloat(flatShippingFee),
	}
}

func DefaultPricing() Pricing {
	return NewPricing(0.08, 50, 9.99)
}

func (p Pricing) subtotal(lines []models.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.Round(2)
}

func (p Pricing) Subtotal(lines []models.CartLine) float64 {
	return p.subtotal(lines).InexactFloat64()
}

// Quote prices lines: tax is rounded half-up to cents, shipping is free strictly above the threshold.
func (p Pricing) Quote(lines []models.CartLine) Totals {
	subtotal := p.subtotal(lines)
	tax := subtotal.Mul(p.TaxRate).Round(2)

	shipping := p.FlatShippingFee.Round(2)
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal:     subtotal.InexactFloat64(),
		Tax:          tax.InexactFloat64(),
		ShippingCost: shipping.InexactFloat64(),
		Total:        subtotal.Add(tax).Add(shipping).InexactFloat64(),
	}
}

func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
