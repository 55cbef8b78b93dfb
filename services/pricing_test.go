package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"edpharma/models"
)

func TestPricing_Quote(t *testing.T) {
	tests := []struct {
		name  string
		lines []models.CartLine
		want  Totals
	}{
		{
			name:  "flat shipping under threshold",
			lines: []models.CartLine{{UnitPrice: 10, Quantity: 2}},
			want:  Totals{Subtotal: 20, Tax: 1.6, ShippingCost: 9.99, Total: 31.59},
		},
		{
			name:  "three of p1",
			lines: []models.CartLine{{UnitPrice: 10, Quantity: 3}},
			want:  Totals{Subtotal: 30, Tax: 2.4, ShippingCost: 9.99, Total: 42.39},
		},
		{
			name:  "free shipping over threshold",
			lines: []models.CartLine{{UnitPrice: 20, Quantity: 3}},
			want:  Totals{Subtotal: 60, Tax: 4.8, ShippingCost: 0, Total: 64.8},
		},
		{
			name:  "exactly at threshold still pays shipping",
			lines: []models.CartLine{{UnitPrice: 25, Quantity: 2}},
			want:  Totals{Subtotal: 50, Tax: 4, ShippingCost: 9.99, Total: 63.99},
		},
		{
			name:  "tax rounds to cents",
			lines: []models.CartLine{{UnitPrice: 0.1, Quantity: 3}, {UnitPrice: 12.27, Quantity: 1}},
			want:  Totals{Subtotal: 12.57, Tax: 1.01, ShippingCost: 9.99, Total: 23.57},
		},
	}

	p := DefaultPricing()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Quote(tt.lines)
			assert.Equal(t, tt.want, got)
			assert.InDelta(t, got.Subtotal+got.Tax+got.ShippingCost, got.Total, 0.0001)
		})
	}
}

func TestPricing_Configured(t *testing.T) {
	p := NewPricing(0.1, 100, 5)
	got := p.Quote([]models.CartLine{{UnitPrice: 60, Quantity: 1}})
	assert.Equal(t, Totals{Subtotal: 60, Tax: 6, ShippingCost: 5, Total: 71}, got)
}
