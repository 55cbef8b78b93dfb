package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edpharma/models"
)

func TestRender(t *testing.T) {
	o := models.Order{
		ID:           "ORD-1",
		UserID:       "u1",
		CreatedAt:    time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
		Status:       models.StatusProcessing,
		Items:        []models.OrderLine{{ProductID: "p1", Name: "Paracetamol 500mg", UnitPrice: 10, Quantity: 3}},
		Subtotal:     30,
		Tax:          2.4,
		ShippingCost: 9.99,
		Total:        42.39,
		ShippingAddress: models.ShippingAddress{
			FullName: "José Núñez",
			Address:  models.Address{Address: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701"},
			Email:    "jose@x.com",
		},
		Payment: models.PaymentSummary{Type: models.PaymentCard, DisplayName: "Credit Card", Last4: "1111"},
	}

	pdf, err := Render(o)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Greater(t, len(pdf), 1000)
}

func TestQRPayload(t *testing.T) {
	assert.Equal(t, "edpharma:order:ORD-9:64.80", QRPayload(models.Order{ID: "ORD-9", Total: 64.8}))
}
