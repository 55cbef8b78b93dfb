package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusPending, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusDelivered, false},
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},
		{StatusShipped, StatusProcessing, false},
		{StatusDelivered, StatusProcessing, false},
		{StatusCancelled, StatusProcessing, false},
		{StatusCancelled, StatusShipped, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
	assert.False(t, OrderStatus("bogus").IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, st)

	_, err = ParseOrderStatus("refunded")
	assert.Error(t, err)
}

func TestPaymentSummary_NeverCarriesSecrets(t *testing.T) {
	card := CardDetails{Number: "4111 1111 1111 1234", Holder: " Jane Roe ", Expiry: "12/29", CVV: "123"}
	s := card.Summary()

	assert.Equal(t, PaymentCard, s.Type)
	assert.Equal(t, "Credit Card", s.DisplayName)
	assert.Equal(t, "1234", s.Last4)
	assert.Equal(t, "Jane Roe", s.Holder)
	assert.NotContains(t, s.Last4+s.Holder+s.DisplayName, "4111")

	upi := UPIDetails{Handle: "jane@okbank"}.Summary()
	assert.Equal(t, "bank", upi.Last4)
	assert.Equal(t, "UPI", upi.DisplayName)

	nb := NetBankingDetails{}.Summary()
	assert.Equal(t, "N/A", nb.Last4)
	assert.Equal(t, PaymentNetBanking, nb.Type)
}

func TestProduct_PriceFor(t *testing.T) {
	p := Product{
		Price: 10,
		Pricing: []PriceTier{
			{Min: 1, Max: 4, Price: 10},
			{Min: 5, Max: 9, Price: 9},
			{Min: 10, Max: 1000, Price: 8},
		},
	}

	assert.Equal(t, 10.0, p.PriceFor(1))
	assert.Equal(t, 9.0, p.PriceFor(5))
	assert.Equal(t, 8.0, p.PriceFor(12))
	assert.Equal(t, 10.0, p.PriceFor(2000))
	assert.Equal(t, 4.5, Product{Price: 4.5}.PriceFor(3))
}

func TestItemCount(t *testing.T) {
	lines := []CartLine{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 3}}
	assert.Equal(t, 5, ItemCount(lines))
	assert.Equal(t, 0, ItemCount(nil))
}

func TestDigits_OnlyASCII(t *testing.T) {
	assert.Equal(t, "411112", Digits("4111-12"))
	assert.Equal(t, "45", Digits("١٢٣45"))
	assert.Equal(t, "", Digits("١٢٣٤٥"))

	s := CardDetails{Number: "١٢٣٤٥٦٧٨"}.Summary()
	assert.Equal(t, "", s.Last4)
}
