package models

import (
	"strings"
)

type PaymentMethod string

const (
	PaymentCard       PaymentMethod = "card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "netbanking"
)

// PaymentDetails is a closed union: CardDetails, UPIDetails or NetBankingDetails.
type PaymentDetails interface {
	Method() PaymentMethod
	// Summary is the only projection of the details that may be persisted.
	Summary() PaymentSummary
	isPaymentDetails()
}

type CardDetails struct {
	Number string
	Holder string
	Expiry string
	CVV    string
}

type UPIDetails struct {
	Handle string
}

type NetBankingDetails struct {
	Bank string
}

func (CardDetails) Method() PaymentMethod       { return PaymentCard }
func (UPIDetails) Method() PaymentMethod        { return PaymentUPI }
func (NetBankingDetails) Method() PaymentMethod { return PaymentNetBanking }

func (CardDetails) isPaymentDetails()       {}
func (UPIDetails) isPaymentDetails()        {}
func (NetBankingDetails) isPaymentDetails() {}

func (c CardDetails) Summary() PaymentSummary {
	return PaymentSummary{
		Type:        PaymentCard,
		DisplayName: "Credit Card",
		Last4:       lastN(Digits(c.Number), 4),
		Holder:      strings.TrimSpace(c.Holder),
	}
}

func (u UPIDetails) Summary() PaymentSummary {
	handle := strings.TrimSpace(u.Handle)
	return PaymentSummary{
		Type:        PaymentUPI,
		DisplayName: "UPI",
		Last4:       lastN(handle, 4),
		Holder:      handle,
	}
}

func (n NetBankingDetails) Summary() PaymentSummary {
	return PaymentSummary{
		Type:        PaymentNetBanking,
		DisplayName: "Net Banking",
		Last4:       "N/A",
		Holder:      strings.TrimSpace(n.Bank),
	}
}

type PaymentSummary struct {
	Type        PaymentMethod `bson:"type" json:"type"`
	DisplayName string        `bson:"displayName" json:"displayName"`
	Last4       string        `bson:"last4" json:"last4"`
	Holder      string        `bson:"holder,omitempty" json:"holder,omitempty"`
}

// Digits keeps only ASCII digits 0-9.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func lastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
