package models

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusPending    OrderStatus = "pending"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var validTransitions = map[OrderStatus][]OrderStatus{
	StatusProcessing: {StatusShipped, StatusPending, StatusCancelled},
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CancellableStatuses are the states a plain cancel request may leave.
var CancellableStatuses = []OrderStatus{StatusProcessing, StatusPending}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if _, ok := validTransitions[st]; !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

func (s OrderStatus) IsTerminal() bool {
	next, ok := validTransitions[s]
	return ok && len(next) == 0
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, n := range validTransitions[s] {
		if n == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsCancellable() bool {
	for _, c := range CancellableStatuses {
		if s == c {
			return true
		}
	}
	return false
}

type Order struct {
	ID              string          `bson:"_id" json:"id"`
	UserID          string          `bson:"userId" json:"userId"`
	CreatedAt       time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updatedAt" json:"updatedAt"`
	Status          OrderStatus     `bson:"status" json:"status"`
	Items           []OrderLine     `bson:"items" json:"items"`
	Subtotal        float64         `bson:"subtotal" json:"subtotal"`
	ShippingCost    float64         `bson:"shippingCost" json:"shippingCost"`
	Tax             float64         `bson:"tax" json:"tax"`
	Total           float64         `bson:"total" json:"total"`
	ShippingAddress ShippingAddress `bson:"shippingAddress" json:"shippingAddress"`
	Payment         PaymentSummary  `bson:"payment" json:"payment"`
}

// OrderLine is a frozen copy of a cart line taken at confirmation time.
type OrderLine struct {
	ProductID              string  `bson:"productId" json:"productId"`
	Name                   string  `bson:"name" json:"name"`
	UnitPrice              float64 `bson:"unitPrice" json:"unitPrice"`
	Quantity               int     `bson:"quantity" json:"quantity"`
	ImageRef               string  `bson:"imageRef,omitempty" json:"imageRef,omitempty"`
	IsPrescriptionRequired bool    `bson:"isPrescriptionRequired" json:"isPrescriptionRequired"`
}

func SnapshotLines(lines []CartLine) []OrderLine {
	out := make([]OrderLine, len(lines))
	for i, l := range lines {
		out[i] = OrderLine{
			ProductID:              l.ProductID,
			Name:                   l.Name,
			UnitPrice:              l.UnitPrice,
			Quantity:               l.Quantity,
			ImageRef:               l.ImageRef,
			IsPrescriptionRequired: l.IsPrescriptionRequired,
		}
	}
	return out
}

type Address struct {
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipCode" json:"zipCode"`
}

type ShippingAddress struct {
	FullName string `bson:"fullName" json:"fullName"`
	Address  `bson:",inline"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email    string `bson:"email" json:"email"`
}

// Clone returns a deep copy so callers can never mutate a stored order through a shared slice.
func (o Order) Clone() Order {
	c := o
	c.Items = make([]OrderLine, len(o.Items))
	copy(c.Items, o.Items)
	return c
}
