// Package events defines the order events published to other systems and views.
package events

import (
	"time"

	"edpharma/models"
)

const (
	SubjectOrderCreated       = "order.created"
	SubjectOrderStatusChanged = "order.status_changed"
)

type OrderCreatedEvent struct {
	OrderID   string             `json:"order_id"`
	UserID    string             `json:"user_id"`
	Total     float64            `json:"total"`
	Status    models.OrderStatus `json:"status"`
	CreatedAt string             `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderID   string             `json:"order_id"`
	UserID    string             `json:"user_id"`
	From      models.OrderStatus `json:"from"`
	To        models.OrderStatus `json:"to"`
	ChangedAt string             `json:"changed_at"`
}

func NewOrderCreated(o models.Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewOrderStatusChanged(o models.Order, from models.OrderStatus) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		From:      from,
		To:        o.Status,
		ChangedAt: o.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
