package services

import (
	"context"
	"errors"

	"edpharma/models"
)

// Notifier is told about every placed order and every status change after it is persisted.
type Notifier interface {
	OrderCreated(ctx context.Context, order models.Order) error
	OrderStatusChanged(ctx context.Context, order models.Order, from models.OrderStatus) error
}

type NopNotifier struct{}

func (NopNotifier) OrderCreated(context.Context, models.Order) error { return nil }

func (NopNotifier) OrderStatusChanged(context.Context, models.Order, models.OrderStatus) error {
	return nil
}

// MultiNotifier delivers to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) OrderCreated(ctx context.Context, order models.Order) error {
	var errs []error
	for _, n := range m {
		if err := n.OrderCreated(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiNotifier) OrderStatusChanged(ctx context.Context, order models.Order, from models.OrderStatus) error {
	var errs []error
	for _, n := range m {
		if err := n.OrderStatusChanged(ctx, order, from); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
