package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/domain/model"
	"github.com/polkiloo/foodorder/internal/domain/repository"
	"github.com/polkiloo/foodorder/internal/notify"
	"github.com/polkiloo/foodorder/internal/pkg/phone"
)

// OrderUseCase serves order lookups and staff status changes.
type OrderUseCase struct {
	orders     repository.OrderRepository
	records    repository.NotificationRepository
	dispatcher Dispatcher
	messages   notify.Messages
	logger     *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	records repository.NotificationRepository,
	dispatcher Dispatcher,
	messages notify.Messages,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{orders: orders, records: records, dispatcher: dispatcher, messages: messages, logger: logger}
}

// GetOrder returns the order with its lines.
func (u *OrderUseCase) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return u.orders.GetOrder(ctx, id)
}

// History returns a customer's orders, newest first.
func (u *OrderUseCase) History(ctx context.Context, rawPhone string) ([]model.Order, error) {
	canonical, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, invalid("phone", "not a valid Algerian or Mauritanian mobile number")
	}
	return u.orders.GetOrderHistory(ctx, canonical)
}

// UpdateStatus moves an order along its lifecycle and tells the customer.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, invalid("status", fmt.Sprintf("unknown status %q", status))
	}

	order, err := u.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", domainErrors.ErrInvalidTransition, order.Status, status)
	}

	if err := u.orders.UpdateOrderStatus(ctx, id, order.Status, status); err != nil {
		return nil, err
	}
	order.Status = status

	if req, ok := u.messages.StatusUpdate(order, status); ok {
		if _, err := u.dispatcher.Dispatch(context.WithoutCancel(ctx), req); err != nil {
			u.logger.Warn("status update not delivered",
				slog.String("order_id", id.String()),
				slog.String("status", string(status)),
				slog.String("error", err.Error()),
			)
		}
	}

	return order, nil
}

// Notifications returns the delivery audit trail of an order. Records outlive
// compensated orders, so an unknown order yields an empty trail rather than
// ErrNotFound.
func (u *OrderUseCase) Notifications(ctx context.Context, id uuid.UUID) ([]model.NotificationRecord, error) {
	return u.records.ListByOrder(ctx, id)
}
