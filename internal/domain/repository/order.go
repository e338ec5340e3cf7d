package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/foodorder/internal/domain/model"
)

// OrderRepository describes persistence operations with orders and their lines.
type OrderRepository interface {
	CountOrdersSince(ctx context.Context, since time.Time) (int, error)
	CountOrdersForPhone(ctx context.Context, phone string, since time.Time) (int, error)
	CreateOrder(ctx context.Context, order model.NewOrder) (*model.Order, error)
	CreateOrderLines(ctx context.Context, orderID uuid.UUID, lines []model.OrderLine) error
	// UpdateOrderStatus moves the order from one status to another. It fails with
	// ErrInvalidTransition when the stored status is no longer from.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to model.OrderStatus) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	GetOrderHistory(ctx context.Context, phone string) ([]model.Order, error)
}
