package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/foodorder/internal/domain/model"
	pkgAuth "github.com/polkiloo/foodorder/internal/pkg/auth"
	"github.com/polkiloo/foodorder/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// OrderingFacade is the single entry point the HTTP layer and the worker talk to.
type OrderingFacade struct {
	submit     *usecase.SubmitOrderUseCase
	orders     *usecase.OrderUseCase
	staff      *usecase.StaffAuthUseCase
	redelivery *usecase.RedeliveryUseCase
	health     HealthChecker
}

func NewOrderingFacade(
	submit *usecase.SubmitOrderUseCase,
	orders *usecase.OrderUseCase,
	staff *usecase.StaffAuthUseCase,
	redelivery *usecase.RedeliveryUseCase,
	health HealthChecker,
) *OrderingFacade {
	return &OrderingFacade{submit: submit, orders: orders, staff: staff, redelivery: redelivery, health: health}
}

func (f *OrderingFacade) SubmitOrder(ctx context.Context, req model.OrderRequest) (*model.OrderReceipt, error) {
	return f.submit.Submit(ctx, req)
}

func (f *OrderingFacade) Order(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return f.orders.GetOrder(ctx, id)
}

func (f *OrderingFacade) OrderHistory(ctx context.Context, phone string) ([]model.Order, error) {
	return f.orders.History(ctx, phone)
}

func (f *OrderingFacade) Login(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.staff.Login(ctx, login, password)
	return token, err
}

func (f *OrderingFacade) ParseToken(token string) (pkgAuth.Claims, error) {
	return f.staff.ParseToken(token)
}

func (f *OrderingFacade) EnsureStaff(ctx context.Context, login, password string) error {
	return f.staff.EnsureStaff(ctx, login, password)
}

func (f *OrderingFacade) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, id, status)
}

func (f *OrderingFacade) OrderNotifications(ctx context.Context, id uuid.UUID) ([]model.NotificationRecord, error) {
	return f.orders.Notifications(ctx, id)
}

func (f *OrderingFacade) FailedNotifications(ctx context.Context, limit int) ([]model.NotificationRecord, error) {
	return f.redelivery.Pending(ctx, limit)
}

func (f *OrderingFacade) RedeliverNotification(ctx context.Context, record model.NotificationRecord) error {
	return f.redelivery.Redeliver(ctx, record)
}

func (f *OrderingFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
