package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/foodorder/internal/domain/model"
	pkgAuth "github.com/polkiloo/foodorder/internal/pkg/auth"
)

// OrderFacadeStub provides controllable behaviour for customer order endpoints.
type OrderFacadeStub struct {
	SubmitFn  func(context.Context, model.OrderRequest) (*model.OrderReceipt, error)
	OrderFn   func(context.Context, uuid.UUID) (*model.Order, error)
	HistoryFn func(context.Context, string) ([]model.Order, error)
}

// SubmitOrder delegates to provided function or accepts the order.
func (s OrderFacadeStub) SubmitOrder(ctx context.Context, req model.OrderRequest) (*model.OrderReceipt, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, req)
	}
	n := 1
	return &model.OrderReceipt{OrderID: uuid.New(), DailyNumber: &n}, nil
}

// Order returns the configured order or a default one.
func (s OrderFacadeStub) Order(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{ID: id, Status: model.OrderStatusConfirmed}, nil
}

// OrderHistory returns predefined orders for given phone.
func (s OrderFacadeStub) OrderHistory(ctx context.Context, phone string) ([]model.Order, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, phone)
	}
	return []model.Order{{ID: uuid.New(), CustomerPhone: phone}}, nil
}

// StaffFacadeStub simulates staff operations.
type StaffFacadeStub struct {
	LoginFn         func(context.Context, string, string) (string, error)
	ParseFn         func(string) (pkgAuth.Claims, error)
	UpdateStatusFn  func(context.Context, uuid.UUID, model.OrderStatus) (*model.Order, error)
	NotificationsFn func(context.Context, uuid.UUID) ([]model.NotificationRecord, error)
}

// Login returns token for successful authentication scenarios.
func (s StaffFacadeStub) Login(ctx context.Context, login, password string) (string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, login, password)
	}
	return "token", nil
}

// ParseToken returns claims of the authenticated staff member.
func (s StaffFacadeStub) ParseToken(token string) (pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return pkgAuth.Claims{StaffID: 1, Login: "staff"}, nil
}

// UpdateOrderStatus executes configured handler.
func (s StaffFacadeStub) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, id, status)
	}
	return &model.Order{ID: id, Status: status}, nil
}

// OrderNotifications returns preconfigured audit trail.
func (s StaffFacadeStub) OrderNotifications(ctx context.Context, id uuid.UUID) ([]model.NotificationRecord, error) {
	if s.NotificationsFn != nil {
		return s.NotificationsFn(ctx, id)
	}
	return []model.NotificationRecord{{ID: 1, OrderID: &id, Status: model.DeliveryStatusSent, CreatedAt: time.Unix(0, 0).UTC()}}, nil
}

// OrderingFacadeStub aggregates facade dependencies for HTTP layer tests.
type OrderingFacadeStub struct {
	OrderFacadeStub
	StaffFacadeStub
	HealthFn func(context.Context) error
}

// HealthCheck reports configured store health.
func (s OrderingFacadeStub) HealthCheck(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}

// RedeliveryFacadeStub mimics worker interactions with the ordering facade.
type RedeliveryFacadeStub struct {
	Batches     [][]model.NotificationRecord
	FailedFn    func(context.Context, int) ([]model.NotificationRecord, error)
	RedeliverFn func(context.Context, model.NotificationRecord) error
	Redelivered []int64
	mu          sync.Mutex
	callCount   int32
}

// Lock exposes internal mutex for external synchronization.
func (s *RedeliveryFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *RedeliveryFacadeStub) Unlock() { s.mu.Unlock() }

// FailedNotifications returns batches from configured queue.
func (s *RedeliveryFacadeStub) FailedNotifications(ctx context.Context, limit int) ([]model.NotificationRecord, error) {
	if s.FailedFn != nil {
		return s.FailedFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.callCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// RedeliverNotification records redelivery requests.
func (s *RedeliveryFacadeStub) RedeliverNotification(ctx context.Context, rec model.NotificationRecord) error {
	s.mu.Lock()
	s.Redelivered = append(s.Redelivered, rec.ID)
	s.mu.Unlock()
	if s.RedeliverFn != nil {
		return s.RedeliverFn(ctx, rec)
	}
	return nil
}
