package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/foodorder/internal/domain/model"
	pkgAuth "github.com/polkiloo/foodorder/internal/pkg/auth"
)

// OrderFacade encapsulates customer order operations exposed via HTTP.
type OrderFacade interface {
	SubmitOrder(ctx context.Context, req model.OrderRequest) (*model.OrderReceipt, error)
	Order(ctx context.Context, id uuid.UUID) (*model.Order, error)
	OrderHistory(ctx context.Context, phone string) ([]model.Order, error)
}

// StaffFacade describes staff capabilities required by handlers.
type StaffFacade interface {
	Login(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (pkgAuth.Claims, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
	OrderNotifications(ctx context.Context, id uuid.UUID) ([]model.NotificationRecord, error)
}

// HealthFacade reports store reachability.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// OrderingFacade aggregates the full set of operations used across handlers.
type OrderingFacade interface {
	OrderFacade
	StaffFacade
	HealthFacade
}
