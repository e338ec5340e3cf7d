package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/foodorder/internal/domain/model"
)

// NotificationRepository keeps the append-only message audit trail.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, record model.NotificationRecord) (*model.NotificationRecord, error)
	CompleteNotification(ctx context.Context, id int64, outcome model.DeliveryOutcome) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.NotificationRecord, error)
	SelectForRedelivery(ctx context.Context, maxAttempts int, since time.Time, limit int) ([]model.NotificationRecord, error)
}
