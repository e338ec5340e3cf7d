package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/polkiloo/foodorder/internal/domain/model"
	"github.com/polkiloo/foodorder/internal/domain/repository"
)

const redeliveryLookback = 24 * time.Hour

// RedeliveryUseCase retries failed notifications in the background.
type RedeliveryUseCase struct {
	records     repository.NotificationRepository
	dispatcher  Dispatcher
	maxAttempts int
	now         func() time.Time
}

// NewRedeliveryUseCase constructs RedeliveryUseCase.
func NewRedeliveryUseCase(records repository.NotificationRepository, dispatcher Dispatcher, maxAttempts int, now func() time.Time) *RedeliveryUseCase {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if now == nil {
		now = time.Now
	}
	return &RedeliveryUseCase{records: records, dispatcher: dispatcher, maxAttempts: maxAttempts, now: now}
}

// Pending returns failed attempts from the last day that may be retried.
func (u *RedeliveryUseCase) Pending(ctx context.Context, limit int) ([]model.NotificationRecord, error) {
	return u.records.SelectForRedelivery(ctx, u.maxAttempts, u.now().UTC().Add(-redeliveryLookback), limit)
}

// Redeliver sends a failed record again as a new linked attempt.
func (u *RedeliveryUseCase) Redeliver(ctx context.Context, record model.NotificationRecord) error {
	if record.Status != model.DeliveryStatusFailed {
		return fmt.Errorf("notification %d is %s, not failed", record.ID, record.Status)
	}
	if record.Attempt >= u.maxAttempts {
		return fmt.Errorf("notification %d exhausted %d attempts", record.ID, u.maxAttempts)
	}
	_, err := u.dispatcher.Redeliver(ctx, record)
	return err
}
