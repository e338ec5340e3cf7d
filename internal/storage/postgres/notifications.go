package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/domain/model"
)

type notificationRepository struct {
	storage *Storage
}

const notificationColumns = `id, order_id, recipient_phone, message_type, template_name, message_content, status,
    provider_message_id, error_code, error_message, attempt, retry_of, created_at, sent_at`

func scanNotification(row pgx.Row) (*model.NotificationRecord, error) {
	var (
		rec                             model.NotificationRecord
		orderID                         *uuid.UUID
		template, providerID, code, msg *string
	)
	if err := row.Scan(&rec.ID, &orderID, &rec.RecipientPhone, &rec.Kind, &template, &rec.Content, &rec.Status,
		&providerID, &code, &msg, &rec.Attempt, &rec.RetryOf, &rec.CreatedAt, &rec.SentAt); err != nil {
		return nil, err
	}
	rec.OrderID = orderID
	rec.TemplateName = deref(template)
	rec.ProviderMessageID = deref(providerID)
	rec.ErrorCode = deref(code)
	rec.ErrorMessage = deref(msg)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateNotification stores the record in pending state before the provider is called.
func (r *notificationRepository) CreateNotification(ctx context.Context, rec model.NotificationRecord) (*model.NotificationRecord, error) {
	const query = `INSERT INTO whatsapp_messages (order_id, recipient_phone, message_type, template_name, message_content, status, attempt, retry_of)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                   RETURNING id, created_at`
	if rec.Attempt < 1 {
		rec.Attempt = 1
	}
	rec.Status = model.DeliveryStatusPending
	err := r.storage.pool.QueryRow(ctx, query,
		rec.OrderID, rec.RecipientPhone, rec.Kind, nullable(rec.TemplateName), rec.Content, rec.Status, rec.Attempt, rec.RetryOf,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

// CompleteNotification moves a pending record to its final state. A record
// already completed is reported as not found so it is only ever updated once.
func (r *notificationRepository) CompleteNotification(ctx context.Context, id int64, outcome model.DeliveryOutcome) error {
	const query = `UPDATE whatsapp_messages
                   SET status=$1, provider_message_id=$2, error_code=$3, error_message=$4, sent_at=$5
                   WHERE id=$6 AND status='pending'`
	tag, err := r.storage.pool.Exec(ctx, query,
		outcome.Status, nullable(outcome.ProviderMessageID), nullable(outcome.ErrorCode), nullable(outcome.ErrorMessage), outcome.SentAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.NotificationRecord, error) {
	const query = `SELECT ` + notificationColumns + ` FROM whatsapp_messages WHERE order_id=$1 ORDER BY created_at, id`
	return r.list(ctx, query, orderID)
}

// SelectForRedelivery returns failed attempts that still have budget left and
// have not been retried yet.
func (r *notificationRepository) SelectForRedelivery(ctx context.Context, maxAttempts int, since time.Time, limit int) ([]model.NotificationRecord, error) {
	const query = `SELECT ` + notificationColumns + ` FROM whatsapp_messages m
                   WHERE m.status='failed' AND m.attempt < $1 AND m.created_at >= $2
                   AND NOT EXISTS (SELECT 1 FROM whatsapp_messages r WHERE r.retry_of = m.id)
                   ORDER BY m.created_at LIMIT $3`
	return r.list(ctx, query, maxAttempts, since, limit)
}

func (r *notificationRepository) list(ctx context.Context, query string, args ...any) ([]model.NotificationRecord, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.NotificationRecord
	for rows.Next() {
		rec, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
