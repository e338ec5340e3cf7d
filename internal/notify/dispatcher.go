package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/foodorder/internal/adapter/whatsapp"
	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/domain/model"
	"github.com/polkiloo/foodorder/internal/domain/repository"
)

const codeTimeout = "timeout"

// Request describes one outbound message. Session requests carry Body;
// template requests carry TemplateName and take their variables from the
// related order.
type Request struct {
	Phone        string
	Kind         model.MessageKind
	Body         string
	TemplateName string
	OrderID      *uuid.UUID
}

// Result identifies a delivered message.
type Result struct {
	RecordID          int64
	ProviderMessageID string
}

// Options tune a Dispatcher.
type Options struct {
	Timeout  time.Duration
	Currency string
	Now      func() time.Time
}

// Dispatcher delivers messages through the provider and keeps the audit trail.
type Dispatcher struct {
	records  repository.NotificationRepository
	orders   repository.OrderRepository
	client   whatsapp.Client
	logger   *slog.Logger
	timeout  time.Duration
	currency string
	now      func() time.Time
}

func NewDispatcher(
	records repository.NotificationRepository,
	orders repository.OrderRepository,
	client whatsapp.Client,
	logger *slog.Logger,
	opts Options,
) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Dispatcher{
		records:  records,
		orders:   orders,
		client:   client,
		logger:   logger,
		timeout:  opts.Timeout,
		currency: opts.Currency,
		now:      opts.Now,
	}
}

// Dispatch records a pending attempt, calls the provider and stores the outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	record := model.NotificationRecord{
		OrderID:        req.OrderID,
		RecipientPhone: req.Phone,
		Kind:           req.Kind,
		Attempt:        1,
	}

	switch req.Kind {
	case model.MessageKindSession:
		if req.Body == "" {
			return nil, &domainErrors.ValidationError{Field: "body", Reason: "must not be empty"}
		}
		record.Content = req.Body
	case model.MessageKindTemplate:
		if req.TemplateName == "" {
			return nil, &domainErrors.ValidationError{Field: "template", Reason: "must not be empty"}
		}
		vars, err := json.Marshal(d.templateVariables(ctx, req.OrderID))
		if err != nil {
			return nil, err
		}
		record.TemplateName = req.TemplateName
		record.Content = string(vars)
	default:
		return nil, &domainErrors.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown message kind %q", req.Kind)}
	}

	return d.deliver(ctx, record)
}

// Redeliver sends a failed record again as a new attempt linked to it.
func (d *Dispatcher) Redeliver(ctx context.Context, failed model.NotificationRecord) (*Result, error) {
	retryOf := failed.ID
	record := model.NotificationRecord{
		OrderID:        failed.OrderID,
		RecipientPhone: failed.RecipientPhone,
		Kind:           failed.Kind,
		TemplateName:   failed.TemplateName,
		Content:        failed.Content,
		Attempt:        failed.Attempt + 1,
		RetryOf:        &retryOf,
	}
	return d.deliver(ctx, record)
}

func (d *Dispatcher) deliver(ctx context.Context, record model.NotificationRecord) (*Result, error) {
	msg, err := toMessage(record)
	if err != nil {
		return nil, err
	}

	created, err := d.records.CreateNotification(ctx, record)
	if err != nil {
		return nil, &domainErrors.StorageError{Step: "notification_log", Err: err}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	sent, sendErr := d.client.Send(sendCtx, msg)

	if sendErr != nil {
		derr := dispatchError(sendCtx, sendErr)
		d.complete(ctx, created, model.DeliveryOutcome{
			Status:       model.DeliveryStatusFailed,
			ErrorCode:    derr.Code,
			ErrorMessage: derr.Message,
		})
		return nil, derr
	}

	sentAt := d.now().UTC()
	d.complete(ctx, created, model.DeliveryOutcome{
		Status:            model.DeliveryStatusSent,
		ProviderMessageID: sent.SID,
		SentAt:            &sentAt,
	})
	return &Result{RecordID: created.ID, ProviderMessageID: sent.SID}, nil
}

// complete stores the final outcome. The provider has already answered, so
// a failure here is only logged.
func (d *Dispatcher) complete(ctx context.Context, record *model.NotificationRecord, outcome model.DeliveryOutcome) {
	if err := d.records.CompleteNotification(context.WithoutCancel(ctx), record.ID, outcome); err != nil {
		d.logger.Error("failed to record delivery outcome",
			slog.Int64("notification_id", record.ID),
			slog.String("status", string(outcome.Status)),
			slog.String("error", err.Error()),
		)
	}
}

func (d *Dispatcher) templateVariables(ctx context.Context, orderID *uuid.UUID) map[string]string {
	vars := map[string]string{
		"1": "Customer",
		"2": FormatAmount(0, d.currency),
		"3": "Unknown",
	}
	if orderID == nil {
		return vars
	}

	vars["3"] = orderID.String()
	order, err := d.orders.GetOrder(ctx, *orderID)
	if err != nil {
		d.logger.Warn("order lookup for template failed",
			slog.String("order_id", orderID.String()),
			slog.String("error", err.Error()),
		)
		return vars
	}
	if order.CustomerName != "" {
		vars["1"] = order.CustomerName
	}
	vars["2"] = FormatAmount(order.Total, d.currency)
	return vars
}

func toMessage(record model.NotificationRecord) (whatsapp.Message, error) {
	msg := whatsapp.Message{To: record.RecipientPhone}
	if record.Kind != model.MessageKindTemplate {
		msg.Body = record.Content
		return msg, nil
	}

	msg.ContentSID = record.TemplateName
	if record.Content != "" {
		if err := json.Unmarshal([]byte(record.Content), &msg.ContentVariables); err != nil {
			return msg, fmt.Errorf("decode template variables: %w", err)
		}
	}
	return msg, nil
}

func dispatchError(sendCtx context.Context, err error) *domainErrors.DispatchError {
	var perr *whatsapp.ProviderError
	switch {
	case errors.As(err, &perr):
		return &domainErrors.DispatchError{Code: perr.Code, Message: perr.Message, Err: err}
	case errors.Is(sendCtx.Err(), context.DeadlineExceeded):
		return &domainErrors.DispatchError{Code: codeTimeout, Message: "provider call timed out", Err: err}
	default:
		return &domainErrors.DispatchError{Message: err.Error(), Err: err}
	}
}
