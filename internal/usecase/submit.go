package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/domain/model"
	"github.com/polkiloo/foodorder/internal/domain/repository"
	"github.com/polkiloo/foodorder/internal/notify"
)

// Workflow steps, used in StorageError and in logs.
const (
	StepRateCheck   = "rate_check"
	StepCreateOrder = "create_order"
	StepCreateLines = "create_lines"
	StepConfirm     = "confirm"
	StepNotify      = "notify"
	StepCompensate  = "compensate"
	StepDailyNumber = "daily_number"
)

// Dispatcher sends customer notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, req notify.Request) (*notify.Result, error)
	Redeliver(ctx context.Context, record model.NotificationRecord) (*notify.Result, error)
}

// SubmitOptions tune the submission workflow.
type SubmitOptions struct {
	RateLimitMax    int
	RateLimitWindow time.Duration
	DailyZone       *time.Location
	Now             func() time.Time
}

// SubmitOrderUseCase places customer orders. The steps run in sequence:
// validate, rate check, create header, create lines, confirm, notify.
// Only the header and lines writes can fail the submission; a failed lines
// write removes the header again.
type SubmitOrderUseCase struct {
	orders     repository.OrderRepository
	dispatcher Dispatcher
	messages   notify.Messages
	logger     *slog.Logger

	limit  int
	window time.Duration
	zone   *time.Location
	now    func() time.Time
}

// NewSubmitOrderUseCase constructs SubmitOrderUseCase.
func NewSubmitOrderUseCase(
	orders repository.OrderRepository,
	dispatcher Dispatcher,
	messages notify.Messages,
	logger *slog.Logger,
	opts SubmitOptions,
) *SubmitOrderUseCase {
	if opts.RateLimitMax <= 0 {
		opts.RateLimitMax = 5
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = time.Hour
	}
	if opts.DailyZone == nil {
		opts.DailyZone = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SubmitOrderUseCase{
		orders:     orders,
		dispatcher: dispatcher,
		messages:   messages,
		logger:     logger,
		limit:      opts.RateLimitMax,
		window:     opts.RateLimitWindow,
		zone:       opts.DailyZone,
		now:        opts.Now,
	}
}

// Submit runs the workflow and returns the identifier of the placed order.
// Errors are ValidationError, RateLimitError or StorageError.
func (u *SubmitOrderUseCase) Submit(ctx context.Context, req model.OrderRequest) (*model.OrderReceipt, error) {
	header, lines, err := ValidateOrder(req)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()

	// The count and the insert below are not atomic; concurrent submissions
	// from one phone can exceed the limit slightly.
	count, err := u.orders.CountOrdersForPhone(ctx, header.CustomerPhone, now.Add(-u.window))
	if err != nil {
		return nil, &domainErrors.StorageError{Step: StepRateCheck, Err: err}
	}
	if count >= u.limit {
		u.logger.Info("order rejected by rate limit",
			slog.String("phone", header.CustomerPhone),
			slog.Int("count", count),
		)
		return nil, &domainErrors.RateLimitError{Count: count, Limit: u.limit, Window: u.window}
	}

	header.DailyNumber = u.dailyNumber(ctx, now)

	order, err := u.orders.CreateOrder(ctx, header)
	if err != nil {
		u.logger.Error("failed to create order", slog.String("phone", header.CustomerPhone), slog.String("error", err.Error()))
		return nil, &domainErrors.StorageError{Step: StepCreateOrder, Err: err}
	}
	log := u.logger.With(slog.String("order_id", order.ID.String()))

	if err := u.orders.CreateOrderLines(ctx, order.ID, lines); err != nil {
		log.Error("failed to create order lines", slog.String("step", StepCreateLines), slog.String("error", err.Error()))
		u.compensate(ctx, log, order.ID)
		return nil, &domainErrors.StorageError{Step: StepCreateLines, Err: err}
	}
	order.Lines = lines

	// The lines are committed; a client gone by now must not leave the order pending.
	if err := u.orders.UpdateOrderStatus(context.WithoutCancel(ctx), order.ID, model.OrderStatusPending, model.OrderStatusConfirmed); err != nil {
		log.Warn("order left pending", slog.String("step", StepConfirm), slog.String("error", err.Error()))
	} else {
		order.Status = model.OrderStatusConfirmed
	}

	u.notify(ctx, log, order)

	return &model.OrderReceipt{OrderID: order.ID, DailyNumber: order.DailyNumber}, nil
}

// dailyNumber counts today's orders in the configured zone. It is advisory,
// so a failed count leaves the order unnumbered.
func (u *SubmitOrderUseCase) dailyNumber(ctx context.Context, now time.Time) *int {
	local := now.In(u.zone)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, u.zone)

	count, err := u.orders.CountOrdersSince(ctx, midnight)
	if err != nil {
		u.logger.Warn("daily order count failed", slog.String("step", StepDailyNumber), slog.String("error", err.Error()))
		return nil
	}
	n := count + 1
	return &n
}

func (u *SubmitOrderUseCase) compensate(ctx context.Context, log *slog.Logger, orderID uuid.UUID) {
	if err := u.orders.DeleteOrder(context.WithoutCancel(ctx), orderID); err != nil {
		cerr := &domainErrors.CompensationError{OrderID: orderID, Err: err}
		log.Error("compensation failed", slog.String("step", StepCompensate), slog.String("error", cerr.Error()))
		return
	}
	log.Info("order removed after failed lines write", slog.String("step", StepCompensate))
}

func (u *SubmitOrderUseCase) notify(ctx context.Context, log *slog.Logger, order *model.Order) {
	res, err := u.dispatcher.Dispatch(context.WithoutCancel(ctx), u.messages.Confirmation(order))
	if err != nil {
		var derr *domainErrors.DispatchError
		if errors.As(err, &derr) {
			log.Warn("order confirmation not delivered",
				slog.String("step", StepNotify),
				slog.String("code", derr.Code),
				slog.String("error", derr.Error()),
			)
			return
		}
		log.Error("order confirmation failed", slog.String("step", StepNotify), slog.String("error", err.Error()))
		return
	}
	log.Debug("order confirmation sent", slog.String("provider_message_id", res.ProviderMessageID))
}
