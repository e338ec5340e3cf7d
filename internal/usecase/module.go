package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/foodorder/internal/config"
	"github.com/polkiloo/foodorder/internal/domain/repository"
	"github.com/polkiloo/foodorder/internal/notify"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	func(d *notify.Dispatcher) Dispatcher { return d },
	newSubmitOrderUseCase,
	NewOrderUseCase,
	NewStaffAuthUseCase,
	newRedeliveryUseCase,
)

type submitParams struct {
	fx.In

	Orders     repository.OrderRepository
	Dispatcher Dispatcher
	Messages   notify.Messages
	Logger     *slog.Logger
	Config     *config.Config
}

func newSubmitOrderUseCase(p submitParams) *SubmitOrderUseCase {
	return NewSubmitOrderUseCase(p.Orders, p.Dispatcher, p.Messages, p.Logger, SubmitOptions{
		RateLimitMax:    p.Config.RateLimitMax,
		RateLimitWindow: p.Config.RateLimitWindow,
		DailyZone:       p.Config.DailyNumberZone,
	})
}

func newRedeliveryUseCase(records repository.NotificationRepository, dispatcher Dispatcher, cfg *config.Config) *RedeliveryUseCase {
	return NewRedeliveryUseCase(records, dispatcher, cfg.MaxDeliveryAttempt, nil)
}
