package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/foodorder/internal/adapter/whatsapp"
	"github.com/polkiloo/foodorder/internal/config"
	"github.com/polkiloo/foodorder/internal/domain/repository"
)

// Module provides the notification dispatcher and message renderer.
var Module = fx.Provide(newDispatcher, newMessages)

type dispatcherParams struct {
	fx.In

	Records repository.NotificationRepository
	Orders  repository.OrderRepository
	Client  whatsapp.Client
	Logger  *slog.Logger
	Config  *config.Config
}

func newDispatcher(p dispatcherParams) *Dispatcher {
	return NewDispatcher(p.Records, p.Orders, p.Client, p.Logger, Options{
		Timeout:  p.Config.NotifyTimeout,
		Currency: p.Config.Currency,
	})
}

func newMessages(cfg *config.Config) Messages {
	return Messages{
		Currency:             cfg.Currency,
		Restaurant:           cfg.RestaurantName,
		ConfirmationTemplate: cfg.ConfirmationTemplate,
	}
}
