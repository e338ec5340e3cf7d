package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/foodorder/internal/adapter/whatsapp"
	"github.com/polkiloo/foodorder/internal/app"
	"github.com/polkiloo/foodorder/internal/config"
	"github.com/polkiloo/foodorder/internal/logger"
	"github.com/polkiloo/foodorder/internal/notify"
	"github.com/polkiloo/foodorder/internal/pkg/auth"
	"github.com/polkiloo/foodorder/internal/server/http/router"
	"github.com/polkiloo/foodorder/internal/storage/postgres"
	"github.com/polkiloo/foodorder/internal/usecase"
)

// Module composes the whole service. Callers supply a context.Context and may
// append options such as fx.Replace to swap dependencies in tests.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		whatsapp.Module,
		notify.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
