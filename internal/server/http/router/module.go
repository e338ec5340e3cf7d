package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/foodorder/internal/app"
	"github.com/polkiloo/foodorder/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(
	func(f *app.OrderingFacade) handlers.OrderingFacade { return f },
	Setup,
)
