package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/foodorder/internal/config"
	"github.com/polkiloo/foodorder/internal/storage/postgres"
	"github.com/polkiloo/foodorder/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		func(s *postgres.Storage) HealthChecker { return s },
		NewOrderingFacade,
		func(f *OrderingFacade) StaffSeeder { return f },
		newHTTPServer,
		newRedeliverer,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *OrderingFacade
	Config *config.Config
	Logger *slog.Logger
}

func newRedeliverer(p workerParams) *worker.Redeliverer {
	return worker.NewRedeliverer(
		p.Facade,
		p.Config.RedeliveryInterval,
		p.Config.RedeliveryBatch,
		p.Config.RedeliveryWorkers,
		p.Logger,
	)
}

// StaffSeeder creates the bootstrap staff account.
type StaffSeeder interface {
	EnsureStaff(ctx context.Context, login, password string) error
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.Redeliverer
	Staff      StaffSeeder
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.Config.StaffLogin != "" && p.Config.StaffPassword != "" {
				if err := p.Staff.EnsureStaff(ctx, p.Config.StaffLogin, p.Config.StaffPassword); err != nil {
					return err
				}
			}

			p.Logger.Info("starting foodorder", slog.String("addr", p.Server.Addr))
			// OnStart ctx ends once startup completes; the worker must outlive it.
			p.Worker.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("foodorder stopped")
			return nil
		},
	})
}
