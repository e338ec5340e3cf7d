package whatsapp

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/foodorder/internal/config"
)

// Module provides the provider client for dependency injection.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(Options{
		BaseURL:    p.Config.TwilioAPIURL,
		AccountSID: p.Config.TwilioAccountSID,
		AuthToken:  p.Config.TwilioAuthToken,
		From:       p.Config.TwilioWhatsAppNumber,
		Timeout:    p.Config.NotifyTimeout,
	}, p.Logger)
}
