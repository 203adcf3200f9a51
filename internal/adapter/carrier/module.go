package carrier

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/craftline/fulfillment/internal/config"
)

// Module exposes carrier client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.CarrierAddress, p.Logger)
}
