package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/craftline/fulfillment/internal/config"
)

// Module exposes gateway client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.GatewayAddress, p.Logger)
}
