package di

import (
	"go.uber.org/fx"

	"github.com/craftline/fulfillment/internal/adapter/carrier"
	"github.com/craftline/fulfillment/internal/adapter/gateway"
	"github.com/craftline/fulfillment/internal/app"
	"github.com/craftline/fulfillment/internal/config"
	"github.com/craftline/fulfillment/internal/logger"
	"github.com/craftline/fulfillment/internal/pkg/auth"
	"github.com/craftline/fulfillment/internal/server/http/handlers"
	"github.com/craftline/fulfillment/internal/server/http/router"
	"github.com/craftline/fulfillment/internal/storage/postgres"
	"github.com/craftline/fulfillment/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		gateway.Module,
		carrier.Module,
		usecase.Module,
		fx.Provide(
			func(client gateway.Client) usecase.GatewayProvider { return client },
			func(client carrier.Client) usecase.CarrierProvider { return client },
			func(client gateway.Client) app.GatewayProvider { return client },
			func(storage *postgres.Storage) app.HealthChecker { return storage },
			func(facade *app.FulfillmentFacade) handlers.FulfillmentFacade { return facade },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
