package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/craftline/fulfillment/internal/config"
	"github.com/craftline/fulfillment/internal/domain/repository"
	"github.com/craftline/fulfillment/internal/pkg/retry"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewPaymentUseCase,
	NewDeliveryUseCase,
	newCompensationDispatcher,
)

type dispatcherParams struct {
	fx.In

	Payments repository.PaymentRepository
	Gateway  GatewayProvider
	Carrier  CarrierProvider
	Config   *config.Config
	Logger   *slog.Logger
}

func newCompensationDispatcher(p dispatcherParams) *CompensationDispatcher {
	cfg := retry.Config{
		Attempts:  p.Config.RetryAttempts,
		BaseDelay: p.Config.RetryBaseDelay,
		MaxDelay:  p.Config.RetryMaxDelay,
	}
	return NewCompensationDispatcher(p.Payments, p.Gateway, p.Carrier, cfg, p.Logger)
}
