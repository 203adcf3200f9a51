package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/craftline/fulfillment/internal/adapter/carrier"
	"github.com/craftline/fulfillment/internal/adapter/gateway"
	"github.com/craftline/fulfillment/internal/app"
	"github.com/craftline/fulfillment/internal/config"
	"github.com/craftline/fulfillment/internal/domain/repository"
	"github.com/craftline/fulfillment/internal/storage/postgres"
	"github.com/craftline/fulfillment/internal/test"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:           ":0",
		DatabaseURI:          "postgres://stub",
		GatewayAddress:       "http://localhost",
		GatewayWebhookSecret: "secret",
		CarrierAddress:       "http://localhost",
		StaffKeyHash:         "hash",
		RetryAttempts:        1,
		RetryBaseDelay:       time.Millisecond,
		RetryMaxDelay:        time.Millisecond,
		ShutdownTimeout:      time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	repos := test.NewFactoryStub()

	var facade *app.FulfillmentFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.OrderRepository(repos.OrderRepo)),
			fx.Replace(repository.PaymentRepository(repos.PaymentRepo)),
			fx.Replace(repository.InboxRepository(repos.InboxRepo)),
			fx.Replace(gateway.Client(&test.GatewayStub{})),
			fx.Replace(carrier.Client(&test.CarrierStub{})),
		),
		fx.Populate(&facade),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected fulfillment facade instance")
	}
}
