package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	pkgAuth "github.com/craftline/fulfillment/internal/pkg/auth"
	"github.com/craftline/fulfillment/internal/server/http/handlers"
	"github.com/craftline/fulfillment/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.FulfillmentFacade, verifier *pkgAuth.WebhookVerifier, staffKeys *pkgAuth.StaffKeyChecker, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	paymentHandler := handlers.NewPaymentWebhookHandler(facade, verifier, logger)
	carrierHandler := handlers.NewCarrierWebhookHandler(facade, logger)
	staffHandler := handlers.NewStaffHandler(facade, logger)
	pingHandler := handlers.NewPingHandler(facade)

	engine.GET("/ping", pingHandler.Handle)

	api := engine.Group("/api")
	webhooks := api.Group("/webhooks")
	webhooks.POST("/payment", paymentHandler.Handle)
	webhooks.POST("/carrier", carrierHandler.Handle)

	staff := api.Group("/staff")
	staff.Use(middleware.StaffAuthRequired(staffKeys))
	staff.POST("/orders/:id/complete", staffHandler.Complete)
	staff.POST("/orders/:id/refund", staffHandler.Refund)

	return engine
}
