package auth

import (
	"go.uber.org/fx"

	"github.com/craftline/fulfillment/internal/config"
)

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newWebhookVerifier),
	fx.Provide(newStaffKeyChecker),
)

type authParams struct {
	fx.In

	Config *config.Config
}

func newWebhookVerifier(p authParams) *WebhookVerifier {
	return NewWebhookVerifier(p.Config.GatewayWebhookSecret)
}

func newStaffKeyChecker(p authParams) *StaffKeyChecker {
	return NewStaffKeyChecker(p.Config.StaffKeyHash)
}
