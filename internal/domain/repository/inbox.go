package repository

import (
	"context"

	"github.com/craftline/fulfillment/internal/domain/model"
)

// InboxRepository stores raw webhook bodies for replay and audit.
type InboxRepository interface {
	Store(ctx context.Context, entry model.WebhookInboxEntry) error
}
