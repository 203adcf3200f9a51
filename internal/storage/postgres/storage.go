package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/craftline/fulfillment/internal/domain/errors"
	"github.com/craftline/fulfillment/internal/domain/model"
	"github.com/craftline/fulfillment/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool used by the storage, extracted so
// tests can substitute a mock pool.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type paymentRepository struct {
	storage *Storage
}

type inboxRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Payments() repository.PaymentRepository {
	return &paymentRepository{storage: s}
}

func (s *Storage) Inbox() repository.InboxRepository {
	return &inboxRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            total DOUBLE PRECISION NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'NEW',
            payment_status TEXT NOT NULL DEFAULT 'PENDING',
            carrier_order_id TEXT NOT NULL DEFAULT '',
            shipment_id TEXT NOT NULL DEFAULT '',
            awb_code TEXT NOT NULL DEFAULT '',
            tracking_url TEXT NOT NULL DEFAULT '',
            latest_status_code INT,
            latest_status_text TEXT NOT NULL DEFAULT '',
            latest_status_at TIMESTAMPTZ,
            previous_statuses INT[] NOT NULL DEFAULT '{}',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payments (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            gateway_payment_id TEXT UNIQUE NOT NULL,
            amount DOUBLE PRECISION NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'PENDING',
            method TEXT NOT NULL DEFAULT '',
            gateway_response JSONB,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS refunds (
            id UUID PRIMARY KEY,
            payment_id BIGINT NOT NULL REFERENCES payments(id),
            gateway_refund_id TEXT UNIQUE NOT NULL,
            amount DOUBLE PRECISION NOT NULL DEFAULT 0,
            type TEXT NOT NULL DEFAULT '',
            note TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_delivery_status (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            status_code INT NOT NULL,
            status_text TEXT NOT NULL DEFAULT '',
            action_code INT NOT NULL DEFAULT 0,
            event_at TIMESTAMPTZ NOT NULL,
            received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS webhook_inbox (
            id UUID PRIMARY KEY,
            source TEXT NOT NULL,
            body BYTEA NOT NULL,
            received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_delivery_status_order ON order_delivery_status(order_id, event_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, total, status, payment_status, carrier_order_id, shipment_id, awb_code, tracking_url,
                      latest_status_code, latest_status_text, latest_status_at, previous_statuses, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o    model.Order
		prev []int32
	)
	err := row.Scan(&o.ID, &o.Total, &o.Status, &o.PaymentStatus, &o.CarrierOrderID, &o.ShipmentID,
		&o.AWBCode, &o.TrackingURL, &o.LatestStatusCode, &o.LatestStatusText, &o.LatestStatusAt,
		&prev, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	o.PreviousStatuses = make([]int, 0, len(prev))
	for _, code := range prev {
		o.PreviousStatuses = append(o.PreviousStatuses, int(code))
	}
	return &o, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) ApplyDeliveryEvent(ctx context.Context, event model.DeliveryStatusEvent, status model.OrderStatus, awbCode, trackingURL string) (*model.Order, error) {
	var result *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		lockQuery := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
		current, err := scanOrder(tx.QueryRow(ctx, lockQuery, event.OrderID))
		if err != nil {
			return err
		}

		const insertEvent = `INSERT INTO order_delivery_status (order_id, status_code, status_text, action_code, event_at)
                             VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.Exec(ctx, insertEvent, event.OrderID, event.StatusCode, event.StatusText, event.ActionCode, event.EventAt); err != nil {
			return err
		}

		// History grows unconditionally, duplicates included: the array is an
		// audit trail for detecting redelivery, not a deduplicated set.
		const appendHistory = `UPDATE orders
                               SET previous_statuses = array_append(previous_statuses, $1),
                                   awb_code = COALESCE(NULLIF($2, ''), awb_code),
                                   tracking_url = COALESCE(NULLIF($3, ''), tracking_url),
                                   updated_at = NOW()
                               WHERE id=$4`
		if _, err := tx.Exec(ctx, appendHistory, event.StatusCode, awbCode, trackingURL, event.OrderID); err != nil {
			return err
		}

		// The denormalized projection is only overwritten forward in time and
		// never once the order is terminal; a stale redelivered event stays in
		// the history but must not regress what customers see.
		if !current.Status.Terminal() && (current.LatestStatusAt == nil || !event.EventAt.Before(*current.LatestStatusAt)) {
			const project = `UPDATE orders
                             SET status=$1, latest_status_code=$2, latest_status_text=$3, latest_status_at=$4, updated_at=NOW()
                             WHERE id=$5`
			if _, err := tx.Exec(ctx, project, status, event.StatusCode, event.StatusText, event.EventAt, event.OrderID); err != nil {
				return err
			}
		}

		reselect := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
		result, err = scanOrder(tx.QueryRow(ctx, reselect, event.OrderID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// --- PaymentRepository implementation ---

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.GatewayPaymentID, &p.Amount, &p.Status, &p.Method, &p.GatewayResponse, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

const paymentColumns = `id, order_id, gateway_payment_id, amount, status, method, gateway_response, created_at, updated_at`

func (r *paymentRepository) GetByGatewayID(ctx context.Context, gatewayPaymentID string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE gateway_payment_id=$1`
	return scanPayment(r.storage.pool.QueryRow(ctx, query, gatewayPaymentID))
}

func (r *paymentRepository) GetLatestByOrder(ctx context.Context, orderID int64) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id=$1 ORDER BY created_at DESC LIMIT 1`
	return scanPayment(r.storage.pool.QueryRow(ctx, query, orderID))
}

func (r *paymentRepository) Apply(ctx context.Context, orderID int64, gatewayPaymentID string, status model.PaymentStatus, method string, amount float64, raw json.RawMessage) (bool, error) {
	applied := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		// Locking the order row first serializes concurrent deliveries of the
		// same webhook: the second delivery observes the committed state and
		// becomes a no-op.
		const lockOrder = `SELECT id, status FROM orders WHERE id=$1 FOR UPDATE`
		var (
			lockedID    int64
			orderStatus model.OrderStatus
		)
		if err := tx.QueryRow(ctx, lockOrder, orderID).Scan(&lockedID, &orderStatus); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		const lockPayment = `SELECT id, status FROM payments WHERE gateway_payment_id=$1 FOR UPDATE`
		var (
			paymentID     int64
			paymentStatus model.PaymentStatus
		)
		err := tx.QueryRow(ctx, lockPayment, gatewayPaymentID).Scan(&paymentID, &paymentStatus)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			const insertPayment = `INSERT INTO payments (order_id, gateway_payment_id, amount, status, method, gateway_response)
                                   VALUES ($1, $2, $3, $4, $5, $6)`
			if _, err := tx.Exec(ctx, insertPayment, orderID, gatewayPaymentID, amount, status, method, raw); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if !paymentStatus.CanTransitionTo(status) {
				// Duplicate or backward event; already-applied state wins.
				return nil
			}
			const updatePayment = `UPDATE payments SET status=$1, gateway_response=$2, updated_at=NOW() WHERE id=$3`
			if _, err := tx.Exec(ctx, updatePayment, status, raw, paymentID); err != nil {
				return err
			}
		}

		switch status {
		case model.PaymentStatusCompleted:
			const advanceOrder = `UPDATE orders
                                  SET payment_status=$1,
                                      status = CASE WHEN status=$2 THEN $3 ELSE status END,
                                      updated_at=NOW()
                                  WHERE id=$4`
			if _, err := tx.Exec(ctx, advanceOrder, model.PaymentStatusCompleted, model.OrderStatusNew, model.OrderStatusReadyToShip, orderID); err != nil {
				return err
			}
		case model.PaymentStatusFailed:
			const markFailed = `UPDATE orders SET payment_status=$1, updated_at=NOW() WHERE id=$2`
			if _, err := tx.Exec(ctx, markFailed, model.PaymentStatusFailed, orderID); err != nil {
				return err
			}
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *paymentRepository) MarkRefunded(ctx context.Context, gatewayPaymentID string, refund model.Refund) (bool, error) {
	applied := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const lockPayment = `SELECT id, order_id, status FROM payments WHERE gateway_payment_id=$1 FOR UPDATE`
		var (
			paymentID int64
			orderID   int64
			status    model.PaymentStatus
		)
		if err := tx.QueryRow(ctx, lockPayment, gatewayPaymentID).Scan(&paymentID, &orderID, &status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		if status == model.PaymentStatusRefunded {
			return nil
		}
		if !status.CanTransitionTo(model.PaymentStatusRefunded) {
			return domainErrors.ErrInvalidTransition
		}

		const updatePayment = `UPDATE payments SET status=$1, updated_at=NOW() WHERE id=$2`
		if _, err := tx.Exec(ctx, updatePayment, model.PaymentStatusRefunded, paymentID); err != nil {
			return err
		}

		const insertRefund = `INSERT INTO refunds (id, payment_id, gateway_refund_id, amount, type, note)
                              VALUES ($1, $2, $3, $4, $5, $6)
                              ON CONFLICT (gateway_refund_id) DO NOTHING`
		if _, err := tx.Exec(ctx, insertRefund, refund.ID, paymentID, refund.GatewayRefundID, refund.Amount, refund.Type, refund.Note); err != nil {
			return err
		}

		const updateOrder = `UPDATE orders
                             SET payment_status=$1,
                                 status = CASE WHEN status IN ($2, $3, $4) THEN status ELSE $5 END,
                                 updated_at=NOW()
                             WHERE id=$6`
		if _, err := tx.Exec(ctx, updateOrder, model.PaymentStatusRefunded,
			model.OrderStatusDelivered, model.OrderStatusCancelled, model.OrderStatusReturned,
			model.OrderStatusReturned, orderID); err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// --- InboxRepository implementation ---

func (r *inboxRepository) Store(ctx context.Context, entry model.WebhookInboxEntry) error {
	const query = `INSERT INTO webhook_inbox (id, source, body, received_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.storage.pool.Exec(ctx, query, entry.ID, entry.Source, entry.Body, entry.ReceivedAt); err != nil {
		return fmt.Errorf("store webhook: %w", err)
	}
	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
