package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qr-wallet-service/internal/core/domain"
	"qr-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentOrderRepo implements ports.PaymentOrderRepository.
type PaymentOrderRepo struct {
	pool Pool
}

// NewPaymentOrderRepo creates a new PaymentOrderRepo.
func NewPaymentOrderRepo(pool Pool) *PaymentOrderRepo {
	return &PaymentOrderRepo{pool: pool}
}

// Create inserts a new payment order in PENDING state.
func (r *PaymentOrderRepo) Create(ctx context.Context, po *domain.PaymentOrder) error {
	query := `INSERT INTO payment_orders (id, order_id, admin_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		po.ID, po.OrderID, po.AdminID, po.Amount, po.Status, po.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment order: %w", err)
	}
	return nil
}

// GetByOrderID fetches a payment order by its gateway order id.
// Returns nil, nil if absent.
func (r *PaymentOrderRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	query := `SELECT id, order_id, admin_id, amount, status, created_at, processed_at
		FROM payment_orders WHERE order_id = $1`

	return scanPaymentOrder(r.pool.QueryRow(ctx, query, orderID))
}

// SettleIfPending conditionally moves a PENDING order to SUCCESS and returns
// the settled row. The status predicate makes the transition one-shot: a
// second verification of the same order matches zero rows and gets nil, nil.
// MUST be called within a transaction so the wallet credit commits with it.
func (r *PaymentOrderRepo) SettleIfPending(ctx context.Context, tx pgx.Tx, orderID string, processedAt time.Time) (*domain.PaymentOrder, error) {
	query := `UPDATE payment_orders SET status = $1, processed_at = $2
		WHERE order_id = $3 AND status = $4
		RETURNING id, order_id, admin_id, amount, status, created_at, processed_at`

	return scanPaymentOrder(tx.QueryRow(ctx, query,
		domain.OrderStatusSuccess, processedAt, orderID, domain.OrderStatusPending,
	))
}

// FailIfPending conditionally moves a PENDING order to FAILED and returns the
// updated row, or nil, nil when the order is absent or already terminal.
func (r *PaymentOrderRepo) FailIfPending(ctx context.Context, orderID string, processedAt time.Time) (*domain.PaymentOrder, error) {
	query := `UPDATE payment_orders SET status = $1, processed_at = $2
		WHERE order_id = $3 AND status = $4
		RETURNING id, order_id, admin_id, amount, status, created_at, processed_at`

	return scanPaymentOrder(r.pool.QueryRow(ctx, query,
		domain.OrderStatusFailed, processedAt, orderID, domain.OrderStatusPending,
	))
}

// ListByAdmin fetches an admin's payment orders, newest first.
func (r *PaymentOrderRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.PaymentOrder, error) {
	query := `SELECT id, order_id, admin_id, amount, status, created_at, processed_at
		FROM payment_orders WHERE admin_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, adminID)
	if err != nil {
		return nil, fmt.Errorf("list payment orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.PaymentOrder
	for rows.Next() {
		po := domain.PaymentOrder{}
		err := rows.Scan(&po.ID, &po.OrderID, &po.AdminID, &po.Amount, &po.Status, &po.CreatedAt, &po.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("scan payment order row: %w", err)
		}
		orders = append(orders, po)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment order rows: %w", err)
	}
	return orders, nil
}

// GetStats aggregates an admin's payment orders. Only successful orders count
// toward the total amount added.
func (r *PaymentOrderRepo) GetStats(ctx context.Context, adminID uuid.UUID) (*ports.PaymentOrderStats, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = $2) AS successful,
		COUNT(*) FILTER (WHERE status = $3) AS failed,
		COUNT(*) FILTER (WHERE status = $4) AS pending,
		COALESCE(SUM(amount) FILTER (WHERE status = $2), 0) AS total_amount_added
		FROM payment_orders WHERE admin_id = $1`

	stats := &ports.PaymentOrderStats{}
	err := r.pool.QueryRow(ctx, query, adminID,
		domain.OrderStatusSuccess, domain.OrderStatusFailed, domain.OrderStatusPending,
	).Scan(
		&stats.Total, &stats.Successful, &stats.Failed, &stats.Pending, &stats.TotalAmountAdded,
	)
	if err != nil {
		return nil, fmt.Errorf("get payment order stats: %w", err)
	}
	return stats, nil
}

func scanPaymentOrder(row pgx.Row) (*domain.PaymentOrder, error) {
	po := &domain.PaymentOrder{}
	err := row.Scan(
		&po.ID, &po.OrderID, &po.AdminID, &po.Amount, &po.Status, &po.CreatedAt, &po.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment order: %w", err)
	}
	return po, nil
}
