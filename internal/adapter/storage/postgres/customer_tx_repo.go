package postgres

import (
	"context"
	"fmt"

	"qr-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CustomerTxRepo implements ports.CustomerTransactionRepository.
type CustomerTxRepo struct {
	pool Pool
}

// NewCustomerTxRepo creates a new CustomerTxRepo.
func NewCustomerTxRepo(pool Pool) *CustomerTxRepo {
	return &CustomerTxRepo{pool: pool}
}

// Create inserts a redemption record within a database transaction, so it
// commits together with the is_active flip on the QR row.
func (r *CustomerTxRepo) Create(ctx context.Context, tx pgx.Tx, ct *domain.CustomerTransaction) error {
	query := `INSERT INTO customer_transactions (id, customer_id, qr_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query,
		ct.ID, ct.CustomerID, ct.QRID, ct.Amount, ct.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert customer transaction: %w", err)
	}
	return nil
}

// ListByAdmin fetches redemptions against an admin's QR codes, newest first.
func (r *CustomerTxRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.CustomerTransaction, error) {
	query := `SELECT ct.id, ct.customer_id, ct.qr_id, ct.amount, ct.created_at
		FROM customer_transactions ct
		JOIN qr_codes qr ON qr.id = ct.qr_id
		WHERE qr.admin_id = $1 ORDER BY ct.created_at DESC`

	rows, err := r.pool.Query(ctx, query, adminID)
	if err != nil {
		return nil, fmt.Errorf("list customer transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.CustomerTransaction
	for rows.Next() {
		ct := domain.CustomerTransaction{}
		err := rows.Scan(&ct.ID, &ct.CustomerID, &ct.QRID, &ct.Amount, &ct.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan customer transaction row: %w", err)
		}
		txns = append(txns, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer transaction rows: %w", err)
	}
	return txns, nil
}
