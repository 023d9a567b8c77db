package postgres

import (
	"context"
	"errors"
	"fmt"

	"qr-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet within the caller's transaction, so the
// wallet and its admin row commit or roll back together.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, admin_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query,
		w.ID, w.AdminID, w.Balance, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByAdminID fetches a wallet by its owning admin (non-locking read).
func (r *WalletRepo) GetByAdminID(ctx context.Context, adminID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, admin_id, balance, created_at, updated_at
		FROM wallets WHERE admin_id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, adminID).Scan(
		&w.ID, &w.AdminID, &w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by admin id: %w", err)
	}
	return w, nil
}

// AdjustBalance applies delta as one conditional UPDATE. The row-level
// lock taken by UPDATE serializes concurrent adjustments on the same
// wallet; the balance + delta >= 0 guard keeps the balance non-negative.
// MUST be called within a transaction.
func (r *WalletRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, adminID uuid.UUID, delta int64) (int64, bool, error) {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = NOW()
		WHERE admin_id = $2 AND balance + $1 >= 0
		RETURNING balance`

	var newBalance int64
	err := tx.QueryRow(ctx, query, delta, adminID).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("adjust wallet balance: %w", err)
	}
	return newBalance, true, nil
}
