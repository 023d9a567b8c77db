package ports

import (
	"context"
	"time"

	"qr-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines persistence operations for operator accounts.
// Create runs inside the caller's transaction so an admin and its wallet
// commit or roll back together; it returns domain.ErrDuplicateEmail
// (wrapped) when the email unique constraint fires.
type UserRepository interface {
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// WalletRepository defines persistence operations for wallets.
// Create and AdjustBalance run inside the caller's transaction so a wallet
// and its admin row (or a debit and its QR insert, a settle and its credit)
// commit or roll back together.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByAdminID(ctx context.Context, adminID uuid.UUID) (*domain.Wallet, error)
	// AdjustBalance applies delta as a single conditional UPDATE guarded by
	// balance + delta >= 0. Returns the new balance and whether the update
	// applied; applied=false means the guard rejected the delta or no
	// wallet row exists.
	AdjustBalance(ctx context.Context, tx pgx.Tx, adminID uuid.UUID, delta int64) (int64, bool, error)
}

// QRRepository defines persistence operations for QR codes.
type QRRepository interface {
	Create(ctx context.Context, tx pgx.Tx, qr *domain.QRCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QRCode, error)
	// MarkInactive conditionally flips is_active to false. Returns true only
	// if this call performed the flip; false means the QR was already
	// inactive or does not exist. This is the single-use gate.
	MarkInactive(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.QRCode, error)
	ListActiveByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.QRCode, error)
	GetStats(ctx context.Context, adminID uuid.UUID) (*QRStats, error)
}

// QRStats aggregates a single admin's issued QR codes.
type QRStats struct {
	TotalAmountIssued int64
	Total             int64
	Active            int64
	Inactive          int64
}

// CustomerTransactionRepository persists redemption records.
type CustomerTransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, ct *domain.CustomerTransaction) error
	ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.CustomerTransaction, error)
}

// PaymentOrderRepository defines persistence operations for payment orders.
// The *IfPending methods are conditional updates (status = PENDING in the
// WHERE clause); they are the primitive that makes concurrent verify calls
// and retries safe.
type PaymentOrderRepository interface {
	Create(ctx context.Context, order *domain.PaymentOrder) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	// SettleIfPending transitions PENDING→SUCCESS inside the caller's
	// transaction. Returns nil if no pending row matched.
	SettleIfPending(ctx context.Context, tx pgx.Tx, orderID string, processedAt time.Time) (*domain.PaymentOrder, error)
	// FailIfPending transitions PENDING→FAILED. Returns nil if no pending
	// row matched.
	FailIfPending(ctx context.Context, orderID string, processedAt time.Time) (*domain.PaymentOrder, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.PaymentOrder, error)
	GetStats(ctx context.Context, adminID uuid.UUID) (*PaymentOrderStats, error)
}

// PaymentOrderStats aggregates a single admin's top-up orders.
type PaymentOrderStats struct {
	Total            int64
	Successful       int64
	Failed           int64
	Pending          int64
	TotalAmountAdded int64 // Sum of successful order amounts
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
