package postgres

import (
	"context"
	"testing"
	"time"

	"qr-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(adminID uuid.UUID) *domain.Wallet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Wallet{
		ID:        uuid.New(),
		AdminID:   adminID,
		Balance:   100000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func walletColumns() []string {
	return []string{"id", "admin_id", "balance", "created_at", "updated_at"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletColumns()).AddRow(
		w.ID, w.AdminID, w.Balance, w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.ID, w.AdminID, w.Balance, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByAdminID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE admin_id").
		WithArgs(w.AdminID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetByAdminID(context.Background(), w.AdminID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.Equal(t, int64(100000), result.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByAdminID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE admin_id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(walletColumns()))

	result, err := repo.GetByAdminID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_AdjustBalance_Credit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	adminID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE wallets SET balance").
		WithArgs(int64(50000), adminID).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(150000)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	newBalance, applied, err := repo.AdjustBalance(context.Background(), tx, adminID, 50000)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(150000), newBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_AdjustBalance_DebitToZero(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	adminID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE wallets SET balance").
		WithArgs(int64(-100000), adminID).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(0)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	newBalance, applied, err := repo.AdjustBalance(context.Background(), tx, adminID, -100000)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(0), newBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_AdjustBalance_Rejected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	adminID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE wallets SET balance").
		WithArgs(int64(-999999), adminID).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, applied, err := repo.AdjustBalance(context.Background(), tx, adminID, -999999)
	assert.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
