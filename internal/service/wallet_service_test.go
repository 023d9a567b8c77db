package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"qr-wallet-service/internal/core/domain"
	"qr-wallet-service/internal/core/ports/mocks"
	"qr-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

// txRecorder tracks whether the service committed or rolled back.
type txRecorder struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *txRecorder) Commit(_ context.Context) error   { t.committed = true; return nil }
func (t *txRecorder) Rollback(_ context.Context) error { t.rolledBack = true; return nil }

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestWalletService_AdjustBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	svc := NewWalletService(walletRepo, zerolog.Nop())

	ctx := context.Background()
	adminID := uuid.New()
	tx := &mockTx{}

	t.Run("applies delta", func(t *testing.T) {
		walletRepo.EXPECT().AdjustBalance(ctx, tx, adminID, int64(-30000)).Return(int64(70000), true, nil)

		balance, err := svc.AdjustBalance(ctx, tx, adminID, -30000)
		require.NoError(t, err)
		assert.Equal(t, int64(70000), balance)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		walletRepo.EXPECT().AdjustBalance(ctx, tx, adminID, int64(-999999)).Return(int64(0), false, nil)
		walletRepo.EXPECT().GetByAdminID(ctx, adminID).Return(&domain.Wallet{
			ID: uuid.New(), AdminID: adminID, Balance: 100,
		}, nil)

		_, err := svc.AdjustBalance(ctx, tx, adminID, -999999)
		requireAppError(t, err, "WALLET_001")
	})

	t.Run("wallet not found", func(t *testing.T) {
		walletRepo.EXPECT().AdjustBalance(ctx, tx, adminID, int64(-100)).Return(int64(0), false, nil)
		walletRepo.EXPECT().GetByAdminID(ctx, adminID).Return(nil, nil)

		_, err := svc.AdjustBalance(ctx, tx, adminID, -100)
		requireAppError(t, err, "WALLET_002")
	})

	t.Run("repo error", func(t *testing.T) {
		walletRepo.EXPECT().AdjustBalance(ctx, tx, adminID, int64(100)).Return(int64(0), false, errors.New("db down"))

		_, err := svc.AdjustBalance(ctx, tx, adminID, 100)
		requireAppError(t, err, "SYS_001")
	})
}

func TestWalletService_GetBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	svc := NewWalletService(walletRepo, zerolog.Nop())

	ctx := context.Background()
	adminID := uuid.New()

	t.Run("returns balance", func(t *testing.T) {
		walletRepo.EXPECT().GetByAdminID(ctx, adminID).Return(&domain.Wallet{
			ID:        uuid.New(),
			AdminID:   adminID,
			Balance:   250000,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}, nil)

		balance, err := svc.GetBalance(ctx, adminID)
		require.NoError(t, err)
		assert.Equal(t, int64(250000), balance)
	})

	t.Run("wallet not found", func(t *testing.T) {
		walletRepo.EXPECT().GetByAdminID(ctx, adminID).Return(nil, nil)

		_, err := svc.GetBalance(ctx, adminID)
		requireAppError(t, err, "WALLET_002")
	})
}
