package service

import (
	"context"
	"fmt"

	"qr-wallet-service/internal/core/ports"
	"qr-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(walletRepo ports.WalletRepository, log zerolog.Logger) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		log:        log,
	}
}

// AdjustBalance applies delta inside the caller's transaction. The repo's
// conditional UPDATE either applies the full delta or touches nothing; when
// it touches nothing this method distinguishes a missing wallet from an
// overdraw to map the right error.
func (s *WalletServiceImpl) AdjustBalance(ctx context.Context, tx pgx.Tx, adminID uuid.UUID, delta int64) (int64, error) {
	newBalance, applied, err := s.walletRepo.AdjustBalance(ctx, tx, adminID, delta)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("adjust balance: %w", err))
	}
	if applied {
		return newBalance, nil
	}

	wallet, err := s.walletRepo.GetByAdminID(ctx, adminID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("check wallet: %w", err))
	}
	if wallet == nil {
		return 0, apperror.ErrWalletNotFound()
	}
	return 0, apperror.ErrInsufficientFunds()
}

// GetBalance returns the latest committed balance for the admin's wallet.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, adminID uuid.UUID) (int64, error) {
	wallet, err := s.walletRepo.GetByAdminID(ctx, adminID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return 0, apperror.ErrWalletNotFound()
	}
	return wallet.Balance, nil
}
