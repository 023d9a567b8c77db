package service

import (
	"context"
	"fmt"
	"time"

	"qr-wallet-service/internal/core/domain"
	"qr-wallet-service/internal/core/ports"
	"qr-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentOrderServiceImpl implements ports.PaymentOrderService.
type PaymentOrderServiceImpl struct {
	orderRepo  ports.PaymentOrderRepository
	walletSvc  ports.WalletService
	gateway    ports.PaymentGateway
	transactor ports.DBTransactor
	currency   string
	log        zerolog.Logger
}

// NewPaymentOrderService creates a new PaymentOrderServiceImpl.
func NewPaymentOrderService(
	orderRepo ports.PaymentOrderRepository,
	walletSvc ports.WalletService,
	gateway ports.PaymentGateway,
	transactor ports.DBTransactor,
	currency string,
	log zerolog.Logger,
) *PaymentOrderServiceImpl {
	return &PaymentOrderServiceImpl{
		orderRepo:  orderRepo,
		walletSvc:  walletSvc,
		gateway:    gateway,
		transactor: transactor,
		currency:   currency,
		log:        log,
	}
}

// CreateOrder registers a top-up with the payment gateway and records it as
// PENDING. The wallet is not touched until verification succeeds.
func (s *PaymentOrderServiceImpl) CreateOrder(ctx context.Context, adminID uuid.UUID, amount int64) (*domain.PaymentOrder, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	receipt := fmt.Sprintf("topup-%s", uuid.New().String()[:13])
	orderID, err := s.gateway.CreateOrder(ctx, amount, s.currency, receipt)
	if err != nil {
		return nil, err
	}

	order := &domain.PaymentOrder{
		ID:        uuid.New(),
		OrderID:   orderID,
		AdminID:   adminID,
		Amount:    amount,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payment order: %w", err))
	}

	s.log.Info().
		Str("order_id", orderID).
		Str("admin_id", adminID.String()).
		Int64("amount", amount).
		Msg("payment order created")

	return order, nil
}

// VerifyAndSettle moves a PENDING order to SUCCESS and credits the wallet in
// one transaction. The conditional status update is the double-credit guard:
// a repeated verify call matches zero rows and reports a conflict instead of
// crediting again.
func (s *PaymentOrderServiceImpl) VerifyAndSettle(ctx context.Context, orderID string) (*ports.SettleResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	order, err := s.orderRepo.SettleIfPending(ctx, dbTx, orderID, time.Now().UTC())
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("settle order: %w", err))
	}
	if order == nil {
		// Nothing to settle; release the transaction before the
		// diagnostic read so the unit never spans two sessions.
		_ = dbTx.Rollback(ctx)
		existing, err := s.orderRepo.GetByOrderID(ctx, orderID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get order: %w", err))
		}
		if existing == nil {
			return nil, apperror.ErrOrderNotFound()
		}
		return nil, apperror.ErrOrderAlreadyProcessed()
	}

	newBalance, err := s.walletSvc.AdjustBalance(ctx, dbTx, order.AdminID, order.Amount)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("order_id", orderID).
		Str("admin_id", order.AdminID.String()).
		Int64("amount", order.Amount).
		Int64("balance", newBalance).
		Msg("payment order settled")

	return &ports.SettleResult{Order: order, WalletBalance: newBalance}, nil
}

// MarkFailed moves a PENDING order to FAILED. No wallet mutation occurs.
func (s *PaymentOrderServiceImpl) MarkFailed(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	order, err := s.orderRepo.FailIfPending(ctx, orderID, time.Now().UTC())
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fail order: %w", err))
	}
	if order == nil {
		existing, err := s.orderRepo.GetByOrderID(ctx, orderID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get order: %w", err))
		}
		if existing == nil {
			return nil, apperror.ErrOrderNotFound()
		}
		return nil, apperror.ErrOrderAlreadyProcessed()
	}

	s.log.Info().
		Str("order_id", orderID).
		Str("admin_id", order.AdminID.String()).
		Msg("payment order marked failed")

	return order, nil
}

// ListByAdmin returns an admin's payment orders.
func (s *PaymentOrderServiceImpl) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.PaymentOrder, error) {
	orders, err := s.orderRepo.ListByAdmin(ctx, adminID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list payment orders: %w", err))
	}
	return orders, nil
}

// GetStats aggregates an admin's top-up orders.
func (s *PaymentOrderServiceImpl) GetStats(ctx context.Context, adminID uuid.UUID) (*ports.PaymentOrderStats, error) {
	stats, err := s.orderRepo.GetStats(ctx, adminID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get order stats: %w", err))
	}
	return stats, nil
}
