package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"qr-wallet-service/internal/core/domain"
	"qr-wallet-service/internal/core/ports"
	"qr-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// qrImagePayload is the JSON rendered into the QR PNG: the row id plus the
// encrypted payload token.
type qrImagePayload struct {
	QRID    uuid.UUID `json:"qr_id"`
	Payload string    `json:"payload"`
}

// QRServiceImpl implements ports.QRService.
type QRServiceImpl struct {
	qrRepo     ports.QRRepository
	custTxRepo ports.CustomerTransactionRepository
	walletSvc  ports.WalletService
	encSvc     ports.EncryptionService
	imgEncoder ports.QRImageEncoder
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewQRService creates a new QRServiceImpl.
func NewQRService(
	qrRepo ports.QRRepository,
	custTxRepo ports.CustomerTransactionRepository,
	walletSvc ports.WalletService,
	encSvc ports.EncryptionService,
	imgEncoder ports.QRImageEncoder,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *QRServiceImpl {
	return &QRServiceImpl{
		qrRepo:     qrRepo,
		custTxRepo: custTxRepo,
		walletSvc:  walletSvc,
		encSvc:     encSvc,
		imgEncoder: imgEncoder,
		transactor: transactor,
		log:        log,
	}
}

// Issue debits the admin's wallet and creates an active QR code in one
// transaction, so an active row is always funded. The PNG is rendered after
// commit; a render failure leaves a valid issued code behind.
func (s *QRServiceImpl) Issue(ctx context.Context, adminID uuid.UUID, amount int64) (*ports.IssueResult, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	now := time.Now().UTC()
	plaintext, err := json.Marshal(domain.QRPayload{
		AdminID:  adminID,
		Amount:   amount,
		IssuedAt: now,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal payload: %w", err))
	}

	payload, err := s.encSvc.Encrypt(string(plaintext))
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt payload: %w", err))
	}

	qr := &domain.QRCode{
		ID:        uuid.New(),
		AdminID:   adminID,
		Amount:    amount,
		Payload:   payload,
		IsActive:  true,
		CreatedAt: now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if _, err := s.walletSvc.AdjustBalance(ctx, dbTx, adminID, -amount); err != nil {
		return nil, err
	}

	if err := s.qrRepo.Create(ctx, dbTx, qr); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create qr: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	image, err := s.renderImage(qr)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("qr_id", qr.ID.String()).
		Str("admin_id", adminID.String()).
		Int64("amount", amount).
		Msg("qr code issued")

	return &ports.IssueResult{QR: qr, Image: image}, nil
}

// Redeem transfers a QR code's value to a customer exactly once. The
// conditional is_active flip is the single-use gate: under concurrent scans
// exactly one caller wins, the rest get a conflict.
func (s *QRServiceImpl) Redeem(ctx context.Context, qrID uuid.UUID, customerID string, presentedPayload string) (*domain.CustomerTransaction, error) {
	if customerID == "" {
		return nil, apperror.Validation("customer_id is required")
	}

	qr, err := s.qrRepo.GetByID(ctx, qrID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get qr: %w", err))
	}
	if qr == nil {
		return nil, apperror.ErrQRNotFound()
	}

	// A presented payload must decrypt and agree with the stored row.
	// Scanning apps that only send the id skip this check.
	if presentedPayload != "" {
		plaintext, err := s.encSvc.Decrypt(presentedPayload)
		if err != nil {
			return nil, apperror.ErrInvalidQRPayload()
		}
		var payload domain.QRPayload
		if err := json.Unmarshal([]byte(plaintext), &payload); err != nil {
			return nil, apperror.ErrInvalidQRPayload()
		}
		if !payload.Matches(qr) {
			return nil, apperror.ErrInvalidQRPayload()
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	flipped, err := s.qrRepo.MarkInactive(ctx, dbTx, qrID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark inactive: %w", err))
	}
	if !flipped {
		return nil, apperror.ErrQRAlreadyRedeemed()
	}

	custTx := &domain.CustomerTransaction{
		ID:         uuid.New(),
		CustomerID: customerID,
		QRID:       qr.ID,
		Amount:     qr.Amount, // stored amount, never client input
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.custTxRepo.Create(ctx, dbTx, custTx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create customer transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("qr_id", qr.ID.String()).
		Str("customer_id", customerID).
		Int64("amount", qr.Amount).
		Msg("qr code redeemed")

	return custTx, nil
}

// Deactivate disables a QR code without creating a redemption. Admins may
// only deactivate their own codes; superadmins may deactivate any.
// Deactivating an already-inactive code is a no-op success.
func (s *QRServiceImpl) Deactivate(ctx context.Context, qrID uuid.UUID, requesterID uuid.UUID, role domain.Role) error {
	qr, err := s.qrRepo.GetByID(ctx, qrID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get qr: %w", err))
	}
	if qr == nil {
		return apperror.ErrQRNotFound()
	}

	if role != domain.RoleSuperAdmin && qr.AdminID != requesterID {
		return apperror.ErrForbidden("cannot deactivate another admin's QR code")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	flipped, err := s.qrRepo.MarkInactive(ctx, dbTx, qrID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("mark inactive: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if flipped {
		s.log.Info().
			Str("qr_id", qrID.String()).
			Str("requester_id", requesterID.String()).
			Msg("qr code deactivated")
	}
	return nil
}

// ListByAdmin returns all of an admin's QR codes.
func (s *QRServiceImpl) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.QRCode, error) {
	codes, err := s.qrRepo.ListByAdmin(ctx, adminID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list qr codes: %w", err))
	}
	return codes, nil
}

// ListActiveByAdmin returns an admin's still-active QR codes.
func (s *QRServiceImpl) ListActiveByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.QRCode, error) {
	codes, err := s.qrRepo.ListActiveByAdmin(ctx, adminID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list active qr codes: %w", err))
	}
	return codes, nil
}

// GetStats aggregates an admin's issued QR codes.
func (s *QRServiceImpl) GetStats(ctx context.Context, adminID uuid.UUID) (*ports.QRStats, error) {
	stats, err := s.qrRepo.GetStats(ctx, adminID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get qr stats: %w", err))
	}
	return stats, nil
}

func (s *QRServiceImpl) renderImage(qr *domain.QRCode) (string, error) {
	content, err := json.Marshal(qrImagePayload{QRID: qr.ID, Payload: qr.Payload})
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("marshal image payload: %w", err))
	}

	image, err := s.imgEncoder.Encode(string(content))
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("encode qr image: %w", err))
	}
	return image, nil
}
