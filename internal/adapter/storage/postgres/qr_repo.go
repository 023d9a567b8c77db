package postgres

import (
	"context"
	"errors"
	"fmt"

	"qr-wallet-service/internal/core/domain"
	"qr-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// QRRepo implements ports.QRRepository.
type QRRepo struct {
	pool Pool
}

// NewQRRepo creates a new QRRepo.
func NewQRRepo(pool Pool) *QRRepo {
	return &QRRepo{pool: pool}
}

// Create inserts a new QR code within a database transaction, so the row
// commits together with the wallet debit that funds it.
func (r *QRRepo) Create(ctx context.Context, tx pgx.Tx, qr *domain.QRCode) error {
	query := `INSERT INTO qr_codes (id, admin_id, amount, payload, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		qr.ID, qr.AdminID, qr.Amount, qr.Payload, qr.IsActive, qr.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert qr code: %w", err)
	}
	return nil
}

// GetByID fetches a QR code by UUID. Returns nil, nil if absent.
func (r *QRRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.QRCode, error) {
	query := `SELECT id, admin_id, amount, payload, is_active, created_at
		FROM qr_codes WHERE id = $1`

	qr := &domain.QRCode{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&qr.ID, &qr.AdminID, &qr.Amount, &qr.Payload, &qr.IsActive, &qr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get qr code by id: %w", err)
	}
	return qr, nil
}

// MarkInactive conditionally flips is_active to false. The is_active
// predicate in the WHERE clause is the single-use gate: under concurrent
// redeem calls exactly one UPDATE matches.
func (r *QRRepo) MarkInactive(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `UPDATE qr_codes SET is_active = FALSE WHERE id = $1 AND is_active`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("mark qr inactive: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByAdmin fetches all QR codes issued by an admin, newest first.
func (r *QRRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.QRCode, error) {
	query := `SELECT id, admin_id, amount, payload, is_active, created_at
		FROM qr_codes WHERE admin_id = $1 ORDER BY created_at DESC`

	return r.list(ctx, query, adminID)
}

// ListActiveByAdmin fetches an admin's still-active QR codes, newest first.
func (r *QRRepo) ListActiveByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.QRCode, error) {
	query := `SELECT id, admin_id, amount, payload, is_active, created_at
		FROM qr_codes WHERE admin_id = $1 AND is_active ORDER BY created_at DESC`

	return r.list(ctx, query, adminID)
}

// GetStats aggregates an admin's issued QR codes.
func (r *QRRepo) GetStats(ctx context.Context, adminID uuid.UUID) (*ports.QRStats, error) {
	query := `SELECT
		COALESCE(SUM(amount), 0) AS total_amount,
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE is_active) AS active,
		COUNT(*) FILTER (WHERE NOT is_active) AS inactive
		FROM qr_codes WHERE admin_id = $1`

	stats := &ports.QRStats{}
	err := r.pool.QueryRow(ctx, query, adminID).Scan(
		&stats.TotalAmountIssued, &stats.Total, &stats.Active, &stats.Inactive,
	)
	if err != nil {
		return nil, fmt.Errorf("get qr stats: %w", err)
	}
	return stats, nil
}

func (r *QRRepo) list(ctx context.Context, query string, adminID uuid.UUID) ([]domain.QRCode, error) {
	rows, err := r.pool.Query(ctx, query, adminID)
	if err != nil {
		return nil, fmt.Errorf("list qr codes: %w", err)
	}
	defer rows.Close()

	var codes []domain.QRCode
	for rows.Next() {
		qr := domain.QRCode{}
		err := rows.Scan(&qr.ID, &qr.AdminID, &qr.Amount, &qr.Payload, &qr.IsActive, &qr.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan qr row: %w", err)
		}
		codes = append(codes, qr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate qr rows: %w", err)
	}
	return codes, nil
}
