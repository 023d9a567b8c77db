package postgres

import (
	"context"
	"errors"
	"fmt"

	"qr-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new operator account within the caller's transaction.
// A unique-constraint violation on email surfaces as
// domain.ErrDuplicateEmail so concurrent registrations map to a conflict.
func (r *UserRepo) Create(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	query := `INSERT INTO users (id, role, name, email, phone, password_hash, company_name, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		u.ID, u.Role, u.Name, u.Email, u.Phone,
		u.PasswordHash, u.CompanyName, u.CreatedBy, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("insert user: %w", domain.ErrDuplicateEmail)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by UUID. Returns nil, nil if absent.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, role, name, email, phone, password_hash, company_name, created_by, created_at
		FROM users WHERE id = $1`

	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches a user by email. Returns nil, nil if absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, role, name, email, phone, password_hash, company_name, created_by, created_at
		FROM users WHERE email = $1`

	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepo) scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(
		&u.ID, &u.Role, &u.Name, &u.Email, &u.Phone,
		&u.PasswordHash, &u.CompanyName, &u.CreatedBy, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
