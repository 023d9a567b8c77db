package postgres

import (
	"context"
	"testing"
	"time"

	"qr-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser() *domain.User {
	creator := uuid.New()
	return &domain.User{
		ID:           uuid.New(),
		Role:         domain.RoleAdmin,
		Name:         "Test Admin",
		Email:        "admin@example.com",
		Phone:        "+911234567890",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		CompanyName:  "Test Merchants Pvt Ltd",
		CreatedBy:    &creator,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func userColumns() []string {
	return []string{"id", "role", "name", "email", "phone", "password_hash", "company_name", "created_by", "created_at"}
}

func userRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns()).AddRow(
		u.ID, u.Role, u.Name, u.Email, u.Phone,
		u.PasswordHash, u.CompanyName, u.CreatedBy, u.CreatedAt,
	)
}

func TestUserRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Role, u.Name, u.Email, u.Phone,
			u.PasswordHash, u.CompanyName, u.CreatedBy, u.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Role, u.Name, u.Email, u.Phone,
			u.PasswordHash, u.CompanyName, u.CreatedBy, u.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, u)
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(u.ID).
		WillReturnRows(userRow(u))

	result, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, u.ID, result.ID)
	assert.Equal(t, u.Email, result.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE email").
		WithArgs(u.Email).
		WillReturnRows(userRow(u))

	result, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, u.Role, result.Role)
	assert.Equal(t, u.PasswordHash, result.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email").
		WithArgs("missing@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns()))

	result, err := repo.GetByEmail(context.Background(), "missing@example.com")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
