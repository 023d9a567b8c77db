package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qr-wallet-service/internal/core/domain"
	"qr-wallet-service/internal/core/ports"
	"qr-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo   ports.UserRepository
	walletRepo ports.WalletRepository
	hashSvc    ports.HashService
	tokenSvc   ports.TokenService
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	walletRepo ports.WalletRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		hashSvc:    hashSvc,
		tokenSvc:   tokenSvc,
		transactor: transactor,
		log:        log,
	}
}

// Login validates credentials and returns a JWT token with the user's role.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return nil, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.tokenSvc.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return &ports.LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// CreateAdmin registers a new admin account with a zero-balance wallet.
// Only superadmins reach this method; the route guard enforces the role.
func (s *AuthServiceImpl) CreateAdmin(ctx context.Context, req ports.CreateAdminRequest) (*domain.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	creatorID := req.CreatorID
	user := &domain.User{
		ID:           uuid.New(),
		Role:         domain.RoleAdmin,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		CompanyName:  req.CompanyName,
		CreatedBy:    &creatorID,
		CreatedAt:    now,
	}

	// The user and its wallet are one atomic unit: an admin without a
	// wallet could log in but never transact, so neither row may exist
	// without the other.
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.userRepo.Create(ctx, dbTx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, apperror.ErrEmailExists()
		}
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	wallet := &domain.Wallet{
		ID:        uuid.New(),
		AdminID:   user.ID,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.Create(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("email", user.Email).
		Str("created_by", creatorID.String()).
		Msg("admin account created")

	return user, nil
}

// EnsureSuperAdmin creates the bootstrap superadmin account if no user with
// the given email exists. Called once at startup.
func (s *AuthServiceImpl) EnsureSuperAdmin(ctx context.Context, name, email, password string) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check superadmin: %w", err)
	}
	if existing != nil {
		return nil
	}

	passwordHash, err := s.hashSvc.Hash(password)
	if err != nil {
		return fmt.Errorf("hash superadmin password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Role:         domain.RoleSuperAdmin,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.userRepo.Create(ctx, dbTx, user); err != nil {
		// Lost a race against a concurrent boot of another instance.
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("create superadmin: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.log.Info().Str("email", email).Msg("bootstrap superadmin created")
	return nil
}
