package ports

import (
	"context"
	"time"

	"qr-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EncryptionService handles AES-256-GCM encryption/decryption of QR payloads.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Role   domain.Role
}

// PaymentGateway is the external order-creation collaborator. It returns
// an opaque gateway-issued order identifier.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (string, error)
}

// QRImageEncoder renders a payload string as a displayable representation
// (base64 PNG data URL).
type QRImageEncoder interface {
	Encode(payload string) (string, error)
}

// --- Service Ports (Business Logic) ---

// WalletService owns balance mutation rules.
type WalletService interface {
	// AdjustBalance applies delta atomically inside the caller's
	// transaction. Negative deltas exceeding the balance fail with
	// insufficient funds and perform no mutation.
	AdjustBalance(ctx context.Context, tx pgx.Tx, adminID uuid.UUID, delta int64) (int64, error)
	// GetBalance returns the latest committed balance.
	GetBalance(ctx context.Context, adminID uuid.UUID) (int64, error)
}

// QRService is the QR code lifecycle engine.
type QRService interface {
	Issue(ctx context.Context, adminID uuid.UUID, amount int64) (*IssueResult, error)
	Redeem(ctx context.Context, qrID uuid.UUID, customerID string, presentedPayload string) (*domain.CustomerTransaction, error)
	Deactivate(ctx context.Context, qrID uuid.UUID, requesterID uuid.UUID, role domain.Role) error
	ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.QRCode, error)
	ListActiveByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.QRCode, error)
	GetStats(ctx context.Context, adminID uuid.UUID) (*QRStats, error)
}

// IssueResult is the outcome of issuing a QR code.
type IssueResult struct {
	QR    *domain.QRCode
	Image string // base64 PNG data URL embedding {qr_id, payload}
}

// PaymentOrderService is the payment order engine.
type PaymentOrderService interface {
	CreateOrder(ctx context.Context, adminID uuid.UUID, amount int64) (*domain.PaymentOrder, error)
	VerifyAndSettle(ctx context.Context, orderID string) (*SettleResult, error)
	MarkFailed(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.PaymentOrder, error)
	GetStats(ctx context.Context, adminID uuid.UUID) (*PaymentOrderStats, error)
}

// SettleResult is the outcome of a successful verify call.
type SettleResult struct {
	Order         *domain.PaymentOrder
	WalletBalance int64 // balance after the credit
}

// AuthService defines authentication and account management.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	CreateAdmin(ctx context.Context, req CreateAdminRequest) (*domain.User, error)
	// EnsureSuperAdmin creates the bootstrap superadmin if absent.
	EnsureSuperAdmin(ctx context.Context, name, email, password string) error
}

// LoginResult holds the issued token and user summary.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// CreateAdminRequest holds validated input for admin creation.
type CreateAdminRequest struct {
	Name        string
	Email       string
	Phone       string
	Password    string
	CompanyName string
	CreatorID   uuid.UUID
}
