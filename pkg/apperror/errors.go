package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication & Authorization (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid email or password", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden(message string) *AppError {
	return New("AUTH_003", message, http.StatusForbidden)
}

func ErrEmailExists() *AppError {
	return New("AUTH_004", "Email already registered", http.StatusConflict)
}

// ---- Wallet (WALLET) ----

func ErrInsufficientFunds() *AppError {
	return New("WALLET_001", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrWalletNotFound() *AppError {
	return New("WALLET_002", "Wallet not found", http.StatusNotFound)
}

// ---- QR Codes (QR) ----

func ErrQRNotFound() *AppError {
	return New("QR_001", "QR code not found", http.StatusNotFound)
}

func ErrQRAlreadyRedeemed() *AppError {
	return New("QR_002", "QR code is no longer active", http.StatusConflict)
}

func ErrInvalidQRPayload() *AppError {
	return New("QR_003", "QR payload is invalid or does not match", http.StatusBadRequest)
}

// ---- Payment Orders (ORDER) ----

func ErrOrderNotFound() *AppError {
	return New("ORDER_001", "Payment order not found", http.StatusNotFound)
}

func ErrOrderAlreadyProcessed() *AppError {
	return New("ORDER_002", "Payment order already processed", http.StatusConflict)
}

// ---- Validation (VAL) ----

func ErrInvalidAmount() *AppError {
	return New("VAL_001", "Amount must be positive", http.StatusBadRequest)
}

// Validation returns a VAL_002 error with a caller-supplied message.
func Validation(message string) *AppError {
	return New("VAL_002", message, http.StatusBadRequest)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Too many requests", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error; the message is never exposed.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_002", "Encryption service failure", http.StatusInternalServerError, err)
}

func ErrGatewayFailure(err error) *AppError {
	return Wrap("SYS_003", "Payment gateway unavailable", http.StatusBadGateway, err)
}
