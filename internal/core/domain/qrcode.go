package domain

import (
	"time"

	"github.com/google/uuid"
)

// QRCode is a single-use voucher for a fixed amount. The amount is frozen
// at issuance and the wallet is debited before the row exists, so an
// active row is always funded. IsActive flips true→false exactly once,
// either by redemption or by explicit deactivation.
type QRCode struct {
	ID        uuid.UUID `json:"id"`
	AdminID   uuid.UUID `json:"admin_id"`
	Amount    int64     `json:"amount"`
	Payload   string    `json:"-"` // AES-256-GCM encrypted JSON{admin_id, amount, issued_at}
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomerTransaction records one redemption. Created only as a side
// effect of a successful scan; immutable; at most one per QR code.
type CustomerTransaction struct {
	ID         uuid.UUID `json:"id"`
	CustomerID string    `json:"customer_id"` // opaque external identifier
	QRID       uuid.UUID `json:"qr_id"`
	Amount     int64     `json:"amount"` // copied from the QR row at redemption
	CreatedAt  time.Time `json:"created_at"`
}

// QRPayload is the plaintext embedded in the encrypted QR payload.
type QRPayload struct {
	AdminID  uuid.UUID `json:"admin_id"`
	Amount   int64     `json:"amount"`
	IssuedAt time.Time `json:"issued_at"`
}

// Matches reports whether the decrypted payload agrees with the stored row.
func (p QRPayload) Matches(qr *QRCode) bool {
	return p.AdminID == qr.AdminID && p.Amount == qr.Amount
}
