package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds an admin's prepaid balance in minor currency units.
// The balance is never negative; every mutation is a delta applied by a
// single conditional UPDATE, never an overwrite.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	AdminID   uuid.UUID `json:"admin_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
