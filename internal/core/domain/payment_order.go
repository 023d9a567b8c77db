package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of a payment order.
// Transitions are one-directional: PENDING→SUCCESS or PENDING→FAILED.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusSuccess OrderStatus = "SUCCESS"
	OrderStatusFailed  OrderStatus = "FAILED"
)

// PaymentOrder tracks one wallet top-up attempt against the external
// payment gateway. OrderID is the opaque gateway-issued identifier.
type PaymentOrder struct {
	ID          uuid.UUID   `json:"id"`
	OrderID     string      `json:"order_id"`
	AdminID     uuid.UUID   `json:"admin_id"`
	Amount      int64       `json:"amount"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	ProcessedAt *time.Time  `json:"processed_at,omitempty"`
}

// IsTerminal returns true once the order can no longer change state.
func (o *PaymentOrder) IsTerminal() bool {
	return o.Status == OrderStatusSuccess || o.Status == OrderStatusFailed
}
