package dto

// LoginRequest is the request body for operator login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string       `json:"token"`
	Expiry int64        `json:"expiry"` // Unix timestamp
	User   UserResponse `json:"user"`
}

// CreateAdminRequest is the request body for admin account creation.
type CreateAdminRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"max=20"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	CompanyName string `json:"company_name" binding:"max=100"`
}

// UserResponse is the public view of an operator account.
type UserResponse struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// WalletBalanceResponse is the response for a balance query.
type WalletBalanceResponse struct {
	Balance int64 `json:"balance"`
}

// CreateOrderRequest is the request body for creating a top-up order.
type CreateOrderRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// VerifyOrderRequest identifies the order to settle.
type VerifyOrderRequest struct {
	OrderID string `json:"order_id" binding:"required,max=100"`
}

// FailOrderRequest identifies the order to mark failed.
type FailOrderRequest struct {
	OrderID string `json:"order_id" binding:"required,max=100"`
}

// PaymentOrderResponse is the response body for a payment order.
type PaymentOrderResponse struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"order_id"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	ProcessedAt *string `json:"processed_at,omitempty"`
}

// SettleResponse is the response after a successful verification.
type SettleResponse struct {
	Order         PaymentOrderResponse `json:"order"`
	WalletBalance int64                `json:"wallet_balance"`
}

// PaymentStatsResponse aggregates an admin's top-up orders.
type PaymentStatsResponse struct {
	Total            int64 `json:"total"`
	Successful       int64 `json:"successful"`
	Failed           int64 `json:"failed"`
	Pending          int64 `json:"pending"`
	TotalAmountAdded int64 `json:"total_amount_added"`
	WalletBalance    int64 `json:"wallet_balance"`
}

// GenerateQRRequest is the request body for issuing a QR code.
type GenerateQRRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// QRCodeResponse is the public view of a QR code.
type QRCodeResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// GenerateQRResponse is the response body for a freshly issued QR code.
type GenerateQRResponse struct {
	QRCodeResponse
	Image string `json:"image"` // base64 PNG data URL
}

// ScanQRRequest is the request body for redeeming a QR code.
type ScanQRRequest struct {
	QRID       string `json:"qr_id" binding:"required,uuid"`
	CustomerID string `json:"customer_id" binding:"required,max=100,safe_id"`
	Payload    string `json:"payload,omitempty"`
}

// CustomerTransactionResponse records one redemption.
type CustomerTransactionResponse struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	QRID       string `json:"qr_id"`
	Amount     int64  `json:"amount"`
	CreatedAt  string `json:"created_at"`
}

// QRStatsResponse aggregates an admin's issued QR codes.
type QRStatsResponse struct {
	TotalAmountIssued int64 `json:"total_amount_issued"`
	Total             int64 `json:"total"`
	Active            int64 `json:"active"`
	Inactive          int64 `json:"inactive"`
}
