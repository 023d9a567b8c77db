package handler

import (
	"time"

	"qr-wallet-service/internal/adapter/http/dto"
	"qr-wallet-service/internal/core/domain"
	"qr-wallet-service/internal/core/ports"
	"qr-wallet-service/pkg/apperror"
	"qr-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles top-up order endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentOrderService
	walletSvc  ports.WalletService
	currency   string
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentOrderService, walletSvc ports.WalletService, currency string) *PaymentHandler {
	return &PaymentHandler{
		paymentSvc: paymentSvc,
		walletSvc:  walletSvc,
		currency:   currency,
	}
}

// CreateOrder handles POST /api/v1/payments/orders.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	order, err := h.paymentSvc.CreateOrder(c.Request.Context(), adminID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, h.toOrderResponse(order))
}

// VerifyOrder handles POST /api/v1/payments/verify.
func (h *PaymentHandler) VerifyOrder(c *gin.Context) {
	var req dto.VerifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.paymentSvc.VerifyAndSettle(c.Request.Context(), req.OrderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.SettleResponse{
		Order:         h.toOrderResponse(result.Order),
		WalletBalance: result.WalletBalance,
	})
}

// FailOrder handles POST /api/v1/payments/failure.
func (h *PaymentHandler) FailOrder(c *gin.Context) {
	var req dto.FailOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	order, err := h.paymentSvc.MarkFailed(c.Request.Context(), req.OrderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, h.toOrderResponse(order))
}

// ListOrders handles GET /api/v1/payments.
func (h *PaymentHandler) ListOrders(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	orders, err := h.paymentSvc.ListByAdmin(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PaymentOrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, h.toOrderResponse(&orders[i]))
	}
	response.OK(c, items)
}

// GetStats handles GET /api/v1/payments/stats.
func (h *PaymentHandler) GetStats(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	stats, err := h.paymentSvc.GetStats(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PaymentStatsResponse{
		Total:            stats.Total,
		Successful:       stats.Successful,
		Failed:           stats.Failed,
		Pending:          stats.Pending,
		TotalAmountAdded: stats.TotalAmountAdded,
		WalletBalance:    balance,
	})
}

func (h *PaymentHandler) toOrderResponse(order *domain.PaymentOrder) dto.PaymentOrderResponse {
	resp := dto.PaymentOrderResponse{
		ID:        order.ID.String(),
		OrderID:   order.OrderID,
		Amount:    order.Amount,
		Currency:  h.currency,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt.Format(time.RFC3339),
	}
	if order.ProcessedAt != nil {
		s := order.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	return resp
}
