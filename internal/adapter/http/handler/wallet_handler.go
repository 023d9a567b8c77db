package handler

import (
	"qr-wallet-service/internal/adapter/http/dto"
	"qr-wallet-service/internal/core/ports"
	"qr-wallet-service/pkg/apperror"
	"qr-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// GetBalance handles GET /api/v1/wallets/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletBalanceResponse{Balance: balance})
}
