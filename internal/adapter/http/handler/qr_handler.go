package handler

import (
	"time"

	"qr-wallet-service/internal/adapter/http/dto"
	"qr-wallet-service/internal/core/domain"
	"qr-wallet-service/internal/core/ports"
	"qr-wallet-service/pkg/apperror"
	"qr-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QRHandler handles QR code lifecycle endpoints.
type QRHandler struct {
	qrSvc      ports.QRService
	custTxRepo ports.CustomerTransactionRepository
}

// NewQRHandler creates a new QRHandler.
func NewQRHandler(qrSvc ports.QRService, custTxRepo ports.CustomerTransactionRepository) *QRHandler {
	return &QRHandler{qrSvc: qrSvc, custTxRepo: custTxRepo}
}

// Generate handles POST /api/v1/qr/generate.
func (h *QRHandler) Generate(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.GenerateQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.qrSvc.Issue(c.Request.Context(), adminID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.GenerateQRResponse{
		QRCodeResponse: toQRResponse(result.QR),
		Image:          result.Image,
	})
}

// Scan handles POST /api/v1/qr/scan.
func (h *QRHandler) Scan(c *gin.Context) {
	var req dto.ScanQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	qrID, err := uuid.Parse(req.QRID)
	if err != nil {
		response.Error(c, apperror.Validation("qr_id must be a valid UUID"))
		return
	}

	custTx, err := h.qrSvc.Redeem(c.Request.Context(), qrID, req.CustomerID, req.Payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toCustomerTxResponse(custTx))
}

// Deactivate handles PUT /api/v1/qr/:id/deactivate.
func (h *QRHandler) Deactivate(c *gin.Context) {
	requesterID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	role, ok := callerRole(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	qrID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid UUID"))
		return
	}

	if err := h.qrSvc.Deactivate(c.Request.Context(), qrID, requesterID, role); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"deactivated": true})
}

// List handles GET /api/v1/qr.
func (h *QRHandler) List(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	codes, err := h.qrSvc.ListByAdmin(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toQRResponses(codes))
}

// ListActive handles GET /api/v1/qr/active.
func (h *QRHandler) ListActive(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	codes, err := h.qrSvc.ListActiveByAdmin(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toQRResponses(codes))
}

// ListTransactions handles GET /api/v1/qr/transactions.
func (h *QRHandler) ListTransactions(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txns, err := h.custTxRepo.ListByAdmin(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	items := make([]dto.CustomerTransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toCustomerTxResponse(&txns[i]))
	}
	response.OK(c, items)
}

// GetStats handles GET /api/v1/qr/stats.
func (h *QRHandler) GetStats(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	stats, err := h.qrSvc.GetStats(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.QRStatsResponse{
		TotalAmountIssued: stats.TotalAmountIssued,
		Total:             stats.Total,
		Active:            stats.Active,
		Inactive:          stats.Inactive,
	})
}

func toQRResponse(qr *domain.QRCode) dto.QRCodeResponse {
	return dto.QRCodeResponse{
		ID:        qr.ID.String(),
		Amount:    qr.Amount,
		IsActive:  qr.IsActive,
		CreatedAt: qr.CreatedAt.Format(time.RFC3339),
	}
}

func toQRResponses(codes []domain.QRCode) []dto.QRCodeResponse {
	items := make([]dto.QRCodeResponse, 0, len(codes))
	for i := range codes {
		items = append(items, toQRResponse(&codes[i]))
	}
	return items
}

func toCustomerTxResponse(ct *domain.CustomerTransaction) dto.CustomerTransactionResponse {
	return dto.CustomerTransactionResponse{
		ID:         ct.ID.String(),
		CustomerID: ct.CustomerID,
		QRID:       ct.QRID.String(),
		Amount:     ct.Amount,
		CreatedAt:  ct.CreatedAt.Format(time.RFC3339),
	}
}
