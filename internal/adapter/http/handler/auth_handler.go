package handler

import (
	"net/http"
	"time"

	"qr-wallet-service/internal/adapter/http/dto"
	"qr-wallet-service/internal/adapter/http/middleware"
	"qr-wallet-service/internal/core/domain"
	"qr-wallet-service/internal/core/ports"
	"qr-wallet-service/pkg/apperror"
	"qr-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler handles authentication and account management endpoints.
type AuthHandler struct {
	authSvc ports.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Token:  result.Token,
		Expiry: result.ExpiresAt.Unix(),
		User:   toUserResponse(result.User),
	})
}

// CreateAdmin handles POST /api/v1/auth/admins. Superadmin only.
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	creatorID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	user, err := h.authSvc.CreateAdmin(c.Request.Context(), ports.CreateAdminRequest{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		CompanyName: req.CompanyName,
		CreatorID:   creatorID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toUserResponse(user))
}

// HealthCheck handles GET /health — deep health check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

// callerID extracts the authenticated user's id from the gin context.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

// callerRole extracts the authenticated user's role from the gin context.
func callerRole(c *gin.Context) (domain.Role, bool) {
	val, ok := c.Get(middleware.CtxUserRole)
	if !ok {
		return "", false
	}
	role, ok := val.(domain.Role)
	return role, ok
}

func toUserResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID.String(),
		Role:        string(u.Role),
		Name:        u.Name,
		Email:       u.Email,
		CompanyName: u.CompanyName,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}
