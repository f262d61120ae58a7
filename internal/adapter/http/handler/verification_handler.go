package handler

import (
	"net/http"

	"remitchat/internal/adapter/http/dto"
	"remitchat/internal/adapter/http/middleware"
	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports"
	"remitchat/pkg/apperror"
	"remitchat/pkg/response"

	"github.com/gin-gonic/gin"
)

// VerificationHandler handles verification code endpoints.
type VerificationHandler struct {
	verificationSvc ports.VerificationService
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(verificationSvc ports.VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationSvc: verificationSvc}
}

// IssueCode handles POST /api/v1/verification/codes.
func (h *VerificationHandler) IssueCode(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken(nil))
		return
	}

	var req dto.IssueCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.verificationSvc.Issue(c.Request.Context(), userID, domain.Channel(req.Channel))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.IssueCodeResponse{
		MaskedDestination: result.MaskedDestination,
		Channel:           string(result.Channel),
		ExpiresIn:         int64(result.ExpiresIn.Seconds()),
	})
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
