package handler

import (
	"remitchat/internal/adapter/http/dto"
	"remitchat/internal/adapter/http/middleware"
	"remitchat/internal/core/domain"
	"remitchat/pkg/apperror"
	"remitchat/pkg/response"

	"remitchat/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DirectoryHandler handles public key directory endpoints.
type DirectoryHandler struct {
	directorySvc ports.DirectoryService
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(directorySvc ports.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directorySvc: directorySvc}
}

// PublishKey handles PUT /api/v1/keys.
func (h *DirectoryHandler) PublishKey(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken(nil))
		return
	}

	var req dto.PublishKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	record, err := h.directorySvc.PublishKey(c.Request.Context(), userID, req.PublicKeyPEM, req.HashAlg)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPublicKeyResponse(record))
}

// LookupKey handles GET /api/v1/keys/:userID.
func (h *DirectoryHandler) LookupKey(c *gin.Context) {
	requesterID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken(nil))
		return
	}

	targetID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	record, err := h.directorySvc.LookupKey(c.Request.Context(), requesterID, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPublicKeyResponse(record))
}

// toPublicKeyResponse converts domain.PublicKeyRecord to DTO.
func toPublicKeyResponse(r *domain.PublicKeyRecord) dto.PublicKeyResponse {
	return dto.PublicKeyResponse{
		UserID:       r.UserID.String(),
		PublicKeyPEM: r.PublicKey,
		HashAlg:      r.HashAlg,
		Fingerprint:  r.Fingerprint,
		UpdatedAt:    r.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
