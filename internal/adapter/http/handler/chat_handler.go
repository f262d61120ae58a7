package handler

import (
	"strconv"

	"remitchat/internal/adapter/http/dto"
	"remitchat/internal/adapter/http/middleware"
	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports"
	"remitchat/pkg/apperror"
	"remitchat/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultHistoryLimit = 50

// ChatHandler handles thread and message endpoints.
type ChatHandler struct {
	chatSvc ports.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatSvc ports.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// OpenThread handles POST /api/v1/threads.
func (h *ChatHandler) OpenThread(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken(nil))
		return
	}

	var req dto.OpenThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	peerID, err := uuid.Parse(req.PeerID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid peer id"))
		return
	}

	thread, err := h.chatSvc.OpenThread(c.Request.Context(), userID, peerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toThreadResponse(thread))
}

// GetHistory handles GET /api/v1/threads/:threadID/messages.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken(nil))
		return
	}

	threadID, err := uuid.Parse(c.Param("threadID"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid thread id"))
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			response.Error(c, apperror.Validation("invalid limit"))
			return
		}
	}

	views, err := h.chatSvc.GetHistory(c.Request.Context(), threadID, userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.MessageResponse, 0, len(views))
	for i := range views {
		items = append(items, toMessageResponse(&views[i]))
	}
	response.OK(c, dto.MessageListResponse{Items: items})
}

// AppendMessage handles POST /api/v1/threads/:threadID/messages.
func (h *ChatHandler) AppendMessage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken(nil))
		return
	}

	threadID, err := uuid.Parse(c.Param("threadID"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid thread id"))
		return
	}

	var req dto.AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	view, err := h.chatSvc.AppendMessage(c.Request.Context(), ports.AppendMessageInput{
		ThreadID:           threadID,
		SenderID:           userID,
		Type:               domain.MessageType(req.Type),
		CipherForSender:    toDomainCipher(req.CipherForSender),
		CipherForRecipient: toDomainCipher(req.CipherForRecipient),
		RequestAmount:      req.Amount,
		RequestNote:        req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toMessageResponse(view))
}

// ReportThread handles POST /api/v1/threads/:threadID/report.
func (h *ChatHandler) ReportThread(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken(nil))
		return
	}

	threadID, err := uuid.Parse(c.Param("threadID"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid thread id"))
		return
	}

	var req dto.ReportThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	report, err := h.chatSvc.ReportThread(c.Request.Context(), ports.ReportThreadInput{
		ThreadID:   threadID,
		ReporterID: userID,
		Reason:     req.Reason,
		Excerpts:   req.Excerpts,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ReportResponse{
		ID:         report.ID.String(),
		ThreadID:   report.ThreadID.String(),
		ReporterID: report.ReporterID.String(),
		ReportedID: report.ReportedID.String(),
		CreatedAt:  report.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// toThreadResponse converts domain.Thread to DTO.
func toThreadResponse(t *domain.Thread) dto.ThreadResponse {
	return dto.ThreadResponse{
		ID:            t.ID.String(),
		ParticipantA:  t.ParticipantA.String(),
		ParticipantB:  t.ParticipantB.String(),
		CreatedAt:     t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		LastMessageAt: t.LastMessageAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// toMessageResponse converts a viewer projection to DTO.
func toMessageResponse(v *ports.MessageView) dto.MessageResponse {
	resp := dto.MessageResponse{
		ID:          v.ID.String(),
		ThreadID:    v.ThreadID.String(),
		SenderID:    v.SenderID.String(),
		RecipientID: v.RecipientID.String(),
		Type:        string(v.Type),
		Cipher: dto.CipherPayload{
			Ciphertext: v.Cipher.Ciphertext,
			IV:         v.Cipher.IV,
			WrappedKey: v.Cipher.WrappedKey,
		},
		CreatedAt: v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if v.Request != nil {
		req := toRequestResponse(v.Request)
		resp.Request = &req
	}
	return resp
}

func toDomainCipher(p dto.CipherPayload) domain.CipherPayload {
	return domain.CipherPayload{
		Ciphertext: p.Ciphertext,
		IV:         p.IV,
		WrappedKey: p.WrappedKey,
	}
}
