package handler

import (
	"remitchat/internal/adapter/http/dto"
	"remitchat/internal/adapter/http/middleware"
	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports"
	"remitchat/pkg/apperror"
	"remitchat/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment request endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// Pay handles POST /api/v1/threads/:threadID/requests/:requestID/pay.
func (h *PaymentHandler) Pay(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken(nil))
		return
	}

	threadID, requestID, err := pathIDs(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.paymentSvc.Pay(c.Request.Context(), threadID, requestID, userID, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PayResponse{
		Request:     toRequestResponse(result.Request),
		Transaction: toTransactionResponse(result.Transaction),
	})
}

// Cancel handles POST /api/v1/threads/:threadID/requests/:requestID/cancel.
func (h *PaymentHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken(nil))
		return
	}

	threadID, requestID, err := pathIDs(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	request, err := h.paymentSvc.Cancel(c.Request.Context(), threadID, requestID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toRequestResponse(request))
}

// pathIDs parses the thread and request ids from the route.
func pathIDs(c *gin.Context) (uuid.UUID, uuid.UUID, error) {
	threadID, err := uuid.Parse(c.Param("threadID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.Validation("invalid thread id")
	}
	requestID, err := uuid.Parse(c.Param("requestID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.Validation("invalid request id")
	}
	return threadID, requestID, nil
}

// toRequestResponse converts domain.PaymentRequest to DTO.
func toRequestResponse(r *domain.PaymentRequest) dto.PaymentRequestResponse {
	resp := dto.PaymentRequestResponse{
		ID:          r.ID.String(),
		ThreadID:    r.ThreadID.String(),
		RequesterID: r.RequesterID.String(),
		TargetID:    r.TargetID.String(),
		Amount:      r.Amount,
		Note:        r.Note,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if r.PaidAt != nil {
		s := r.PaidAt.Format("2006-01-02T15:04:05Z07:00")
		resp.PaidAt = &s
	}
	if r.PaidByUserID != nil {
		s := r.PaidByUserID.String()
		resp.PaidByUserID = &s
	}
	resp.PaidTxHash = r.PaidTxHash
	if r.CancelledAt != nil {
		s := r.CancelledAt.Format("2006-01-02T15:04:05Z07:00")
		resp.CancelledAt = &s
	}
	return resp
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:         tx.ID.String(),
		SenderID:   tx.SenderID.String(),
		ReceiverID: tx.ReceiverID.String(),
		Amount:     tx.Amount,
		Status:     string(tx.Status),
		TxHash:     tx.TxHash,
		CreatedAt:  tx.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if tx.ProcessedAt != nil {
		s := tx.ProcessedAt.Format("2006-01-02T15:04:05Z07:00")
		resp.ProcessedAt = &s
	}
	return resp
}
