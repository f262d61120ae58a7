package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus represents the lifecycle state of a payment request.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusProcessing RequestStatus = "PROCESSING"
	RequestStatusPaid       RequestStatus = "PAID"
	RequestStatusCancelled  RequestStatus = "CANCELLED"
)

// PaymentRequest is a requested transfer between the two thread
// participants. Status transitions are single-record conditional
// updates: pending→processing→paid, pending→cancelled, and the
// compensating processing→pending rollback.
type PaymentRequest struct {
	ID                uuid.UUID     `json:"id"`
	ThreadID          uuid.UUID     `json:"thread_id"`
	RequesterID       uuid.UUID     `json:"requester_id"`
	TargetID          uuid.UUID     `json:"target_id"`
	Amount            int64         `json:"amount"` // smallest asset unit
	Note              string        `json:"note,omitempty"`
	Status            RequestStatus `json:"status"`
	ProcessingAt      *time.Time    `json:"processing_at,omitempty"`
	PaidAt            *time.Time    `json:"paid_at,omitempty"`
	PaidByUserID      *uuid.UUID    `json:"paid_by_user_id,omitempty"`
	PaidTransactionID *uuid.UUID    `json:"paid_transaction_id,omitempty"`
	PaidTxHash        *string       `json:"paid_tx_hash,omitempty"`
	CancelledAt       *time.Time    `json:"cancelled_at,omitempty"`
	CancelledByUserID *uuid.UUID    `json:"cancelled_by_user_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// IsTerminal returns true if no further transitions are possible.
func (r *PaymentRequest) IsTerminal() bool {
	return r.Status == RequestStatusPaid || r.Status == RequestStatusCancelled
}
