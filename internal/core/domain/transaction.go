package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the lifecycle state of a settlement attempt.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is an append-only record of one settlement attempt.
// It is created with status PENDING before the external transfer call
// and transitions to SUCCESS or FAILED; rows are never deleted.
type Transaction struct {
	ID             uuid.UUID         `json:"id"`
	SenderID       uuid.UUID         `json:"sender_id"`
	ReceiverID     uuid.UUID         `json:"receiver_id"`
	SenderWallet   string            `json:"sender_wallet"`
	ReceiverWallet string            `json:"receiver_wallet"`
	Amount         int64             `json:"amount"`
	Status         TransactionStatus `json:"status"`
	TxHash         *string           `json:"tx_hash,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	ProcessedAt    *time.Time        `json:"processed_at,omitempty"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}
