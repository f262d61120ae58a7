package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"remitchat/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new settlement attempt record.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, sender_id, receiver_id, sender_wallet, receiver_wallet,
		amount, status, tx_hash, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.SenderID, t.ReceiverID, t.SenderWallet, t.ReceiverWallet,
		t.Amount, t.Status, t.TxHash, t.CreatedAt, t.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, sender_id, receiver_id, sender_wallet, receiver_wallet,
		amount, status, tx_hash, created_at, processed_at
		FROM transactions WHERE id = $1`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.SenderID, &t.ReceiverID, &t.SenderWallet, &t.ReceiverWallet,
		&t.Amount, &t.Status, &t.TxHash, &t.CreatedAt, &t.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// UpdateStatus records a settlement outcome.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, txHash *string, at time.Time) error {
	query := `UPDATE transactions SET status = $1, tx_hash = $2, processed_at = $3 WHERE id = $4`

	tag, err := r.pool.Exec(ctx, query, status, txHash, at, id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}
