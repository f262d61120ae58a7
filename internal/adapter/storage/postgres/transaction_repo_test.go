package postgres

import (
	"context"
	"testing"
	"time"

	"remitchat/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction() *domain.Transaction {
	return &domain.Transaction{
		ID:             uuid.New(),
		SenderID:       uuid.New(),
		ReceiverID:     uuid.New(),
		SenderWallet:   "0xSENDER",
		ReceiverWallet: "0xRECEIVER",
		Amount:         5000,
		Status:         domain.TransactionStatusPending,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.SenderID, txn.ReceiverID, txn.SenderWallet, txn.ReceiverWallet,
			txn.Amount, txn.Status, txn.TxHash, txn.CreatedAt, txn.ProcessedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), txn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(txn.ID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "sender_id", "receiver_id", "sender_wallet", "receiver_wallet",
			"amount", "status", "tx_hash", "created_at", "processed_at",
		}).AddRow(
			txn.ID, txn.SenderID, txn.ReceiverID, txn.SenderWallet, txn.ReceiverWallet,
			txn.Amount, txn.Status, txn.TxHash, txn.CreatedAt, txn.ProcessedAt,
		))

	result, err := repo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.Amount, result.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()
	hash := "0xhash"
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusSuccess, &hash, at, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.UpdateStatus(context.Background(), id, domain.TransactionStatusSuccess, &hash, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusFailed, (*string)(nil), at, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), id, domain.TransactionStatusFailed, nil, at)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "transaction not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
