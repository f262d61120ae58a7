package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentRequestRepo implements ports.PaymentRequestRepository. All
// status transitions are conditional UPDATEs guarded on the current
// status; RowsAffected decides who won a race, no row locks held
// across the external settlement call.
type PaymentRequestRepo struct {
	pool Pool
}

// NewPaymentRequestRepo creates a new PaymentRequestRepo.
func NewPaymentRequestRepo(pool Pool) *PaymentRequestRepo {
	return &PaymentRequestRepo{pool: pool}
}

const requestColumns = `id, thread_id, requester_id, target_id, amount, note, status,
	processing_at, paid_at, paid_by_user_id, paid_transaction_id, paid_tx_hash,
	cancelled_at, cancelled_by_user_id, created_at`

// Create inserts a new pending request.
func (r *PaymentRequestRepo) Create(ctx context.Context, req *domain.PaymentRequest) error {
	query := `INSERT INTO payment_requests (id, thread_id, requester_id, target_id, amount, note, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.ThreadID, req.RequesterID, req.TargetID,
		req.Amount, req.Note, req.Status, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment request: %w", err)
	}
	return nil
}

// Delete removes a request. Only used to clean up a request whose
// carrying message never persisted.
func (r *PaymentRequestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM payment_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment request: %w", err)
	}
	return nil
}

// GetByID fetches a request by UUID.
func (r *PaymentRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM payment_requests WHERE id = $1`
	return r.scanRequest(r.pool.QueryRow(ctx, query, id))
}

// GetManyByIDs fetches the current state of a set of requests, keyed
// by ID. Missing IDs are simply absent from the map.
func (r *PaymentRequestRepo) GetManyByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.PaymentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM payment_requests WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get payment requests: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]domain.PaymentRequest, len(ids))
	for rows.Next() {
		req := domain.PaymentRequest{}
		if err := scanRequestFields(rows, &req); err != nil {
			return nil, fmt.Errorf("scan payment request row: %w", err)
		}
		result[req.ID] = req
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment request rows: %w", err)
	}
	return result, nil
}

// MarkProcessing applies pending→processing. The guard includes the
// thread and target so a stale or misrouted call can never claim the
// request. Exactly one concurrent caller sees true.
func (r *PaymentRequestRepo) MarkProcessing(ctx context.Context, id, threadID, targetID uuid.UUID, at time.Time) (bool, error) {
	query := `UPDATE payment_requests SET status = $1, processing_at = $2
		WHERE id = $3 AND thread_id = $4 AND target_id = $5 AND status = $6`

	tag, err := r.pool.Exec(ctx, query,
		domain.RequestStatusProcessing, at, id, threadID, targetID, domain.RequestStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark processing: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RevertProcessing is the compensating processing→pending rollback.
func (r *PaymentRequestRepo) RevertProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE payment_requests SET status = $1, processing_at = NULL
		WHERE id = $2 AND status = $3`

	tag, err := r.pool.Exec(ctx, query,
		domain.RequestStatusPending, id, domain.RequestStatusProcessing,
	)
	if err != nil {
		return false, fmt.Errorf("revert processing: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkPaid applies processing→paid with the settlement reference.
func (r *PaymentRequestRepo) MarkPaid(ctx context.Context, id uuid.UUID, paid ports.PaidFields) (bool, error) {
	query := `UPDATE payment_requests
		SET status = $1, paid_at = $2, paid_by_user_id = $3, paid_transaction_id = $4, paid_tx_hash = $5
		WHERE id = $6 AND status = $7`

	tag, err := r.pool.Exec(ctx, query,
		domain.RequestStatusPaid, paid.At, paid.PaidByUserID, paid.TransactionID, paid.TxHash,
		id, domain.RequestStatusProcessing,
	)
	if err != nil {
		return false, fmt.Errorf("mark paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkCancelled applies pending→cancelled.
func (r *PaymentRequestRepo) MarkCancelled(ctx context.Context, id, byUserID uuid.UUID, at time.Time) (bool, error) {
	query := `UPDATE payment_requests SET status = $1, cancelled_at = $2, cancelled_by_user_id = $3
		WHERE id = $4 AND status = $5`

	tag, err := r.pool.Exec(ctx, query,
		domain.RequestStatusCancelled, at, byUserID, id, domain.RequestStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark cancelled: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PaymentRequestRepo) scanRequest(row pgx.Row) (*domain.PaymentRequest, error) {
	req := &domain.PaymentRequest{}
	if err := scanRequestFields(row, req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment request: %w", err)
	}
	return req, nil
}

func scanRequestFields(row pgx.Row, req *domain.PaymentRequest) error {
	return row.Scan(
		&req.ID, &req.ThreadID, &req.RequesterID, &req.TargetID,
		&req.Amount, &req.Note, &req.Status,
		&req.ProcessingAt, &req.PaidAt, &req.PaidByUserID, &req.PaidTransactionID, &req.PaidTxHash,
		&req.CancelledAt, &req.CancelledByUserID, &req.CreatedAt,
	)
}
