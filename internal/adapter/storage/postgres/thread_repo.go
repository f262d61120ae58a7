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
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// ThreadRepo implements ports.ThreadRepository.
type ThreadRepo struct {
	pool Pool
}

// NewThreadRepo creates a new ThreadRepo.
func NewThreadRepo(pool Pool) *ThreadRepo {
	return &ThreadRepo{pool: pool}
}

// Create inserts a new thread. The participant_key column carries a
// unique constraint; violating it maps to ports.ErrDuplicate so the
// caller can adopt the concurrently created thread.
func (r *ThreadRepo) Create(ctx context.Context, t *domain.Thread) error {
	query := `INSERT INTO threads (id, participant_a, participant_b, participant_key, created_at, last_message_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.ParticipantA, t.ParticipantB, t.ParticipantKey,
		t.CreatedAt, t.LastMessageAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ports.ErrDuplicate
		}
		return fmt.Errorf("insert thread: %w", err)
	}
	return nil
}

// GetByID fetches a thread by UUID.
func (r *ThreadRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Thread, error) {
	query := `SELECT id, participant_a, participant_b, participant_key, created_at, last_message_at
		FROM threads WHERE id = $1`

	return r.scanThread(r.pool.QueryRow(ctx, query, id))
}

// GetByParticipantKey fetches the thread for an unordered user pair.
func (r *ThreadRepo) GetByParticipantKey(ctx context.Context, key string) (*domain.Thread, error) {
	query := `SELECT id, participant_a, participant_b, participant_key, created_at, last_message_at
		FROM threads WHERE participant_key = $1`

	return r.scanThread(r.pool.QueryRow(ctx, query, key))
}

// TouchLastMessage bumps the thread's last activity timestamp.
func (r *ThreadRepo) TouchLastMessage(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE threads SET last_message_at = $1 WHERE id = $2 AND last_message_at < $1`

	// Zero rows is fine: a concurrent writer already advanced it.
	_, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("touch last message: %w", err)
	}
	return nil
}

func (r *ThreadRepo) scanThread(row pgx.Row) (*domain.Thread, error) {
	t := &domain.Thread{}
	err := row.Scan(
		&t.ID, &t.ParticipantA, &t.ParticipantB, &t.ParticipantKey,
		&t.CreatedAt, &t.LastMessageAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan thread: %w", err)
	}
	return t, nil
}
