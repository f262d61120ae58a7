package postgres

import (
	"context"
	"fmt"

	"remitchat/internal/core/domain"

	"github.com/google/uuid"
)

// MessageRepo implements ports.MessageRepository. Messages are an
// append-only log: insert and read, never update or delete.
type MessageRepo struct {
	pool Pool
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(pool Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Create inserts a message with both cipher copies.
func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	query := `INSERT INTO messages (id, thread_id, sender_id, recipient_id, message_type, request_id,
		sender_ciphertext, sender_iv, sender_wrapped_key,
		recipient_ciphertext, recipient_iv, recipient_wrapped_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.ThreadID, m.SenderID, m.RecipientID, m.Type, m.RequestID,
		m.CipherForSender.Ciphertext, m.CipherForSender.IV, m.CipherForSender.WrappedKey,
		m.CipherForRecipient.Ciphertext, m.CipherForRecipient.IV, m.CipherForRecipient.WrappedKey,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByThread returns up to limit messages for a thread, newest first.
func (r *MessageRepo) ListByThread(ctx context.Context, threadID uuid.UUID, limit int) ([]domain.Message, error) {
	query := `SELECT id, thread_id, sender_id, recipient_id, message_type, request_id,
		sender_ciphertext, sender_iv, sender_wrapped_key,
		recipient_ciphertext, recipient_iv, recipient_wrapped_key, created_at
		FROM messages WHERE thread_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, threadID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		m := domain.Message{}
		err := rows.Scan(
			&m.ID, &m.ThreadID, &m.SenderID, &m.RecipientID, &m.Type, &m.RequestID,
			&m.CipherForSender.Ciphertext, &m.CipherForSender.IV, &m.CipherForSender.WrappedKey,
			&m.CipherForRecipient.Ciphertext, &m.CipherForRecipient.IV, &m.CipherForRecipient.WrappedKey,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}
	return msgs, nil
}
