package ports

import (
	"context"
	"errors"
	"time"

	"remitchat/internal/core/domain"

	"github.com/google/uuid"
)

// ErrDuplicate is returned by Create methods when a uniqueness
// constraint is violated. Callers treat it as "already exists" and
// re-fetch rather than failing.
var ErrDuplicate = errors.New("duplicate record")

// PublicKeyRepository persists each user's advertised public key.
type PublicKeyRepository interface {
	// Upsert replaces any previously published key for the user.
	Upsert(ctx context.Context, rec *domain.PublicKeyRecord) error
	// Get returns nil, nil when the user has never published a key.
	Get(ctx context.Context, userID uuid.UUID) (*domain.PublicKeyRecord, error)
}

// ThreadRepository persists conversation threads.
type ThreadRepository interface {
	// Create inserts a new thread. Returns ErrDuplicate if a thread
	// with the same participant key already exists.
	Create(ctx context.Context, t *domain.Thread) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Thread, error)
	GetByParticipantKey(ctx context.Context, key string) (*domain.Thread, error)
	TouchLastMessage(ctx context.Context, id uuid.UUID, at time.Time) error
}

// MessageRepository persists the append-only encrypted message log.
type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	// ListByThread returns up to limit messages, newest first.
	ListByThread(ctx context.Context, threadID uuid.UUID, limit int) ([]domain.Message, error)
}

// PaidFields carries the settlement outcome attached on the
// processing→paid transition.
type PaidFields struct {
	PaidByUserID  uuid.UUID
	TransactionID uuid.UUID
	TxHash        string
	At            time.Time
}

// PaymentRequestRepository persists payment requests. All status
// transitions are conditional single-record updates: the boolean
// result reports whether the guard matched, and false is a
// first-class conflict, not an error.
type PaymentRequestRepository interface {
	Create(ctx context.Context, r *domain.PaymentRequest) error
	// Delete removes a request; used only for best-effort cleanup when
	// the carrying message failed to persist.
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRequest, error)
	GetManyByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.PaymentRequest, error)

	// MarkProcessing applies pending→processing guarded by
	// (id, threadID, status=pending, targetID).
	MarkProcessing(ctx context.Context, id, threadID, targetID uuid.UUID, at time.Time) (bool, error)
	// RevertProcessing is the compensating processing→pending rollback.
	RevertProcessing(ctx context.Context, id uuid.UUID) (bool, error)
	// MarkPaid applies processing→paid with the settlement reference.
	MarkPaid(ctx context.Context, id uuid.UUID, paid PaidFields) (bool, error)
	// MarkCancelled applies pending→cancelled.
	MarkCancelled(ctx context.Context, id, byUserID uuid.UUID, at time.Time) (bool, error)
}

// TransactionRepository persists settlement attempts. Rows are
// append-only: status moves forward, records are never deleted.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, txHash *string, at time.Time) error
}

// ReportRepository persists thread abuse reports.
type ReportRepository interface {
	Create(ctx context.Context, r *domain.ThreadReport) error
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// CodeConsumeResult is the outcome of an atomic code consumption.
type CodeConsumeResult int

const (
	CodeConsumeOK       CodeConsumeResult = iota // matched, code cleared
	CodeConsumeMissing                           // no active code (never issued or expired)
	CodeConsumeMismatch                          // wrong code, still active
)

// CodeStore holds short-lived single-use verification codes.
type CodeStore interface {
	// Put stores the active code for a user, replacing any previous one.
	Put(ctx context.Context, userID uuid.UUID, code string, channel domain.Channel, ttl time.Duration) error
	// ConsumeIfMatch atomically compares and deletes: a match clears
	// the code, a mismatch leaves it active (until the mismatch budget
	// is exhausted, then it is cleared as well).
	ConsumeIfMatch(ctx context.Context, userID uuid.UUID, code string) (CodeConsumeResult, error)
}
