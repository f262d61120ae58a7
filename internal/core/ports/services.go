package ports

import (
	"context"
	"time"

	"remitchat/internal/core/domain"

	"github.com/google/uuid"
)

// DirectoryService maps users to their current public keys.
type DirectoryService interface {
	// PublishKey upserts the caller's advertised public key.
	PublishKey(ctx context.Context, userID uuid.UUID, pemKey, hashAlg string) (*domain.PublicKeyRecord, error)
	// LookupKey returns the target's current key. Self-lookup is always
	// allowed; otherwise requester and target must be mutual contacts.
	LookupKey(ctx context.Context, requesterID, targetID uuid.UUID) (*domain.PublicKeyRecord, error)
}

// AppendMessageInput holds validated input for appending a message.
type AppendMessageInput struct {
	ThreadID           uuid.UUID
	SenderID           uuid.UUID
	Type               domain.MessageType
	CipherForSender    domain.CipherPayload
	CipherForRecipient domain.CipherPayload
	// Set when Type == MessageTypeRequest.
	RequestAmount int64
	RequestNote   string
}

// MessageView is a message projected for one viewer: exactly one of
// the two stored cipher copies, plus the linked request's live state.
type MessageView struct {
	ID          uuid.UUID              `json:"id"`
	ThreadID    uuid.UUID              `json:"thread_id"`
	SenderID    uuid.UUID              `json:"sender_id"`
	RecipientID uuid.UUID              `json:"recipient_id"`
	Type        domain.MessageType     `json:"type"`
	Cipher      domain.CipherPayload   `json:"cipher"`
	Request     *domain.PaymentRequest `json:"request,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ReportThreadInput holds validated input for reporting a thread.
type ReportThreadInput struct {
	ThreadID   uuid.UUID
	ReporterID uuid.UUID
	Reason     string
	Excerpts   []string
}

// ChatService is the thread and message log surface.
type ChatService interface {
	OpenThread(ctx context.Context, userID, peerID uuid.UUID) (*domain.Thread, error)
	AppendMessage(ctx context.Context, in AppendMessageInput) (*MessageView, error)
	GetHistory(ctx context.Context, threadID, viewerID uuid.UUID, limit int) ([]MessageView, error)
	ReportThread(ctx context.Context, in ReportThreadInput) (*domain.ThreadReport, error)
}

// PayResult is the outcome of a successful payment saga run.
type PayResult struct {
	Request     *domain.PaymentRequest `json:"request"`
	Transaction *domain.Transaction    `json:"transaction"`
}

// PaymentService drives the payment request state machine and the
// settlement saga.
type PaymentService interface {
	Pay(ctx context.Context, threadID, requestID, payerID uuid.UUID, code string) (*PayResult, error)
	Cancel(ctx context.Context, threadID, requestID, callerID uuid.UUID) (*domain.PaymentRequest, error)
}

// IssueCodeResult reports where a verification code was dispatched.
type IssueCodeResult struct {
	MaskedDestination string         `json:"masked_destination"`
	Channel           domain.Channel `json:"channel"`
	ExpiresIn         time.Duration  `json:"expires_in"`
}

// VerificationService is the single-use possession proof required
// immediately before funds move.
type VerificationService interface {
	Issue(ctx context.Context, userID uuid.UUID, channel domain.Channel) (*IssueCodeResult, error)
	Consume(ctx context.Context, userID uuid.UUID, code string) error
}

// AuditService records audited actions (best-effort, never blocks).
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// TokenClaims holds the parsed JWT claims. Tokens are minted by the
// external auth subsystem; this service only validates them.
type TokenClaims struct {
	UserID uuid.UUID
}

// TokenService validates bearer tokens for the produced API.
type TokenService interface {
	Generate(userID uuid.UUID, ttl time.Duration) (string, error)
	Validate(tokenString string) (*TokenClaims, error)
}
