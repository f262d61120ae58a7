package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Thread is a conversation between exactly two users.
// The participant set is immutable once created.
type Thread struct {
	ID             uuid.UUID `json:"id"`
	ParticipantA   uuid.UUID `json:"participant_a"`
	ParticipantB   uuid.UUID `json:"participant_b"`
	ParticipantKey string    `json:"-"` // sorted pair, unique index
	CreatedAt      time.Time `json:"created_at"`
	LastMessageAt  time.Time `json:"last_message_at"`
}

// BuildParticipantKey returns the canonical key for an unordered user pair.
// The two ids are sorted so either ordering yields the same key.
func BuildParticipantKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as > bs {
		as, bs = bs, as
	}
	return as + ":" + bs
}

// HasParticipant reports whether userID belongs to the thread.
func (t *Thread) HasParticipant(userID uuid.UUID) bool {
	return t.ParticipantA == userID || t.ParticipantB == userID
}

// PeerOf returns the other participant of the thread.
func (t *Thread) PeerOf(userID uuid.UUID) uuid.UUID {
	if t.ParticipantA == userID {
		return t.ParticipantB
	}
	return t.ParticipantA
}

// SplitParticipantKey recovers the sorted pair from a participant key.
func SplitParticipantKey(key string) (string, string) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return key, ""
	}
	return parts[0], parts[1]
}
