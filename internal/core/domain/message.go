package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType represents the kind of chat message.
type MessageType string

const (
	MessageTypeText    MessageType = "TEXT"
	MessageTypeRequest MessageType = "REQUEST"
)

// Cipher payload size bounds. The server never inspects ciphertext, it
// only enforces that payloads are well-formed and within limits.
const (
	MaxCiphertextLen = 64 * 1024
	MaxIVLen         = 256
	MaxWrappedKeyLen = 2048
)

// CipherPayload is one recipient-bound encrypted copy of a message.
// Ciphertext and IV are shared between the two copies of a message;
// WrappedKey differs per key-wrap target. All fields are base64.
type CipherPayload struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	WrappedKey string `json:"wrapped_key"`
}

// Validate checks the payload is non-empty and within size bounds.
func (p CipherPayload) Validate() error {
	if p.Ciphertext == "" || p.IV == "" || p.WrappedKey == "" {
		return fmt.Errorf("cipher payload has empty fields")
	}
	if len(p.Ciphertext) > MaxCiphertextLen {
		return fmt.Errorf("ciphertext exceeds %d bytes", MaxCiphertextLen)
	}
	if len(p.IV) > MaxIVLen {
		return fmt.Errorf("iv exceeds %d bytes", MaxIVLen)
	}
	if len(p.WrappedKey) > MaxWrappedKeyLen {
		return fmt.Errorf("wrapped key exceeds %d bytes", MaxWrappedKeyLen)
	}
	return nil
}

// Message is an immutable entry in a thread's append-only log.
// Plaintext is never stored; the server holds two opaque encrypted
// copies and returns exactly one of them depending on the viewer.
type Message struct {
	ID                 uuid.UUID     `json:"id"`
	ThreadID           uuid.UUID     `json:"thread_id"`
	SenderID           uuid.UUID     `json:"sender_id"`
	RecipientID        uuid.UUID     `json:"recipient_id"`
	Type               MessageType   `json:"type"`
	RequestID          *uuid.UUID    `json:"request_id,omitempty"`
	CipherForSender    CipherPayload `json:"-"`
	CipherForRecipient CipherPayload `json:"-"`
	CreatedAt          time.Time     `json:"created_at"`
}

// CipherFor returns the copy readable by the given viewer.
// The server decides which cipher a viewer receives, never both.
func (m *Message) CipherFor(viewerID uuid.UUID) CipherPayload {
	if viewerID == m.SenderID {
		return m.CipherForSender
	}
	return m.CipherForRecipient
}
