package domain

import (
	"time"

	"github.com/google/uuid"
)

// PublicKeyRecord is a user's currently advertised public key.
// One active record per user; publishing replaces any previous key.
// Clients may hold several private key generations locally, the
// directory only ever stores the newest public half.
type PublicKeyRecord struct {
	UserID      uuid.UUID `json:"user_id"`
	PublicKey   string    `json:"public_key"` // PEM-encoded
	HashAlg     string    `json:"hash_alg"`   // OAEP hash the key advertises
	Fingerprint string    `json:"fingerprint"`
	UpdatedAt   time.Time `json:"updated_at"`
}
