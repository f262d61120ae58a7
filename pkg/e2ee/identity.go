package e2ee

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"time"
)

const (
	// MaxKeyPairs caps the number of retained key generations. Older
	// pairs are kept so historical messages stay decryptable after
	// rotation.
	MaxKeyPairs = 6

	// KeyBits is the RSA modulus size for newly generated pairs.
	KeyBits = 2048
)

// KeyPair is one asymmetric key generation owned by the local user.
type KeyPair struct {
	Private   *rsa.PrivateKey
	CreatedAt time.Time
}

// GenerateKeyPair creates a fresh RSA key pair.
func GenerateKeyPair() (*KeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("generating rsa key: %w", err)
	}
	return &KeyPair{Private: key, CreatedAt: time.Now().UTC()}, nil
}

// Fingerprint identifies the pair by a digest of the public modulus.
func (k *KeyPair) Fingerprint() string {
	sum := sha256.Sum256(k.Private.PublicKey.N.Bytes())
	return hex.EncodeToString(sum[:])
}

// PublicPEM returns the PEM-encoded public half.
func (k *KeyPair) PublicPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(&k.Private.PublicKey)
	if err != nil {
		return "", fmt.Errorf("marshaling public key: %w", err)
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}

// SelfTest verifies the pair with a wrap/unwrap round trip. A pair
// that cannot recover its own wrapped content key is corrupt and must
// not be trusted.
func (k *KeyPair) SelfTest() error {
	probe := make([]byte, contentKeyLen)
	if _, err := rand.Read(probe); err != nil {
		return fmt.Errorf("generating probe: %w", err)
	}
	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, &k.Private.PublicKey, probe, nil)
	if err != nil {
		return fmt.Errorf("self-test wrap: %w", err)
	}
	unwrapped, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, k.Private, wrapped, nil)
	if err != nil {
		return fmt.Errorf("self-test unwrap: %w", err)
	}
	if len(unwrapped) != len(probe) {
		return fmt.Errorf("self-test length mismatch")
	}
	for i := range probe {
		if probe[i] != unwrapped[i] {
			return fmt.Errorf("self-test content mismatch")
		}
	}
	return nil
}

// Keyring is the ordered, capped collection of the user's key pairs,
// most recent first, with an explicit active pair. The keyring is
// never mutated in place: operations rebuild the list and persist it
// as a whole.
type Keyring struct {
	pairs  []*KeyPair
	active string // fingerprint of the active pair
	store  Store
}

// Active returns the pair used for newly published keys.
func (r *Keyring) Active() *KeyPair {
	for _, p := range r.pairs {
		if p.Fingerprint() == r.active {
			return p
		}
	}
	return r.pairs[0]
}

// Pairs returns all retained generations, most recent first.
func (r *Keyring) Pairs() []*KeyPair {
	out := make([]*KeyPair, len(r.pairs))
	copy(out, r.pairs)
	return out
}

// PrivateKeys returns candidate private keys for decryption, active
// pair first so the common case succeeds on the first try.
func (r *Keyring) PrivateKeys() []*rsa.PrivateKey {
	keys := make([]*rsa.PrivateKey, 0, len(r.pairs))
	keys = append(keys, r.Active().Private)
	for _, p := range r.pairs {
		if p.Fingerprint() != r.active {
			keys = append(keys, p.Private)
		}
	}
	return keys
}

// Len returns the number of retained pairs.
func (r *Keyring) Len() int { return len(r.pairs) }

// LoadOrCreate loads the persisted keyring, validates every pair with
// a self-test, purges invalid entries, generates a fresh pair when
// none survive, reorders by the persisted active-fingerprint
// preference and persists the rebuilt list. The returned keyring
// always holds at least one valid pair.
func LoadOrCreate(store Store) (*Keyring, error) {
	stored, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading keyring: %w", err)
	}

	var valid []*KeyPair
	if stored != nil {
		for _, p := range stored.pairs() {
			if p.SelfTest() == nil {
				valid = append(valid, p)
			}
		}
	}

	active := ""
	if stored != nil {
		active = stored.ActiveFingerprint
	}

	if len(valid) == 0 {
		fresh, err := GenerateKeyPair()
		if err != nil {
			return nil, err
		}
		valid = []*KeyPair{fresh}
		active = fresh.Fingerprint()
	}

	valid = reorder(valid, active)
	if len(valid) > MaxKeyPairs {
		valid = valid[:MaxKeyPairs]
	}
	active = valid[0].Fingerprint()

	ring := &Keyring{pairs: valid, active: active, store: store}
	if err := ring.persist(); err != nil {
		return nil, err
	}
	return ring, nil
}

// Rotate generates a new pair, makes it active and persists the
// rebuilt list, dropping the oldest generation beyond the cap.
func (r *Keyring) Rotate() (*KeyPair, error) {
	fresh, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	rebuilt := make([]*KeyPair, 0, len(r.pairs)+1)
	rebuilt = append(rebuilt, fresh)
	rebuilt = append(rebuilt, r.pairs...)
	if len(rebuilt) > MaxKeyPairs {
		rebuilt = rebuilt[:MaxKeyPairs]
	}

	r.pairs = rebuilt
	r.active = fresh.Fingerprint()
	if err := r.persist(); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (r *Keyring) persist() error {
	if r.store == nil {
		return nil
	}
	snap, err := snapshot(r.pairs, r.active)
	if err != nil {
		return err
	}
	if err := r.store.Save(snap); err != nil {
		return fmt.Errorf("persisting keyring: %w", err)
	}
	return nil
}

// reorder moves the preferred fingerprint to the front and sorts the
// rest newest first.
func reorder(pairs []*KeyPair, preferred string) []*KeyPair {
	out := make([]*KeyPair, 0, len(pairs))
	var front *KeyPair
	for _, p := range pairs {
		if front == nil && p.Fingerprint() == preferred {
			front = p
			continue
		}
		out = append(out, p)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if front != nil {
		out = append([]*KeyPair{front}, out...)
	}
	return out
}

// keyChecksum is a short integrity digest over the serialized private
// key, checked on load before the more expensive self-test.
func keyChecksum(der []byte) string {
	sum := sha512.Sum512_256(der)
	return hex.EncodeToString(sum[:8])
}
