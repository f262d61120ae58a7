package e2ee

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"hash"
)

const contentKeyLen = 32 // AES-256

// Supported OAEP hash names, in fallback order. Older published keys
// advertise SHA-1; negotiation tries the advertised hash first, then
// these defaults.
const (
	HashSHA256 = "SHA-256"
	HashSHA1   = "SHA-1"
)

var fallbackHashes = []string{HashSHA256, HashSHA1}

// ErrUnreadable is returned when no candidate private key can decrypt
// a payload. Callers degrade the single message to "unreadable"
// instead of failing the whole history.
var ErrUnreadable = errors.New("message not decryptable with any available key")

// Payload is one recipient-bound encrypted copy of a message. The two
// copies produced by Encrypt share Ciphertext and IV and differ only
// in WrappedKey. All fields are base64.
type Payload struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	WrappedKey string `json:"wrapped_key"`
}

// EncryptedMessage holds the two independently key-wrapped copies:
// the sender's archival copy and the recipient's copy.
type EncryptedMessage struct {
	ForSender    Payload
	ForRecipient Payload
}

// PublishedKey is a peer's advertised public key with its OAEP hash.
type PublishedKey struct {
	Key         *rsa.PublicKey
	HashAlg     string
	Fingerprint string
}

// ParsePublishedKey parses a PEM public key as fetched from the
// directory.
func ParsePublishedKey(pemKey, hashAlg string) (*PublishedKey, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, fmt.Errorf("no PEM block in public key")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not RSA")
	}
	sum := sha256.Sum256(rsaKey.N.Bytes())
	return &PublishedKey{
		Key:         rsaKey,
		HashAlg:     hashAlg,
		Fingerprint: hex.EncodeToString(sum[:]),
	}, nil
}

// Published returns the advertisable form of a local pair. New pairs
// always advertise SHA-256.
func (k *KeyPair) Published() *PublishedKey {
	return &PublishedKey{
		Key:         &k.Private.PublicKey,
		HashAlg:     HashSHA256,
		Fingerprint: k.Fingerprint(),
	}
}

// Encrypt encrypts plaintext once with a random AES-256-GCM content
// key, then wraps that key under the sender's and the recipient's
// public keys separately. The content key never leaves this function
// unwrapped.
func Encrypt(plaintext []byte, sender, recipient *PublishedKey) (*EncryptedMessage, error) {
	contentKey := make([]byte, contentKeyLen)
	if _, err := rand.Read(contentKey); err != nil {
		return nil, fmt.Errorf("generating content key: %w", err)
	}

	block, err := aes.NewCipher(contentKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	iv := make([]byte, aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generating iv: %w", err)
	}

	ciphertext := aead.Seal(nil, iv, plaintext, nil)
	ctB64 := base64.StdEncoding.EncodeToString(ciphertext)
	ivB64 := base64.StdEncoding.EncodeToString(iv)

	wrappedForSender, err := wrapKey(contentKey, sender)
	if err != nil {
		return nil, fmt.Errorf("wrapping key for sender: %w", err)
	}
	wrappedForRecipient, err := wrapKey(contentKey, recipient)
	if err != nil {
		return nil, fmt.Errorf("wrapping key for recipient: %w", err)
	}

	return &EncryptedMessage{
		ForSender:    Payload{Ciphertext: ctB64, IV: ivB64, WrappedKey: wrappedForSender},
		ForRecipient: Payload{Ciphertext: ctB64, IV: ivB64, WrappedKey: wrappedForRecipient},
	}, nil
}

// Decrypt tries each candidate private key in order until one unwraps
// the content key and authenticates the ciphertext. Multi-generation
// keyrings pass all retained keys so rotated-away messages stay
// readable. Returns ErrUnreadable if every candidate fails.
func Decrypt(p Payload, candidates []*rsa.PrivateKey) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(p.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decoding ciphertext: %w", err)
	}
	iv, err := base64.StdEncoding.DecodeString(p.IV)
	if err != nil {
		return nil, fmt.Errorf("decoding iv: %w", err)
	}
	wrapped, err := base64.StdEncoding.DecodeString(p.WrappedKey)
	if err != nil {
		return nil, fmt.Errorf("decoding wrapped key: %w", err)
	}

	for _, key := range candidates {
		contentKey, ok := unwrapKey(wrapped, key)
		if !ok {
			continue
		}
		plaintext, err := openGCM(contentKey, iv, ciphertext)
		if err == nil {
			return plaintext, nil
		}
	}
	return nil, ErrUnreadable
}

// wrapKey encrypts the content key under pub with hash negotiation:
// the advertised hash first, then the canonical fallbacks. Old key
// material may be too small for a SHA-256 OAEP envelope, in which
// case the SHA-1 fallback still fits.
func wrapKey(contentKey []byte, pub *PublishedKey) (string, error) {
	var lastErr error
	for _, name := range negotiationOrder(pub.HashAlg) {
		h, ok := oaepHash(name)
		if !ok {
			continue
		}
		wrapped, err := rsa.EncryptOAEP(h(), rand.Reader, pub.Key, contentKey, nil)
		if err == nil {
			return base64.StdEncoding.EncodeToString(wrapped), nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("no usable OAEP hash for key: %w", lastErr)
}

// unwrapKey tries every supported hash; the wrap side negotiated one
// of them and OAEP decryption fails cleanly on the wrong choice.
func unwrapKey(wrapped []byte, key *rsa.PrivateKey) ([]byte, bool) {
	for _, name := range fallbackHashes {
		h, _ := oaepHash(name)
		contentKey, err := rsa.DecryptOAEP(h(), rand.Reader, key, wrapped, nil)
		if err == nil && len(contentKey) == contentKeyLen {
			return contentKey, true
		}
	}
	return nil, false
}

func openGCM(contentKey, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(contentKey)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(iv) != aead.NonceSize() {
		return nil, fmt.Errorf("bad iv size %d", len(iv))
	}
	return aead.Open(nil, iv, ciphertext, nil)
}

// negotiationOrder returns the advertised hash followed by the
// canonical fallbacks, deduplicated.
func negotiationOrder(advertised string) []string {
	order := make([]string, 0, len(fallbackHashes)+1)
	if advertised != "" {
		order = append(order, advertised)
	}
	for _, h := range fallbackHashes {
		if h != advertised {
			order = append(order, h)
		}
	}
	return order
}

func oaepHash(name string) (func() hash.Hash, bool) {
	switch name {
	case HashSHA256:
		return sha256.New, true
	case HashSHA1:
		return sha1.New, true
	default:
		return nil, false
	}
}
