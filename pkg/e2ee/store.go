package e2ee

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/argon2"
)

// StoredKeyring is the serialized form of a keyring.
type StoredKeyring struct {
	ActiveFingerprint string      `json:"active_fingerprint"`
	Keys              []StoredKey `json:"keys"`
}

// StoredKey is one serialized key pair.
type StoredKey struct {
	PrivateKeyPEM string    `json:"private_key_pem"`
	Checksum      string    `json:"checksum"`
	CreatedAt     time.Time `json:"created_at"`
}

// pairs deserializes the stored keys, silently dropping entries that
// fail to parse or whose checksum does not match. The caller runs the
// full self-test on whatever survives.
func (s *StoredKeyring) pairs() []*KeyPair {
	var out []*KeyPair
	for _, k := range s.Keys {
		block, _ := pem.Decode([]byte(k.PrivateKeyPEM))
		if block == nil {
			continue
		}
		if k.Checksum != "" && k.Checksum != keyChecksum(block.Bytes) {
			continue
		}
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			continue
		}
		out = append(out, &KeyPair{Private: key, CreatedAt: k.CreatedAt})
	}
	return out
}

// snapshot serializes pairs for persistence.
func snapshot(pairs []*KeyPair, active string) (*StoredKeyring, error) {
	s := &StoredKeyring{ActiveFingerprint: active}
	for _, p := range pairs {
		der := x509.MarshalPKCS1PrivateKey(p.Private)
		block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}
		s.Keys = append(s.Keys, StoredKey{
			PrivateKeyPEM: string(pem.EncodeToMemory(block)),
			Checksum:      keyChecksum(der),
			CreatedAt:     p.CreatedAt,
		})
	}
	return s, nil
}

// Store persists a keyring.
type Store interface {
	// Load returns nil, nil when nothing has been persisted yet.
	Load() (*StoredKeyring, error)
	Save(*StoredKeyring) error
}

// argon2id parameters for the file encryption key.
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
	kdfKeyLen  = 32
	kdfSaltLen = 16
)

// sealedFile is the on-disk envelope: keyring JSON sealed with
// AES-256-GCM under an argon2id-derived key.
type sealedFile struct {
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// FileStore persists the keyring to a single file, encrypted at rest
// with a passphrase. Writes are atomic (temp file + rename).
type FileStore struct {
	path       string
	passphrase []byte
}

// NewFileStore creates a file-backed keyring store.
func NewFileStore(path string, passphrase string) *FileStore {
	return &FileStore{path: path, passphrase: []byte(passphrase)}
}

// Load reads and decrypts the keyring file.
func (f *FileStore) Load() (*StoredKeyring, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading keyring file: %w", err)
	}

	var sealed sealedFile
	if err := json.Unmarshal(raw, &sealed); err != nil {
		return nil, fmt.Errorf("parsing keyring file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(sealed.Salt)
	if err != nil {
		return nil, fmt.Errorf("decoding salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(sealed.Nonce)
	if err != nil {
		return nil, fmt.Errorf("decoding nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(sealed.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decoding ciphertext: %w", err)
	}

	aead, err := f.aead(salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("unsealing keyring: %w", err)
	}

	var stored StoredKeyring
	if err := json.Unmarshal(plaintext, &stored); err != nil {
		return nil, fmt.Errorf("parsing keyring: %w", err)
	}
	return &stored, nil
}

// Save encrypts and atomically writes the keyring file.
func (f *FileStore) Save(s *StoredKeyring) error {
	plaintext, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling keyring: %w", err)
	}

	salt := make([]byte, kdfSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}
	aead, err := f.aead(salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	sealed := sealedFile{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plaintext, nil)),
	}
	raw, err := json.Marshal(sealed)
	if err != nil {
		return fmt.Errorf("marshaling sealed keyring: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".keyring-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing keyring: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing keyring file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing keyring file: %w", err)
	}
	return nil
}

func (f *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(f.passphrase, salt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return aead, nil
}
