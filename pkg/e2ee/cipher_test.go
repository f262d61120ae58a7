package e2ee

import (
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPair(t *testing.T) *KeyPair {
	t.Helper()
	p, err := GenerateKeyPair()
	require.NoError(t, err)
	return p
}

func TestEncryptDecrypt_BothProjections(t *testing.T) {
	sender := mustPair(t)
	recipient := mustPair(t)
	plaintext := []byte("split the dinner bill? 42.50")

	msg, err := Encrypt(plaintext, sender.Published(), recipient.Published())
	require.NoError(t, err)

	// Shared ciphertext and IV, distinct wrapped keys.
	assert.Equal(t, msg.ForSender.Ciphertext, msg.ForRecipient.Ciphertext)
	assert.Equal(t, msg.ForSender.IV, msg.ForRecipient.IV)
	assert.NotEqual(t, msg.ForSender.WrappedKey, msg.ForRecipient.WrappedKey)

	// Each side can only open its own copy.
	got, err := Decrypt(msg.ForRecipient, []*rsa.PrivateKey{recipient.Private})
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)

	got, err = Decrypt(msg.ForSender, []*rsa.PrivateKey{sender.Private})
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecrypt_WrongKeyUnreadable(t *testing.T) {
	sender := mustPair(t)
	recipient := mustPair(t)
	stranger := mustPair(t)

	msg, err := Encrypt([]byte("secret"), sender.Published(), recipient.Published())
	require.NoError(t, err)

	_, err = Decrypt(msg.ForRecipient, []*rsa.PrivateKey{stranger.Private})
	assert.ErrorIs(t, err, ErrUnreadable)

	// Sender's copy is not readable with the recipient's key either.
	_, err = Decrypt(msg.ForSender, []*rsa.PrivateKey{recipient.Private})
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestDecrypt_MultiGenerationFallback(t *testing.T) {
	sender := mustPair(t)
	oldKey := mustPair(t)
	newKey := mustPair(t)

	// Message was encrypted to the old generation.
	msg, err := Encrypt([]byte("sent before rotation"), sender.Published(), oldKey.Published())
	require.NoError(t, err)

	// After rotation the new key is tried first, the old one still wins.
	candidates := []*rsa.PrivateKey{newKey.Private, oldKey.Private}
	got, err := Decrypt(msg.ForRecipient, candidates)
	require.NoError(t, err)
	assert.Equal(t, []byte("sent before rotation"), got)
}

func TestEncrypt_HashNegotiation_SHA1Key(t *testing.T) {
	sender := mustPair(t)
	recipient := mustPair(t)

	// Simulate legacy key material advertising SHA-1.
	legacy := recipient.Published()
	legacy.HashAlg = HashSHA1

	msg, err := Encrypt([]byte("legacy peer"), sender.Published(), legacy)
	require.NoError(t, err)

	// The unwrap side tries every supported hash.
	got, err := Decrypt(msg.ForRecipient, []*rsa.PrivateKey{recipient.Private})
	require.NoError(t, err)
	assert.Equal(t, []byte("legacy peer"), got)
}

func TestEncrypt_UnknownAdvertisedHashFallsBack(t *testing.T) {
	sender := mustPair(t)
	recipient := mustPair(t)

	pub := recipient.Published()
	pub.HashAlg = "SHA3-512" // not supported, negotiation falls back

	msg, err := Encrypt([]byte("fallback"), sender.Published(), pub)
	require.NoError(t, err)

	got, err := Decrypt(msg.ForRecipient, []*rsa.PrivateKey{recipient.Private})
	require.NoError(t, err)
	assert.Equal(t, []byte("fallback"), got)
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	sender := mustPair(t)
	recipient := mustPair(t)

	msg, err := Encrypt([]byte("intact"), sender.Published(), recipient.Published())
	require.NoError(t, err)

	tampered := msg.ForRecipient
	tampered.Ciphertext = msg.ForSender.IV + tampered.Ciphertext[4:]

	_, err = Decrypt(tampered, []*rsa.PrivateKey{recipient.Private})
	assert.Error(t, err)
}

func TestDecrypt_MalformedBase64(t *testing.T) {
	recipient := mustPair(t)

	_, err := Decrypt(Payload{Ciphertext: "%%%", IV: "aaaa", WrappedKey: "aaaa"},
		[]*rsa.PrivateKey{recipient.Private})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnreadable)
}

func TestParsePublishedKey_RoundTrip(t *testing.T) {
	pair := mustPair(t)
	pemKey, err := pair.PublicPEM()
	require.NoError(t, err)

	parsed, err := ParsePublishedKey(pemKey, HashSHA256)
	require.NoError(t, err)
	assert.Equal(t, pair.Fingerprint(), parsed.Fingerprint)
	assert.Equal(t, HashSHA256, parsed.HashAlg)
}

func TestParsePublishedKey_Garbage(t *testing.T) {
	_, err := ParsePublishedKey("not a pem", HashSHA256)
	assert.Error(t, err)
}
