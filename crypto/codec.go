package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/housler/housler-crypto/internal/metrics"
)

// Codec encrypts and decrypts PII values under per-field subkeys.
// A Codec is immutable after construction and safe for concurrent use.
type Codec struct {
	salt       string
	iterations int
	subkeys    *subkeyCache
}

// Option configures a Codec.
type Option func(*Codec)

// WithSalt overrides the derivation salt. Both sides of a deployment
// must use the same salt or decryption fails.
func WithSalt(salt string) Option {
	return func(c *Codec) {
		c.salt = salt
	}
}

// WithIterations overrides the PBKDF2 iteration count.
func WithIterations(n int) Option {
	return func(c *Codec) {
		c.iterations = n
	}
}

// New creates a Codec from a 64-character lowercase hex master key.
func New(masterKey string, opts ...Option) (*Codec, error) {
	if masterKey == "" {
		return nil, NewConfigError("master_key is required")
	}
	if len(masterKey) != hex.EncodedLen(masterKeyLen) {
		return nil, NewConfigError("master_key must be 32 bytes (64 hex chars)")
	}
	master, err := hex.DecodeString(masterKey)
	if err != nil {
		return nil, NewConfigError("Invalid master_key")
	}

	c := &Codec{
		salt:       DefaultSalt,
		iterations: DefaultIterations,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.iterations < 1 {
		return nil, NewConfigError("iterations must be positive")
	}

	c.subkeys = newSubkeyCache(master, c.salt, c.iterations)
	return c, nil
}

// GenerateKey returns a fresh cryptographically-random master key as
// 64 lowercase hex characters.
func GenerateKey() (string, error) {
	key := make([]byte, masterKeyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate master key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// Encrypt encrypts plaintext for the given field and returns the
// hc1: envelope. Empty input and already-encrypted input are returned
// unchanged, so re-running a migration over mixed columns is safe.
func (c *Codec) Encrypt(plaintext, field string) (string, error) {
	if plaintext == "" || strings.HasPrefix(plaintext, EnvelopePrefix) {
		return plaintext, nil
	}

	start := time.Now()
	aead, err := c.aead(field)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("encrypt").Inc()
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		metrics.CryptoErrors.WithLabelValues("encrypt").Inc()
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends ciphertext||tag to the nonce, yielding the full
	// envelope payload in one allocation.
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), []byte(field))

	metrics.CryptoOperations.WithLabelValues("encrypt").Inc()
	metrics.CryptoOperationDuration.WithLabelValues("encrypt").Observe(time.Since(start).Seconds())
	return EnvelopePrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Values without the hc1: prefix are returned
// unchanged (legacy ciphertext and plaintext coexist in migrating
// columns). Any cryptographic failure is reported uniformly as
// ErrDecryptionFailed.
func (c *Codec) Decrypt(value, field string) (string, error) {
	if value == "" {
		return "", nil
	}
	if !strings.HasPrefix(value, EnvelopePrefix) {
		return value, nil
	}

	start := time.Now()
	payload, err := base64.RawURLEncoding.DecodeString(value[len(EnvelopePrefix):])
	if err != nil || len(payload) < nonceSize+tagSize {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return "", ErrDecryptionFailed
	}

	aead, err := c.aead(field)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return "", err
	}

	nonce, ciphertext := payload[:nonceSize], payload[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(field))
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return "", ErrDecryptionFailed
	}

	metrics.CryptoOperations.WithLabelValues("decrypt").Inc()
	metrics.CryptoOperationDuration.WithLabelValues("decrypt").Observe(time.Since(start).Seconds())
	return string(plaintext), nil
}

// IsEncrypted reports whether value carries the hc1: envelope.
func (c *Codec) IsEncrypted(value string) bool {
	return value != "" && strings.HasPrefix(value, EnvelopePrefix)
}

// Close zeroizes the master key and cached subkeys. Best effort: Go's
// garbage collector may retain copies of the key material, so Close
// reduces exposure but cannot guarantee erasure.
func (c *Codec) Close() error {
	c.subkeys.zeroize()
	return nil
}

func (c *Codec) aead(field string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.subkeys.get(purposeEncrypt, field))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}
