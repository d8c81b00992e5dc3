// Package crypto implements field-scoped authenticated encryption for
// PII at rest. Every value is encrypted under a subkey derived from the
// master key, the configured salt, and the logical field name, so
// ciphertexts from different fields are cryptographically segregated.
package crypto

import "errors"

// EnvelopePrefix marks values encrypted in the current format.
// The envelope is "hc1:" followed by base64url (no padding) of
// nonce || ciphertext || tag.
const EnvelopePrefix = "hc1:"

const (
	// DefaultSalt is the application-constant derivation salt.
	DefaultSalt = "housler_crypto_v1"

	// DefaultIterations is the PBKDF2 iteration count. Encrypting and
	// decrypting instances must agree on it.
	DefaultIterations = 100_000
)

const (
	masterKeyLen = 32
	nonceSize    = 12
	tagSize      = 16
)

// ErrDecryptionFailed is returned for every authenticated-decryption
// failure: wrong field, wrong key, wrong salt or iteration count,
// tampered ciphertext, truncated payload, malformed base64. The
// internal cause is deliberately not disclosed.
var ErrDecryptionFailed = errors.New("Decryption failed")

// ConfigError reports invalid construction-time input, such as a
// malformed master key or an unconfigured migrator.
type ConfigError struct {
	msg string
}

// NewConfigError creates a ConfigError with the given message.
func NewConfigError(msg string) *ConfigError {
	return &ConfigError{msg: msg}
}

func (e *ConfigError) Error() string {
	return e.msg
}
