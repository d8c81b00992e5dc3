package legacy

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"github.com/housler/housler-crypto/crypto"
)

// Legacy key derivation is frozen: both source systems derived Fernet
// keys with PBKDF2-HMAC-SHA256 at 100k iterations.
const legacyIterations = 100_000

// encPrefix marks club-format ciphertexts.
const encPrefix = "enc:"

type keySchedule int

const (
	scheduleNone keySchedule = iota
	// scheduleLK: one Fernet key for all fields, salt is the
	// configured salt alone.
	scheduleLK
	// scheduleClub: per-field Fernet keys, salt is salt || field.
	scheduleClub
)

// Migrator decrypts the two legacy ciphertext formats and re-encrypts
// values into the current envelope. A zero-value Migrator is not usable;
// construct one with FromLKConfig or FromClubConfig.
type Migrator struct {
	schedule keySchedule
	key      []byte
	salt     string

	mu      sync.RWMutex
	fernets map[string]*Fernet
}

// FromLKConfig creates a Migrator for the lk format: a single Fernet
// key derived from the hex encryption key and the salt, shared by all
// fields.
func FromLKConfig(encryptionKey, encryptionSalt string) (*Migrator, error) {
	key, err := decodeLegacyKey(encryptionKey)
	if err != nil {
		return nil, err
	}
	return &Migrator{
		schedule: scheduleLK,
		key:      key,
		salt:     encryptionSalt,
		fernets:  make(map[string]*Fernet),
	}, nil
}

// FromClubConfig creates a Migrator for the club format: per-field
// Fernet keys derived with salt || field, and an optional enc: prefix
// on stored values.
func FromClubConfig(masterKey, salt string) (*Migrator, error) {
	key, err := decodeLegacyKey(masterKey)
	if err != nil {
		return nil, err
	}
	return &Migrator{
		schedule: scheduleClub,
		key:      key,
		salt:     salt,
		fernets:  make(map[string]*Fernet),
	}, nil
}

// Decrypt recovers the plaintext of a legacy ciphertext. Values already
// in the hc1: envelope pass through unchanged. Undecryptable values are
// returned unchanged as well: production columns mix legacy ciphertext
// with plaintext, and a migration sweep must not abort on a stray
// value.
func (m *Migrator) Decrypt(value, field string) (string, error) {
	if m == nil || m.schedule == scheduleNone {
		return "", crypto.NewConfigError("migrator is not configured")
	}
	if value == "" {
		return "", nil
	}
	if strings.HasPrefix(value, crypto.EnvelopePrefix) {
		return value, nil
	}

	token := strings.TrimPrefix(value, encPrefix)

	plaintext, err := m.fernetFor(field).Decrypt(token)
	if err != nil {
		// Passthrough keeps the original input, enc: prefix included.
		return value, nil
	}
	return string(plaintext), nil
}

// Migrate rewrites a legacy or plaintext value into the hc1: envelope
// of codec. Already-migrated values pass through. A value the legacy
// key cannot open is re-encrypted as-is; the next read decrypts it
// transparently.
func (m *Migrator) Migrate(value, field string, codec *crypto.Codec) (string, error) {
	if value == "" {
		return "", nil
	}
	if codec.IsEncrypted(value) {
		return value, nil
	}

	plaintext, err := m.Decrypt(value, field)
	if err != nil {
		return "", err
	}
	return codec.Encrypt(plaintext, field)
}

// fernetFor returns the memoized Fernet codec for field. The lk
// schedule keys every field identically and caches a single entry.
func (m *Migrator) fernetFor(field string) *Fernet {
	cacheKey := field
	if m.schedule == scheduleLK {
		cacheKey = ""
	}

	m.mu.RLock()
	f, ok := m.fernets[cacheKey]
	m.mu.RUnlock()
	if ok {
		return f
	}

	salt := m.salt
	if m.schedule == scheduleClub {
		salt += field
	}
	derived := pbkdf2.Key(m.key, []byte(salt), legacyIterations, fernetKeyLen, sha256.New)

	// NewFernet only fails on a wrong key length; derived is always 32
	// bytes here.
	f, _ = NewFernet(derived)

	m.mu.Lock()
	m.fernets[cacheKey] = f
	m.mu.Unlock()
	return f
}

func decodeLegacyKey(hexKey string) ([]byte, error) {
	if hexKey == "" {
		return nil, crypto.NewConfigError("master_key is required")
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, crypto.NewConfigError("Invalid master_key")
	}
	return key, nil
}
