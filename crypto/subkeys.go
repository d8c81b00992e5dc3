package crypto

import (
	"crypto/sha256"
	"sync"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/singleflight"
)

// Derivation purposes. The purpose string is mixed into the PBKDF2 salt
// so encryption subkeys and blind-index subkeys never coincide.
const (
	purposeEncrypt = "enc"
	purposeIndex   = "idx"
)

// subkeyCache derives 32-byte subkeys from the master key and memoizes
// them per (purpose, field). Derivation is expensive (PBKDF2 at the
// configured iteration count), so concurrent first-use derivations of
// the same subkey are collapsed with singleflight.
type subkeyCache struct {
	master     []byte
	salt       []byte
	iterations int

	mu    sync.RWMutex
	keys  map[string][]byte
	group singleflight.Group
}

func newSubkeyCache(master []byte, salt string, iterations int) *subkeyCache {
	return &subkeyCache{
		master:     master,
		salt:       []byte(salt),
		iterations: iterations,
		keys:       make(map[string][]byte),
	}
}

// get returns the memoized subkey for (purpose, field), deriving it on
// first use. The result is deterministic, so a lost singleflight race
// would be harmless; the dedup only avoids burning CPU twice.
func (s *subkeyCache) get(purpose, field string) []byte {
	cacheKey := purpose + ":" + field

	s.mu.RLock()
	key, ok := s.keys[cacheKey]
	s.mu.RUnlock()
	if ok {
		return key
	}

	derived, _, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		key := s.derive(purpose, field)
		s.mu.Lock()
		s.keys[cacheKey] = key
		s.mu.Unlock()
		return key, nil
	})
	return derived.([]byte)
}

// derive computes PBKDF2-HMAC-SHA256(master, salt || purpose || field).
func (s *subkeyCache) derive(purpose, field string) []byte {
	derivationSalt := make([]byte, 0, len(s.salt)+len(purpose)+len(field))
	derivationSalt = append(derivationSalt, s.salt...)
	derivationSalt = append(derivationSalt, purpose...)
	derivationSalt = append(derivationSalt, field...)

	return pbkdf2.Key(s.master, derivationSalt, s.iterations, masterKeyLen, sha256.New)
}

// zeroize clears the master key and all cached subkeys. Best effort:
// the garbage collector may have copied the slices.
func (s *subkeyCache) zeroize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.master {
		s.master[i] = 0
	}
	for _, key := range s.keys {
		for i := range key {
			key[i] = 0
		}
	}
	s.keys = make(map[string][]byte)
}
