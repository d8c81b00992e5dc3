package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/housler/housler-crypto/internal/metrics"
)

// BlindIndex returns a deterministic keyed hash of value for equality
// search over encrypted columns. The value is canonicalized (trimmed,
// lowercased) before hashing so semantically-equal inputs collide;
// domain-specific canonicalization such as phone normalization is the
// caller's job (see the pii package).
//
// The index deliberately leaks equality of plaintexts within one field.
// It never leaks across fields: the HMAC key is field-scoped.
func (c *Codec) BlindIndex(value, field string) string {
	if value == "" {
		return ""
	}

	canonical := strings.ToLower(strings.TrimSpace(value))

	mac := hmac.New(sha256.New, c.subkeys.get(purposeIndex, field))
	mac.Write([]byte(canonical))

	metrics.CryptoOperations.WithLabelValues("blind_index").Inc()
	return hex.EncodeToString(mac.Sum(nil))
}
