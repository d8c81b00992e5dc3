package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// 32 bytes = 64 hex chars
const testKey = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func newTestCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()
	c, err := New(testKey, opts...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		c, err := New(testKey)
		require.NoError(t, err)
		require.NotNil(t, c)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := New("")
		require.Error(t, err)
		require.Contains(t, err.Error(), "master_key is required")

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := New(strings.Repeat("a", 32))
		require.Error(t, err)
		require.Contains(t, err.Error(), "must be 32 bytes")
	})

	t.Run("not hex", func(t *testing.T) {
		_, err := New(strings.Repeat("g", 64))
		require.Error(t, err)
		require.Contains(t, err.Error(), "Invalid master_key")
	})

	t.Run("non-positive iterations", func(t *testing.T) {
		_, err := New(testKey, WithIterations(0))
		require.Error(t, err)
	})
}

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	require.Len(t, key, 64)
	require.Equal(t, strings.ToLower(key), key)

	_, err = hex.DecodeString(key)
	require.NoError(t, err)

	c, err := New(key)
	require.NoError(t, err)

	encrypted, err := c.Encrypt("test", "email")
	require.NoError(t, err)
	decrypted, err := c.Decrypt(encrypted, "email")
	require.NoError(t, err)
	require.Equal(t, "test", decrypted)
}

func TestEncryptDecrypt(t *testing.T) {
	c := newTestCodec(t)

	roundtrip := func(t *testing.T, plaintext, field string) {
		t.Helper()
		encrypted, err := c.Encrypt(plaintext, field)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(encrypted, EnvelopePrefix))

		decrypted, err := c.Decrypt(encrypted, field)
		require.NoError(t, err)
		require.Equal(t, plaintext, decrypted)
	}

	t.Run("simple roundtrip", func(t *testing.T) {
		roundtrip(t, "test@example.com", "email")
	})

	t.Run("cyrillic", func(t *testing.T) {
		roundtrip(t, "Иван Иванов", "name")
	})

	t.Run("special characters", func(t *testing.T) {
		roundtrip(t, "test+special@exam-ple.com", "email")
	})

	t.Run("long text", func(t *testing.T) {
		roundtrip(t, strings.Repeat("A", 10000), "data")
	})

	t.Run("empty encrypt", func(t *testing.T) {
		out, err := c.Encrypt("", "email")
		require.NoError(t, err)
		require.Equal(t, "", out)
	})

	t.Run("empty decrypt", func(t *testing.T) {
		out, err := c.Decrypt("", "email")
		require.NoError(t, err)
		require.Equal(t, "", out)
	})

	t.Run("idempotent encrypt", func(t *testing.T) {
		encrypted, err := c.Encrypt("test", "email")
		require.NoError(t, err)
		double, err := c.Encrypt(encrypted, "email")
		require.NoError(t, err)
		require.Equal(t, encrypted, double)
	})

	t.Run("plaintext passthrough on decrypt", func(t *testing.T) {
		out, err := c.Decrypt("not encrypted", "email")
		require.NoError(t, err)
		require.Equal(t, "not encrypted", out)
	})

	t.Run("nonce freshness", func(t *testing.T) {
		first, err := c.Encrypt("test@example.com", "email")
		require.NoError(t, err)
		second, err := c.Encrypt("test@example.com", "email")
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		for _, encrypted := range []string{first, second} {
			decrypted, err := c.Decrypt(encrypted, "email")
			require.NoError(t, err)
			require.Equal(t, "test@example.com", decrypted)
		}
	})
}

func TestFieldIsolation(t *testing.T) {
	c := newTestCodec(t)

	t.Run("different fields different ciphertext", func(t *testing.T) {
		encEmail, err := c.Encrypt("test@example.com", "email")
		require.NoError(t, err)
		encPhone, err := c.Encrypt("test@example.com", "phone")
		require.NoError(t, err)
		require.NotEqual(t, encEmail, encPhone)

		out, err := c.Decrypt(encEmail, "email")
		require.NoError(t, err)
		require.Equal(t, "test@example.com", out)
		out, err = c.Decrypt(encPhone, "phone")
		require.NoError(t, err)
		require.Equal(t, "test@example.com", out)
	})

	t.Run("wrong field fails", func(t *testing.T) {
		encrypted, err := c.Encrypt("test", "email")
		require.NoError(t, err)

		_, err = c.Decrypt(encrypted, "phone")
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})
}

func TestDecryptMalformed(t *testing.T) {
	c := newTestCodec(t)

	t.Run("bad base64", func(t *testing.T) {
		_, err := c.Decrypt("hc1:!!!not-base64!!!", "email")
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("truncated payload", func(t *testing.T) {
		_, err := c.Decrypt("hc1:AAAA", "email")
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		encrypted, err := c.Encrypt("test", "email")
		require.NoError(t, err)

		payload, err := base64.RawURLEncoding.DecodeString(encrypted[len(EnvelopePrefix):])
		require.NoError(t, err)
		payload[len(payload)/2] ^= 0xFF
		tampered := EnvelopePrefix + base64.RawURLEncoding.EncodeToString(payload)

		_, err = c.Decrypt(tampered, "email")
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("error message does not leak cause", func(t *testing.T) {
		_, err := c.Decrypt("hc1:AAAA", "email")
		require.EqualError(t, err, "Decryption failed")
	})
}

func TestCustomConfig(t *testing.T) {
	t.Run("different salt fails decrypt", func(t *testing.T) {
		c1 := newTestCodec(t, WithSalt("salt1"))
		c2 := newTestCodec(t, WithSalt("salt2"))

		encrypted, err := c1.Encrypt("test", "email")
		require.NoError(t, err)
		_, err = c2.Decrypt(encrypted, "email")
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("different iterations fails decrypt", func(t *testing.T) {
		c1 := newTestCodec(t, WithIterations(1000))
		c2 := newTestCodec(t, WithIterations(2000))

		encrypted, err := c1.Encrypt("test", "email")
		require.NoError(t, err)
		_, err = c2.Decrypt(encrypted, "email")
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})
}

func TestCrossInstance(t *testing.T) {
	t.Run("same key interoperates", func(t *testing.T) {
		c1 := newTestCodec(t)
		c2 := newTestCodec(t)

		encrypted, err := c1.Encrypt("test", "email")
		require.NoError(t, err)
		decrypted, err := c2.Decrypt(encrypted, "email")
		require.NoError(t, err)
		require.Equal(t, "test", decrypted)
	})
}

func TestIsEncrypted(t *testing.T) {
	c := newTestCodec(t)

	encrypted, err := c.Encrypt("test", "email")
	require.NoError(t, err)
	require.True(t, c.IsEncrypted(encrypted))
	require.False(t, c.IsEncrypted("test@example.com"))
	require.False(t, c.IsEncrypted(""))
}

func TestClose(t *testing.T) {
	c := newTestCodec(t)

	encrypted, err := c.Encrypt("test", "email")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// Subkeys re-derive from the zeroized master, so the original
	// ciphertext must no longer open.
	_, err = c.Decrypt(encrypted, "email")
	require.Error(t, err)
}
