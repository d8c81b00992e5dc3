package crypto

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubkeyCache(t *testing.T) {
	master := make([]byte, masterKeyLen)
	for i := range master {
		master[i] = 0xaa
	}

	t.Run("memoized", func(t *testing.T) {
		cache := newSubkeyCache(master, DefaultSalt, 1000)
		first := cache.get(purposeEncrypt, "email")
		second := cache.get(purposeEncrypt, "email")
		require.Equal(t, first, second)
		require.Len(t, first, masterKeyLen)
	})

	t.Run("purpose and field scoped", func(t *testing.T) {
		cache := newSubkeyCache(master, DefaultSalt, 1000)
		require.NotEqual(t,
			cache.get(purposeEncrypt, "email"),
			cache.get(purposeIndex, "email"))
		require.NotEqual(t,
			cache.get(purposeEncrypt, "email"),
			cache.get(purposeEncrypt, "phone"))
	})

	t.Run("concurrent first use", func(t *testing.T) {
		cache := newSubkeyCache(master, DefaultSalt, 1000)

		const goroutines = 16
		results := make([][]byte, goroutines)
		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = cache.get(purposeEncrypt, "email")
			}(i)
		}
		wg.Wait()

		for i := 1; i < goroutines; i++ {
			require.Equal(t, results[0], results[i])
		}
	})

	t.Run("zeroize clears keys", func(t *testing.T) {
		local := make([]byte, masterKeyLen)
		copy(local, master)
		cache := newSubkeyCache(local, DefaultSalt, 1000)
		before := make([]byte, masterKeyLen)
		copy(before, cache.get(purposeEncrypt, "email"))

		cache.zeroize()

		// Master is zeroed, so a re-derived subkey cannot match.
		require.NotEqual(t, before, cache.get(purposeEncrypt, "email"))
	})
}
