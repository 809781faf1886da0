package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_DeterministicPerSalt(t *testing.T) {
	salt1, err := RandBytes(16)
	require.NoError(t, err)
	salt2, err := RandBytes(16)
	require.NoError(t, err)

	h1 := HashPassword([]byte("Passw0rd"), salt1)
	require.Equal(t, h1, HashPassword([]byte("Passw0rd"), salt1))
	require.NotEqual(t, h1, HashPassword([]byte("Passw0rd"), salt2))
	require.Len(t, h1, 32)
}

func TestVerifyPassword(t *testing.T) {
	salt, err := RandBytes(16)
	require.NoError(t, err)
	hash := HashPassword([]byte("Passw0rd"), salt)

	require.True(t, VerifyPassword([]byte("Passw0rd"), salt, hash))
	require.False(t, VerifyPassword([]byte("WrongPass"), salt, hash))
	require.False(t, VerifyPassword([]byte("Passw0rd"), []byte("other-salt of 16"), hash))
}

func TestRandBytes(t *testing.T) {
	a, err := RandBytes(32)
	require.NoError(t, err)
	b, err := RandBytes(32)
	require.NoError(t, err)
	require.Len(t, a, 32)
	require.NotEqual(t, a, b)
}

func TestNewInviteCode(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		code, err := NewInviteCode(8)
		require.NoError(t, err)
		require.Len(t, code, 8)
		for _, r := range code {
			require.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected character %q", r)
		}
		seen[code] = struct{}{}
	}
	require.Greater(t, len(seen), 45, "codes should be effectively unique")
}
