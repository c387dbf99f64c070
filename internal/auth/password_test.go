package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(bcrypt.MinCost)

	t.Run("verifies the original secret", func(t *testing.T) {
		digest, err := hasher.Hash("Aa!123456")
		require.NoError(t, err)
		require.NotEqual(t, "Aa!123456", digest)
		require.True(t, hasher.Verify("Aa!123456", digest))
	})

	t.Run("rejects a different secret", func(t *testing.T) {
		digest, err := hasher.Hash("Aa!123456")
		require.NoError(t, err)
		require.False(t, hasher.Verify("Aa!1234567", digest))
	})

	t.Run("salts every digest", func(t *testing.T) {
		first, err := hasher.Hash("same-secret")
		require.NoError(t, err)
		second, err := hasher.Hash("same-secret")
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})

	t.Run("malformed digest is a mismatch", func(t *testing.T) {
		require.False(t, hasher.Verify("secret", ""))
		require.False(t, hasher.Verify("secret", "not-a-bcrypt-digest"))
	})
}

func TestNewPasswordHasher_DefaultsOutOfRangeCost(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
	require.Equal(t, DefaultBcryptCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	require.Equal(t, 12, NewPasswordHasher(12).cost)
}
