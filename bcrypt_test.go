package resumekit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admivo/resumekit"
)

func TestHashPassword(t *testing.T) {
	t.Run("hashes and verifies", func(t *testing.T) {
		hash, err := resumekit.HashPassword("correct horse battery")
		require.NoError(t, err)
		require.NotEmpty(t, hash)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))

		assert.NoError(t, resumekit.ComparePasswordAndHash("correct horse battery", hash))
	})

	t.Run("wrong password fails the compare", func(t *testing.T) {
		hash, err := resumekit.HashPassword("correct horse battery")
		require.NoError(t, err)

		err = resumekit.ComparePasswordAndHash("wrong horse", hash)
		assert.ErrorIs(t, err, resumekit.ErrMismatchedHashAndPassword)
	})

	t.Run("empty password is rejected", func(t *testing.T) {
		_, err := resumekit.HashPassword("")
		assert.ErrorIs(t, err, resumekit.ErrNoEmptyString)
	})
}

func TestGeneratePassword(t *testing.T) {
	t.Run("has the requested length and alphabet", func(t *testing.T) {
		pw, err := resumekit.GeneratePassword(12)
		require.NoError(t, err)
		require.Len(t, pw, 12)

		for _, r := range pw {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
			assert.True(t, ok, "unexpected character %q", r)
		}
	})

	t.Run("two passwords differ", func(t *testing.T) {
		a, err := resumekit.GeneratePassword(12)
		require.NoError(t, err)
		b, err := resumekit.GeneratePassword(12)
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})

	t.Run("rejects non positive lengths", func(t *testing.T) {
		_, err := resumekit.GeneratePassword(0)
		assert.Error(t, err)
	})
}
